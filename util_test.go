package main

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_ismatch(t *testing.T) {
	if ismatch("hello.txt", []string{"*.html", "hello.*"}) != true {
		t.Error("hello.txt")
	}
	if ismatch("dir/hello.txt", []string{"hello.*"}) != true {
		t.Error("hello.txt(basename)")
	}
	if ismatch("hello.txt", []string{"*.html", "abcde.*", "image.jpg"}) != false {
		t.Error("hello.txt(mismatch)")
	}
	if ismatch("hello.txt", []string{""}) != false {
		t.Error("hello.txt(empty)")
	}
	if ismatch("", []string{"abcde"}) != false {
		t.Error("empty")
	}
}

func Test_mkdirs(t *testing.T) {
	if err := mkdirs(""); err != nil {
		t.Error("empty", err)
	}
	if err := mkdirs("."); err != nil {
		t.Error("dot", err)
	}
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := mkdirs(dir); err != nil {
		t.Error("mkdirs", err)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Error("not created", err)
	}
}
