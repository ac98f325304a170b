package main

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestEntryAccessors(t *testing.T) {
	e := newEntry([]field{
		{"Path", "dir\\sub\\file.txt"},
		{"Size", "4096"},
		{"Packed Size", "1024"},
		{"Modified", "2024-05-01 12:34:56"},
		{"Attributes", "A"},
		{"CRC", "1A2B3C4D"},
		{"Method", "LZMA2:19"},
	})
	if e.Path() != "dir/sub/file.txt" {
		t.Error("path normalization", e.Path())
	}
	if size, err := e.Size(); err != nil || size != 4096 {
		t.Error("size", size, err)
	}
	if packed, err := e.PackedSize(); err != nil || packed != 1024 {
		t.Error("packed size", packed, err)
	}
	ts, err := e.Modified()
	if err != nil {
		t.Error("modified", err)
	}
	expect := time.Date(2024, 5, 1, 12, 34, 56, 0, time.Local)
	if !ts.Equal(expect) {
		t.Error("modified", ts, expect)
	}
	if e.CRC() != "1A2B3C4D" {
		t.Error("crc", e.CRC())
	}
	if e.IsDir() {
		t.Error("not a dir")
	}
	if v, ok := e.Field("Method"); !ok || v != "LZMA2:19" {
		t.Error("open field", v, ok)
	}
	if _, ok := e.Field("NoSuch"); ok {
		t.Error("missing field reported present")
	}
}

func TestEntryMissingOptionalFields(t *testing.T) {
	e := newEntry([]field{{"Path", "bare.txt"}})
	if size, err := e.Size(); err != nil || size != 0 {
		t.Error("absent size", size, err)
	}
	if ts, err := e.Modified(); err != nil || !ts.IsZero() {
		t.Error("absent modified", ts, err)
	}
	if e.CRC() != "" {
		t.Error("absent crc", e.CRC())
	}
}

func TestEntryFieldError(t *testing.T) {
	e := newEntry([]field{
		{"Path", "bad.txt"},
		{"Size", "not-a-number"},
		{"Packed Size", "77"},
	})
	_, err := e.Size()
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Error("not a FieldError", err)
		return
	}
	if fe.Key != "Size" || fe.Path != "bad.txt" || fe.Value != "not-a-number" {
		t.Error("field error context", fe)
	}
	// scoped to that one field, the rest of the entry stays usable
	if packed, err := e.PackedSize(); err != nil || packed != 77 {
		t.Error("packed size", packed, err)
	}
}

func TestEntrySizeCached(t *testing.T) {
	e := newEntry([]field{{"Path", "a"}, {"Size", "10"}})
	if _, err := e.Size(); err != nil {
		t.Error("size", err)
	}
	// conversion result is cached, raw value no longer consulted
	e.index["Size"] = "oops"
	if size, err := e.Size(); err != nil || size != 10 {
		t.Error("cache", size, err)
	}
}

func TestEntryConcurrentAccessors(t *testing.T) {
	// one listing is shared across request goroutines, first accesses may
	// happen concurrently
	e := newEntry([]field{
		{"Path", "a"},
		{"Size", "10"},
		{"Packed Size", "5"},
		{"Modified", "2024-05-01 12:34:56"},
	})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if size, err := e.Size(); err != nil || size != 10 {
				t.Error("size", size, err)
			}
			if packed, err := e.PackedSize(); err != nil || packed != 5 {
				t.Error("packed", packed, err)
			}
			if ts, err := e.Modified(); err != nil || ts.Second() != 56 {
				t.Error("modified", ts, err)
			}
		}()
	}
	wg.Wait()
}

func TestEntryModifiedFraction(t *testing.T) {
	e := newEntry([]field{{"Path", "a"}, {"Modified", "2024-05-01 12:34:56.1234567"}})
	ts, err := e.Modified()
	if err != nil {
		t.Error("modified", err)
	}
	if ts.Second() != 56 {
		t.Error("fractional seconds", ts)
	}
}

func TestEntryIsDir(t *testing.T) {
	cases := []struct {
		fields []field
		isdir  bool
	}{
		{[]field{{"Path", "d"}, {"Attributes", "D...."}}, true},
		{[]field{{"Path", "d"}, {"Folder", "+"}}, true},
		{[]field{{"Path", "d/"}}, true},
		{[]field{{"Path", "f"}, {"Attributes", "A"}}, false},
		{[]field{{"Path", "f"}}, false},
	}
	for i, c := range cases {
		if newEntry(c.fields).IsDir() != c.isdir {
			t.Error("isdir", i, c.fields)
		}
	}
}

func TestEntryFieldsOrder(t *testing.T) {
	e := newEntry([]field{{"Path", "a"}, {"Size", "1"}, {"CRC", "00"}})
	keys := e.Fields()
	if len(keys) != 3 || keys[0] != "Path" || keys[1] != "Size" || keys[2] != "CRC" {
		t.Error("field order", keys)
	}
}
