package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
)

const webStub = `#!/bin/sh
op=""
for a in "$@"; do
  case "$a" in
    l) op=l;;
    x) op=x;;
  esac
done
if [ "$op" = "l" ]; then
cat <<'EOF'
7-Zip stub
--
Path = test.7z
----------
Path = hello.txt
Size = 13
Modified = 2024-05-01 12:34:56
Attributes = A
CRC = AABBCCDD

Path = dir
Folder = +

Path = dir/index.html
Size = 13
Attributes = A

EOF
else
printf 'hello, web 7z'
fi
`

func prepare_handler(t *testing.T, dirredirect bool) *ArchiveHandler {
	t.Helper()
	command, _ := stubScript(t, webStub)
	h := &ArchiveHandler{
		indexname:   "index.html",
		dirredirect: dirredirect,
		headers:     map[string]string{"X-Test": "1"},
	}
	if err := h.initialize(New(Config{Archive: "test.7z", Command: command})); err != nil {
		t.Fatal("initialize", err)
	}
	return h
}

func TestHandlerServeMember(t *testing.T) {
	h := prepare_handler(t, false)
	req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Error("status", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "hello, web 7z" {
		t.Error("body", string(body))
	}
	if rec.Header().Get("Content-Length") != "13" {
		t.Error("content-length", rec.Header().Get("Content-Length"))
	}
	if rec.Header().Get("Etag") != "W/AABBCCDD" {
		t.Error("etag", rec.Header().Get("Etag"))
	}
	if rec.Header().Get("X-Test") != "1" {
		t.Error("custom header missing")
	}
	if rec.Header().Get("Content-Type") == "" {
		t.Error("content-type missing")
	}
}

func TestHandlerNotFound(t *testing.T) {
	h := prepare_handler(t, false)
	req := httptest.NewRequest(http.MethodGet, "/nope.txt", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Error("status", rec.Code)
	}
}

func TestHandlerDirEntryRedirect(t *testing.T) {
	h := prepare_handler(t, false)
	req := httptest.NewRequest(http.MethodGet, "/dir", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMovedPermanently {
		t.Error("status", rec.Code)
	}
	if rec.Header().Get("Location") != "/dir/" {
		t.Error("location", rec.Header().Get("Location"))
	}
}

func TestHandlerDirIndex(t *testing.T) {
	h := prepare_handler(t, false)
	req := httptest.NewRequest(http.MethodGet, "/dir/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Error("status", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "hello, web 7z" {
		t.Error("body", string(body))
	}
}

func TestHandlerConditional(t *testing.T) {
	h := prepare_handler(t, false)
	req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
	req.Header.Set("If-None-Match", "W/AABBCCDD")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Error("status", rec.Code)
	}
}

func TestHandlerConcurrent(t *testing.T) {
	// entries are shared by all request goroutines, their lazy accessors
	// must tolerate parallel first access
	h := prepare_handler(t, false)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Error("status", rec.Code)
			}
			if rec.Header().Get("Content-Length") != "13" {
				t.Error("content-length", rec.Header().Get("Content-Length"))
			}
		}()
	}
	wg.Wait()
}

func TestSetupWatchMissingFile(t *testing.T) {
	cmd := WebServer{}
	wt, err := cmd.setup_watch(filepath.Join(t.TempDir(), "missing.7z"))
	if err == nil {
		t.Error("missing watch target not surfaced")
	}
	if wt != nil {
		t.Error("watcher returned despite error")
		wt.Close()
	}
}

func TestDoListen(t *testing.T) {
	listener, err := do_listen("localhost:0")
	if err != nil {
		t.Error("listen", err)
		return
	}
	defer listener.Close()
	if listener.Addr().Network() != "tcp" {
		t.Error("network", listener.Addr().Network())
	}
}
