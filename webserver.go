package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ArchiveHandler serves archive members over HTTP. The member index comes
// from one listing; bodies are streamed from the archiver's stdout per
// request, so nothing is unpacked to disk.
type ArchiveHandler struct {
	sz          *SevenZip
	entries     map[string]*Entry
	stripprefix string
	addprefix   string
	indexname   string
	dirredirect bool
	headers     map[string]string
	rwlock      sync.RWMutex
	accesslog   *slog.Logger
}

func (h *ArchiveHandler) filename(r *http.Request) string {
	fname := r.URL.Path
	fname = strings.TrimPrefix(fname, h.addprefix)
	fname = h.stripprefix + fname
	if strings.HasSuffix(fname, "/") {
		fname += h.indexname
	} else if fname == "" {
		fname = "/" + h.indexname
	}
	fname = strings.ReplaceAll(fname, "//", "/")
	return strings.TrimPrefix(fname, "/")
}

func (h *ArchiveHandler) exists(path string) bool {
	if _, ok := h.entries[path]; ok {
		return true
	}
	return false
}

func conditional(r *http.Request, etag string, modified time.Time) bool {
	ifnonematch := r.Header.Get("If-None-Match")
	if ifnonematch == etag {
		return true
	}
	if ifnonematch == "" && !modified.IsZero() {
		ifmodified, err := time.Parse(http.TimeFormat, r.Header.Get("If-Modified-Since"))
		if err == nil {
			return !modified.After(ifmodified)
		}
	}
	return false
}

func (h *ArchiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	statuscode := http.StatusOK
	if h.accesslog != nil {
		start := time.Now()
		defer func() {
			headers := []any{
				"remote", r.RemoteAddr, "elapsed", time.Since(start),
				"method", r.Method, "path", r.URL.Path,
				"status", statuscode, "protocol", r.Proto,
			}
			for k, v := range w.Header() {
				switch strings.ToLower(k) {
				case "etag", "content-type", "content-length", "location":
					headers = append(headers, strings.ToLower(k), v[0])
				}
			}
			for k, v := range r.Header {
				switch strings.ToLower(k) {
				case "forwarded", "user-agent", "if-none-match", "referer", "range":
					headers = append(headers, strings.ToLower(k), v[0])
				}
			}
			h.accesslog.Info(http.StatusText(statuscode), headers...)
		}()
	}
	h.rwlock.RLock()
	defer h.rwlock.RUnlock()
	fname := h.filename(r)
	if h.dirredirect && !h.exists(fname) && h.exists(fname+"/"+h.indexname) {
		statuscode = http.StatusMovedPermanently
		slog.Info("directory redirect", "url", r.URL, "fname", fname)
		w.Header().Set("Location", r.URL.Path+"/")
		w.WriteHeader(statuscode)
		return
	}
	entry, ok := h.entries[fname]
	if !ok {
		statuscode = http.StatusNotFound
		w.WriteHeader(statuscode)
		fmt.Fprint(w, "not found")
		return
	}
	if entry.IsDir() {
		slog.Info("redirect directory", "path", r.URL.Path)
		statuscode = http.StatusMovedPermanently
		w.Header().Add("Location", r.URL.Path+"/")
		w.WriteHeader(statuscode)
		return
	}
	if ctype := mime.TypeByExtension(filepath.Ext(fname)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	for k, v := range h.headers {
		w.Header().Set(k, v)
	}
	var etag string
	if crc := entry.CRC(); crc != "" {
		etag = "W/" + crc
	}
	modified, err := entry.Modified()
	if err != nil {
		slog.Warn("bad modified field", "name", fname, "error", err)
	}
	if conditional(r, etag, modified) {
		statuscode = http.StatusNotModified
		if etag != "" {
			w.Header().Add("Etag", etag)
		}
		w.Header().Add("Last-Modified", modified.Format(http.TimeFormat))
		w.WriteHeader(statuscode)
		return
	}
	if !modified.IsZero() {
		w.Header().Add("Last-Modified", modified.Format(http.TimeFormat))
	}
	if size, err := entry.Size(); err == nil {
		w.Header().Add("Content-Length", strconv.FormatUint(size, 10))
	} else {
		slog.Warn("bad size field", "name", fname, "error", err)
	}
	if etag != "" {
		w.Header().Add("Etag", etag)
	}
	rd, err := h.sz.OpenMember(fname)
	if err != nil {
		slog.Error("open member", "name", fname, "error", err)
		statuscode = http.StatusInternalServerError
		w.WriteHeader(statuscode)
		fmt.Fprint(w, "internal server error")
		return
	}
	w.WriteHeader(statuscode)
	written, err := io.Copy(w, rd)
	if cerr := rd.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		slog.Error("copy member", "name", fname, "written", written, "error", err)
	} else {
		slog.Debug("copy member", "name", fname, "written", written)
	}
}

func (h *ArchiveHandler) initialize(sz *SevenZip) error {
	listed, err := sz.List()
	if err != nil {
		return err
	}
	entries := make(map[string]*Entry, len(listed))
	for _, e := range listed {
		entries[e.Path()] = e
	}
	slog.Info("archive indexed", "archive", sz.Archive(), "entries", len(entries))
	h.rwlock.Lock()
	defer h.rwlock.Unlock()
	h.sz = sz
	h.entries = entries
	return nil
}

func do_listen(listen string) (net.Listener, error) {
	protos := strings.SplitN(listen, ":", 2)
	switch protos[0] {
	case "unix", "tcp", "tcp4", "tcp6":
		return net.Listen(protos[0], protos[1])
	}
	return net.Listen("tcp", listen)
}

type WebServer struct {
	Listen            string        `short:"l" long:"listen" default:":3000" description:"listen address:port"`
	IndexFilename     string        `long:"index" description:"index filename" default:"index.html"`
	DirRedirect       bool          `long:"directory-redirect" description:"auto redirect when missing '/'"`
	StripPrefix       string        `long:"stripprefix" description:"strip prefix from archive"`
	AddPrefix         string        `long:"addprefix" description:"add prefix to URL path"`
	ReadTimeout       time.Duration `long:"read-timeout" default:"10s"`
	ReadHeaderTimeout time.Duration `long:"read-header-timeout" default:"10s"`
	WriteTimeout      time.Duration `long:"write-timeout" default:"30s"`
	IdleTimeout       time.Duration `long:"idle-timeout" default:"10s"`
	Headers           []string      `short:"H" long:"header" description:"custom response headers"`
	AutoReload        bool          `long:"autoreload" description:"detect archive change and reload index"`
	OpenTelemetry     bool          `long:"opentelemetry" description:"otel trace setup"`
	server            http.Server
	handler           ArchiveHandler
}

func (cmd *WebServer) Execute(args []string) (err error) {
	init_log()
	slog.Info("args", "args", args)
	cmd.handler = ArchiveHandler{
		stripprefix: cmd.StripPrefix,
		addprefix:   cmd.AddPrefix,
		indexname:   cmd.IndexFilename,
		dirredirect: cmd.DirRedirect,
		headers:     make(map[string]string),
		accesslog:   slog.With("type", "accesslog"),
	}
	if err = cmd.handler.initialize(archiver()); err != nil {
		slog.Error("initialize failed", "error", err)
		return err
	}
	slog.Info("open success", "entries", len(cmd.handler.entries))
	for _, hdr := range cmd.Headers {
		if kv := strings.SplitN(hdr, ":", 2); len(kv) != 2 {
			slog.Error("invalid header spec", "header", hdr)
			return fmt.Errorf("invalid header: %s", hdr)
		} else {
			cmd.handler.headers[kv[0]] = strings.TrimSpace(kv[1])
		}
	}
	cmd.server = http.Server{
		Handler:           nil,
		ReadTimeout:       cmd.ReadTimeout,
		ReadHeaderTimeout: cmd.ReadHeaderTimeout,
		WriteTimeout:      cmd.WriteTimeout,
		IdleTimeout:       cmd.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo),
	}
	if cmd.OpenTelemetry {
		stop, handler, err := cmd.init_otel(&cmd.handler, "sevenz")
		if err != nil {
			slog.Warn("opentelemetry initialize failed", "error", err)
			http.Handle("/", &cmd.handler)
		} else {
			defer stop()
			http.Handle("/", handler)
		}
	} else {
		http.Handle("/", &cmd.handler)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		var err error
		for {
			sig := <-sigs
			slog.Info("caught signal", "signal", sig)
			switch sig {
			case syscall.SIGHUP:
				if err = cmd.Reload(); err != nil {
					slog.Error("reload failed", "error", err)
					return
				}
			case syscall.SIGINT, syscall.SIGTERM:
				if err = cmd.Shutdown(); err != nil {
					slog.Error("terminate failed", "error", err)
				}
				return
			}
		}
	}()

	if cmd.AutoReload {
		wt, err := cmd.setup_watch(string(globalOption.Archive))
		if err != nil {
			return err
		}
		defer wt.Close()
	}

	listener, err := do_listen(cmd.Listen)
	if err != nil {
		slog.Error("listen error", "error", err)
		return err
	}
	slog.Info("server starting", "listen", listener.Addr(), "pid", os.Getpid())
	err = cmd.server.Serve(listener)
	if err != nil && err != http.ErrServerClosed {
		slog.Error("listen error", "error", err)
		return err
	}
	slog.Info("server closed", "msg", err)
	return nil
}

func (cmd *WebServer) setup_watch(name string) (*fsnotify.Watcher, error) {
	wt, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("watcher", "error", err)
		return nil, err
	}
	go func() {
		for {
			select {
			case event, ok := <-wt.Events:
				if !ok {
					slog.Error("cannot process event", "event", event)
					return
				}
				slog.Info("got watcher event", "event", event, "op", event.Op.String())
				if event.Has(fsnotify.Write) {
					slog.Info("modified", "name", event.Name)
					if err := cmd.Reload(); err != nil {
						slog.Error("reload error", "error", err)
					}
				}
			case err, ok := <-wt.Errors:
				if !ok {
					slog.Error("cannot process error", "error", err)
					return
				}
				slog.Info("got watcher error", "error", err)
			}
		}
	}()
	if err = wt.Add(name); err != nil {
		slog.Error("watcher add", "error", err)
		wt.Close()
		return nil, err
	}
	return wt, nil
}

func (cmd *WebServer) Shutdown() error {
	slog.Info("graceful shutdown")
	return cmd.server.Shutdown(context.TODO())
}

func (cmd *WebServer) Reload() error {
	slog.Info("reloading archive", "name", globalOption.Archive)
	return cmd.handler.initialize(archiver())
}
