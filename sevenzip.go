package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// executables probed on PATH, in preference order
var commandCandidates = []string{"7z", "7zz", "7za"}

// Config is the immutable configuration of one SevenZip facade.
type Config struct {
	Archive  string   // archive path, may name a file that does not exist yet
	Encoding string   // filesystem encoding for member names ("", "UTF-8", "Latin-1")
	Command  string   // archiver executable, discovered on PATH when empty
	Flags    []string // extra flags passed on every invocation
	Verbose  bool     // log every invocation and its stderr
}

// SevenZip drives an external archiver executable. One synchronous subprocess
// per operation; stdout is the only parsed channel, exit status and stderr the
// only error signal. Not safe for concurrent reconfiguration.
type SevenZip struct {
	cfg       Config
	command   string
	lookupErr error
}

// New resolves the archiver executable once. A failed discovery is not fatal
// here: it surfaces as a LaunchError on the first operation that needs the
// tool, so a facade over a not-yet-existing archive can still List().
func New(cfg Config) *SevenZip {
	sz := &SevenZip{cfg: cfg}
	if cfg.Command != "" {
		sz.command = cfg.Command
		return sz
	}
	for _, name := range commandCandidates {
		if path, err := exec.LookPath(name); err == nil {
			sz.command = path
			return sz
		}
	}
	sz.lookupErr = fmt.Errorf("no archiver executable found on PATH (tried %v)", commandCandidates)
	return sz
}

// Archive returns the configured archive path.
func (sz *SevenZip) Archive() string {
	return sz.cfg.Archive
}

func (sz *SevenZip) spec(op Operation, members []string, extra []string) CommandSpec {
	flags := make([]string, 0, len(sz.cfg.Flags)+len(extra))
	flags = append(flags, sz.cfg.Flags...)
	flags = append(flags, extra...)
	return CommandSpec{
		Op:       op,
		Archive:  sz.cfg.Archive,
		Members:  members,
		Flags:    flags,
		Encoding: sz.cfg.Encoding,
	}
}

func (sz *SevenZip) build(spec CommandSpec, stdin io.Reader) (*exec.Cmd, *bytes.Buffer, error) {
	if sz.lookupErr != nil {
		return nil, nil, &LaunchError{Command: "7z", Err: sz.lookupErr}
	}
	args, err := spec.Args()
	if err != nil {
		return nil, nil, err
	}
	if sz.cfg.Verbose {
		slog.Info("exec", "command", sz.command, "args", args)
	} else {
		slog.Debug("exec", "command", sz.command, "args", args)
	}
	cmd := exec.Command(sz.command, args...)
	cmd.Stdin = stdin
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	return cmd, stderr, nil
}

// output runs one invocation to completion and returns its stdout.
func (sz *SevenZip) output(spec CommandSpec, stdin io.Reader) ([]byte, error) {
	cmd, stderr, err := sz.build(spec, stdin)
	if err != nil {
		return nil, err
	}
	stdout := &bytes.Buffer{}
	cmd.Stdout = stdout
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Command: sz.command, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		return nil, toolError(sz.command, err, stderr)
	}
	if sz.cfg.Verbose && stderr.Len() != 0 {
		slog.Info("tool stderr", "command", sz.command, "stderr", stderr.String())
	}
	return stdout.Bytes(), nil
}

func toolError(command string, err error, stderr *bytes.Buffer) error {
	msg := bytes.TrimSpace(stderr.Bytes())
	if len(msg) != 0 {
		return fmt.Errorf("%s failed: %w: %s", filepath.Base(command), err, msg)
	}
	return fmt.Errorf("%s failed: %w", filepath.Base(command), err)
}

// List returns the archive's entries. An unset archive path is a valid state
// (nothing created yet) and yields an empty listing without spawning anything.
func (sz *SevenZip) List() ([]*Entry, error) {
	if sz.cfg.Archive == "" {
		return []*Entry{}, nil
	}
	out, err := sz.output(sz.spec(OpList, nil, nil), nil)
	if err != nil {
		return nil, err
	}
	return ParseListing(bytes.NewReader(out))
}

// memberReader streams one member from the tool's stdout. Close reports the
// subprocess exit status; closing before draining may leave a non-zero exit.
type memberReader struct {
	rc      io.ReadCloser
	cmd     *exec.Cmd
	command string
	stderr  *bytes.Buffer
}

func (m *memberReader) Read(p []byte) (int, error) {
	return m.rc.Read(p)
}

func (m *memberReader) Close() error {
	_ = m.rc.Close()
	if err := m.cmd.Wait(); err != nil {
		return toolError(m.command, err, m.stderr)
	}
	return nil
}

// OpenMember streams exactly one member's content to the caller.
func (sz *SevenZip) OpenMember(name string) (io.ReadCloser, error) {
	if name == "" {
		return nil, &ConfigError{Reason: "empty member name"}
	}
	cmd, stderr, err := sz.build(sz.spec(OpExtractStdout, []string{name}, nil), nil)
	if err != nil {
		return nil, err
	}
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Command: sz.command, Err: err}
	}
	return &memberReader{rc: pipe, cmd: cmd, command: sz.command, stderr: stderr}, nil
}

// ReadMember reads one member fully into memory.
func (sz *SevenZip) ReadMember(name string) ([]byte, error) {
	rd, err := sz.OpenMember(name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rd)
	if cerr := rd.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ExtractMember extracts one member and places it at dest. The tool can only
// extract into a directory, so the member lands in a scratch directory next
// to dest first and is renamed into place. The scratch directory sits on the
// same filesystem as dest, keeping the rename a plain atomic move; a missing
// destination directory therefore fails up front.
func (sz *SevenZip) ExtractMember(name string, dest string) error {
	if name == "" {
		return &ConfigError{Reason: "empty member name"}
	}
	tmpdir, err := os.MkdirTemp(filepath.Dir(dest), ".sevenz-*")
	if err != nil {
		return fmt.Errorf("extract staging dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpdir); err != nil {
			slog.Error("remove staging dir", "dir", tmpdir, "error", err)
		}
	}()
	if _, err := sz.output(sz.spec(OpExtractDir, []string{name}, []string{"-o" + tmpdir}), nil); err != nil {
		return err
	}
	extracted := filepath.Join(tmpdir, filepath.FromSlash(name))
	if err := os.Rename(extracted, dest); err != nil {
		return fmt.Errorf("relocate %s: %w", name, err)
	}
	return nil
}

// AddBytes creates or appends one member from in-memory content, streamed to
// the tool on stdin.
func (sz *SevenZip) AddBytes(name string, data []byte) error {
	if name == "" {
		return &ConfigError{Reason: "empty member name"}
	}
	if sz.cfg.Archive == "" {
		return &ConfigError{Reason: "no archive path configured"}
	}
	_, err := sz.output(sz.spec(OpAdd, nil, []string{"-si" + name}), bytes.NewReader(data))
	return err
}

// AddFiles adds files or directory trees to the archive, creating it when
// missing.
func (sz *SevenZip) AddFiles(paths ...string) error {
	if len(paths) == 0 {
		return &ConfigError{Reason: "no paths to add"}
	}
	if sz.cfg.Archive == "" {
		return &ConfigError{Reason: "no archive path configured"}
	}
	_, err := sz.output(sz.spec(OpAdd, paths, nil), nil)
	return err
}

// DeleteMembers removes members from the archive.
func (sz *SevenZip) DeleteMembers(names ...string) error {
	if len(names) == 0 {
		return &ConfigError{Reason: "no member names to delete"}
	}
	if sz.cfg.Archive == "" {
		return &ConfigError{Reason: "no archive path configured"}
	}
	_, err := sz.output(sz.spec(OpDelete, names, nil), nil)
	return err
}
