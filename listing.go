package main

import (
	"bufio"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// section delimiters of the technical listing format
const (
	headerEnd  = "--"
	summaryEnd = "----------"
)

var kvPattern = regexp.MustCompile(`^([\w ]+?) = (.*)$`)

type listState int

const (
	stateHeader listState = iota
	stateSummary
	stateEntries
)

// ParseListing converts the archiver's "list verbose" report into entries.
// Single pass, strictly forward: banner until "--", archive summary until
// "----------", then runs of "Key = Value" lines each terminated by a blank
// line. A trailing run with no blank line is dropped, not emitted. A line in
// the entries section matching neither pattern aborts with a ParseError.
func ParseListing(r io.Reader) ([]*Entry, error) {
	entries := make([]*Entry, 0)
	state := stateHeader
	var current []field
	lineno := 0

	finalize := func() {
		if len(current) == 0 {
			return
		}
		entry := newEntry(current)
		current = nil
		if entry.Path() == "" {
			slog.Warn("listing entry without path dropped", "fields", len(entry.fields))
			return
		}
		entries = append(entries, entry)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineno++
		switch state {
		case stateHeader:
			if line == headerEnd {
				state = stateSummary
				continue
			}
			if line == summaryEnd {
				// header delimiter never came, tolerate format drift
				slog.Warn("listing header delimiter missing", "line", lineno)
				state = stateEntries
				continue
			}
			if strings.HasPrefix(line, "Path = ") {
				slog.Warn("listing delimiters missing", "line", lineno)
				state = stateEntries
			}
		case stateSummary:
			// the summary itself holds "Path = <archive>" lines, so only the
			// delimiter can end it
			if line == summaryEnd {
				state = stateEntries
			}
			continue
		}
		if state != stateEntries {
			continue
		}
		if line == "" {
			finalize()
			continue
		}
		m := kvPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, &ParseError{LineNo: lineno, Line: line}
		}
		current = append(current, field{key: m[1], value: m[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(current) != 0 {
		// no trailing blank line: incomplete record, do not fabricate an entry
		slog.Warn("incomplete trailing listing entry dropped", "fields", len(current))
	}
	return entries, nil
}
