package main

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

type field struct {
	key   string
	value string
}

// Entry is one archived member as reported by the external archiver. The
// reported field set varies by archive type and tool version, so the raw
// fields are kept as an ordered open mapping with typed accessors layered on
// top. Entries are immutable once parsed; accessors cache their conversions.
// One listing is shared by all webserver request goroutines, so each cache is
// guarded by a sync.Once.
type Entry struct {
	fields []field
	index  map[string]string

	path string

	sizeOnce sync.Once
	size     uint64
	sizeErr  error

	packedOnce sync.Once
	packed     uint64
	packedErr  error

	modOnce  sync.Once
	modified time.Time
	modErr   error
}

// timestamp layout of the technical listing
const listingTimeLayout = "2006-01-02 15:04:05"

func newEntry(fields []field) *Entry {
	index := make(map[string]string, len(fields))
	for _, f := range fields {
		index[f.key] = f.value
	}
	e := &Entry{fields: fields, index: index}
	e.path = strings.ReplaceAll(index["Path"], "\\", "/")
	return e
}

// Field returns the verbatim value of one reported field.
func (e *Entry) Field(key string) (string, bool) {
	v, ok := e.index[key]
	return v, ok
}

// Fields returns the reported keys in listing order.
func (e *Entry) Fields() []string {
	keys := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		keys = append(keys, f.key)
	}
	return keys
}

// Path is the archive-internal name, forward-slash separated. Never empty for
// a parsed entry.
func (e *Entry) Path() string {
	return e.path
}

func (e *Entry) uintField(key string, once *sync.Once, val *uint64, errp *error) (uint64, error) {
	once.Do(func() {
		raw, ok := e.index[key]
		if !ok || raw == "" {
			return
		}
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			*errp = &FieldError{Path: e.path, Key: key, Value: raw, Err: err}
			return
		}
		*val = v
	})
	return *val, *errp
}

// Size is the uncompressed size in bytes, 0 when unreported.
func (e *Entry) Size() (uint64, error) {
	return e.uintField("Size", &e.sizeOnce, &e.size, &e.sizeErr)
}

// PackedSize is the compressed size in bytes, 0 when unreported.
func (e *Entry) PackedSize() (uint64, error) {
	return e.uintField("Packed Size", &e.packedOnce, &e.packed, &e.packedErr)
}

// Modified is the reported modification time, zero when unreported.
func (e *Entry) Modified() (time.Time, error) {
	e.modOnce.Do(func() {
		raw, ok := e.index["Modified"]
		if !ok || raw == "" {
			return
		}
		// some tool versions append fractional seconds
		if idx := strings.IndexByte(raw, '.'); idx != -1 {
			raw = raw[:idx]
		}
		ts, err := time.ParseInLocation(listingTimeLayout, raw, time.Local)
		if err != nil {
			e.modErr = &FieldError{Path: e.path, Key: "Modified", Value: raw, Err: err}
			return
		}
		e.modified = ts
	})
	return e.modified, e.modErr
}

// CRC is the reported checksum string, empty when unreported.
func (e *Entry) CRC() string {
	return e.index["CRC"]
}

// Attributes is the opaque platform attribute string.
func (e *Entry) Attributes() string {
	return e.index["Attributes"]
}

// IsDir derives directory-ness from the attribute string, the Folder field or
// a trailing separator.
func (e *Entry) IsDir() bool {
	if strings.HasPrefix(e.Attributes(), "D") {
		return true
	}
	if e.index["Folder"] == "+" {
		return true
	}
	return strings.HasSuffix(e.path, "/")
}
