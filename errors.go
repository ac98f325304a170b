package main

import "fmt"

// ConfigError: bad configuration detected before any subprocess is spawned.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// LaunchError: the external archiver could not be started at all.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("cannot launch %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ParseError: listing output did not match the expected shape. Carries the
// offending line so the tool output can be inspected.
type ParseError struct {
	LineNo int
	Line   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized listing output at line %d: %q", e.LineNo, e.Line)
}

// FieldError: one typed accessor of one entry failed to convert its raw value.
// The rest of the listing stays valid.
type FieldError struct {
	Path  string
	Key   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("entry %q: field %s=%q: %v", e.Path, e.Key, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
