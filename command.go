package main

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Operation is one verb of the external archiver.
type Operation int

const (
	OpList Operation = iota
	OpExtractStdout
	OpExtractDir
	OpAdd
	OpDelete
)

func (op Operation) letter() string {
	switch op {
	case OpList:
		return "l"
	case OpExtractStdout, OpExtractDir:
		return "x"
	case OpAdd:
		return "a"
	case OpDelete:
		return "d"
	}
	return ""
}

// modifiers are flags implied by the operation itself, not by the caller.
func (op Operation) modifiers() []string {
	switch op {
	case OpList:
		// verbose technical listing, the only format ParseListing understands
		return []string{"-slt"}
	case OpExtractStdout:
		return []string{"-so"}
	}
	return nil
}

// -y answers all prompts, -bd disables the percentage indicator
var defaultFlags = []string{"-y", "-bd"}

// CommandSpec describes one invocation of the external archiver. Built fresh
// per call, never persisted.
type CommandSpec struct {
	Op       Operation
	Archive  string // empty means "archive does not exist yet"
	Members  []string
	Flags    []string
	Encoding string
}

// locale tokens the archiver accepts for its -scc flag
func encodingToken(encoding string) (string, error) {
	switch encoding {
	case "", "default":
		return "DOS", nil
	case "UTF-8", "utf-8", "utf8":
		return "UTF-8", nil
	case "Latin-1", "latin-1", "latin1", "ISO-8859-1", "iso-8859-1":
		return "WIN", nil
	}
	return "", &ConfigError{Reason: "unrecognized encoding " + encoding}
}

func transcodeName(name string, encoding string) (string, error) {
	switch encoding {
	case "Latin-1", "latin-1", "latin1", "ISO-8859-1", "iso-8859-1":
		res, err := charmap.ISO8859_1.NewEncoder().String(name)
		if err != nil {
			return "", &ConfigError{Reason: "member name not representable in Latin-1: " + name}
		}
		return res, nil
	}
	return name, nil
}

// quote wraps arguments containing whitespace in double quotes. Nothing else
// is escaped; callers must not pass names that look like flags.
func quote(arg string) string {
	if strings.ContainsAny(arg, " \t") {
		return "\"" + arg + "\""
	}
	return arg
}

// Args builds the full argument vector, executable name excluded. Pure, no
// side effects; validation failures surface before anything is spawned.
func (spec CommandSpec) Args() ([]string, error) {
	token, err := encodingToken(spec.Encoding)
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(defaultFlags)+len(spec.Flags)+len(spec.Members)+4)
	args = append(args, defaultFlags...)
	args = append(args, spec.Op.letter())
	args = append(args, spec.Op.modifiers()...)
	args = append(args, "-scc"+token)
	args = append(args, spec.Flags...)
	if spec.Archive != "" {
		args = append(args, quote(spec.Archive))
	}
	for _, name := range spec.Members {
		encoded, err := transcodeName(name, spec.Encoding)
		if err != nil {
			return nil, err
		}
		args = append(args, quote(encoded))
	}
	return args, nil
}
