package main

import (
	"log/slog"
	"os"
	"path/filepath"
)

func ismatch(name string, patterns []string) bool {
	for _, pat := range patterns {
		if matched, _ := filepath.Match(pat, name); matched {
			slog.Debug("match", "name", name, "pattern", pat)
			return true
		}
		if matched, _ := filepath.Match(pat, filepath.Base(name)); matched {
			slog.Debug("match", "name", filepath.Base(name), "pattern", pat)
			return true
		}
	}
	return false
}

func mkdirs(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
