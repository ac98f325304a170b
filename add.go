package main

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

type AddCmd struct {
	Exclude  []string `short:"x" long:"exclude" description:"exclude files"`
	Progress bool     `long:"progress" description:"show progress bar"`
}

// expand walks directory arguments so exclude patterns apply per file.
func (cmd *AddCmd) expand(args []string) ([]string, error) {
	files := make([]string, 0, len(args))
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			slog.Error("stat", "path", arg, "error", err)
			return nil, err
		}
		if !st.IsDir() {
			if !ismatch(arg, cmd.Exclude) {
				files = append(files, arg)
			}
			continue
		}
		err = filepath.WalkDir(arg, func(path string, info fs.DirEntry, err1 error) error {
			if err1 != nil {
				slog.Error("walk", "path", path, "error", err1)
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if ismatch(path, cmd.Exclude) {
				slog.Debug("exclude-match", "path", path, "exclude", cmd.Exclude)
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (cmd *AddCmd) Execute(args []string) (err error) {
	init_log()
	if len(args) == 0 {
		slog.Error("nothing to add")
		return &ConfigError{Reason: "no paths to add"}
	}
	sz := archiver()
	files, err := cmd.expand(args)
	if err != nil {
		return err
	}
	slog.Info("adding", "archive", sz.Archive(), "files", len(files))
	var bar *progressbar.ProgressBar
	if cmd.Progress {
		bar = progressbar.Default(int64(len(files)), sz.Archive())
		defer bar.Close()
	}
	for _, name := range files {
		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Error("progressbar error", "error", err)
				bar = nil
			}
		}
		if err := sz.AddFiles(name); err != nil {
			slog.Error("add failed", "name", name, "error", err)
			return err
		}
	}
	return nil
}
