package main

import (
	"log/slog"
	"path"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

type ExtractCmd struct {
	Output   string `short:"d" long:"output" default:"." description:"destination directory"`
	Progress bool   `long:"progress" description:"show progress bar"`
}

// members to extract: explicit args, else every file entry in the archive
func (cmd *ExtractCmd) members(sz *SevenZip, args []string) ([]string, error) {
	if len(args) != 0 {
		return args, nil
	}
	entries, err := sz.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Path())
	}
	return names, nil
}

func (cmd *ExtractCmd) Execute(args []string) (err error) {
	init_log()
	sz := archiver()
	names, err := cmd.members(sz, args)
	if err != nil {
		slog.Error("resolve members", "error", err)
		return err
	}
	var bar *progressbar.ProgressBar
	if cmd.Progress {
		bar = progressbar.Default(int64(len(names)), sz.Archive())
		defer bar.Close()
	}
	for _, name := range names {
		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Error("progressbar error", "error", err)
				bar = nil
			}
		}
		dest := filepath.Join(cmd.Output, filepath.FromSlash(name))
		if err := mkdirs(filepath.Dir(dest)); err != nil {
			slog.Error("mkdir", "dir", filepath.Dir(dest), "error", err)
			return err
		}
		if err := sz.ExtractMember(name, dest); err != nil {
			slog.Error("extract member", "name", name, "dest", dest, "error", err)
			return err
		}
		slog.Debug("extracted", "name", path.Base(name), "dest", dest)
	}
	return nil
}
