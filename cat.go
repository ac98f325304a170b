package main

import (
	"io"
	"log/slog"
	"os"
)

type CatCmd struct{}

func (cmd *CatCmd) Execute(args []string) (err error) {
	init_log()
	sz := archiver()
	for _, name := range args {
		rd, err := sz.OpenMember(name)
		if err != nil {
			slog.Error("open member", "name", name, "error", err)
			return err
		}
		written, err := io.Copy(os.Stdout, rd)
		if cerr := rd.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			slog.Error("copy member", "name", name, "written", written, "error", err)
			return err
		}
		slog.Debug("copy member", "name", name, "written", written)
	}
	return nil
}
