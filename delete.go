package main

import "log/slog"

type DeleteCmd struct{}

func (cmd *DeleteCmd) Execute(args []string) (err error) {
	init_log()
	if len(args) == 0 {
		slog.Error("nothing to delete")
		return &ConfigError{Reason: "no member names to delete"}
	}
	sz := archiver()
	if err := sz.DeleteMembers(args...); err != nil {
		slog.Error("delete failed", "names", args, "error", err)
		return err
	}
	slog.Info("deleted", "archive", sz.Archive(), "names", args)
	return nil
}
