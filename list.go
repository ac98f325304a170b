package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
)

type ListCmd struct {
	Long bool `short:"l" long:"long" description:"dump all reported fields"`
}

func (cmd *ListCmd) Execute(args []string) (err error) {
	init_log()
	sz := archiver()
	entries, err := sz.List()
	if err != nil {
		slog.Error("list error", "archive", sz.Archive(), "error", err)
		return err
	}
	if cmd.Long {
		for _, e := range entries {
			for _, key := range e.Fields() {
				val, _ := e.Field(key)
				fmt.Printf("%s = %s\n", key, val)
			}
			fmt.Println()
		}
		return nil
	}
	wr := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
	for _, e := range entries {
		size, err := e.Size()
		if err != nil {
			slog.Warn("bad size field", "entry", e.Path(), "error", err)
		}
		packed, err := e.PackedSize()
		if err != nil {
			slog.Warn("bad packed size field", "entry", e.Path(), "error", err)
		}
		mark := "F"
		if e.IsDir() {
			mark = "/"
		}
		fmt.Fprintf(wr, "%s\t%d\t%d\t%s\n", mark, size, packed, e.Path())
	}
	return wr.Flush()
}
