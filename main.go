package main

import (
	"os"

	"log/slog"

	"github.com/jessevdk/go-flags"
)

var globalOption struct {
	Verbose  bool           `short:"v" long:"verbose" description:"show verbose logs"`
	Quiet    bool           `short:"q" long:"quiet" description:"suppress logs"`
	JsonLog  bool           `long:"json-log" description:"use json format for logging"`
	Archive  flags.Filename `short:"f" long:"archive" description:"archive file" env:"SEVENZ_ARCHIVE"`
	Command  flags.Filename `long:"sevenzip" description:"archiver executable" env:"SEVENZ_COMMAND"`
	Encoding string         `long:"encoding" description:"filesystem encoding for member names" choice:"default" choice:"UTF-8" choice:"Latin-1" default:"default"`
	Options  []string       `short:"o" long:"option" description:"extra flags passed to the archiver"`
}

func encodingName() string {
	if globalOption.Encoding == "default" {
		return ""
	}
	return globalOption.Encoding
}

func archiver() *SevenZip {
	return New(Config{
		Archive:  string(globalOption.Archive),
		Encoding: encodingName(),
		Command:  string(globalOption.Command),
		Flags:    globalOption.Options,
		Verbose:  globalOption.Verbose,
	})
}

func init_log() {
	var level slog.Level = slog.LevelInfo
	if globalOption.Verbose {
		level = slog.LevelDebug
	} else if globalOption.Quiet {
		level = slog.LevelWarn
	}
	slog.SetLogLoggerLevel(level)
	if globalOption.JsonLog {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}
}

func main() {
	var err error
	var listcmd ListCmd
	var catcmd CatCmd
	var extractcmd ExtractCmd
	var addcmd AddCmd
	var delcmd DeleteCmd
	var webserv WebServer
	var vercmd VersionCmd
	parser := flags.NewParser(&globalOption, flags.Default)
	_, err = parser.AddCommand("list", "list archive entries", "list archive entries", &listcmd)
	if err != nil {
		slog.Error("addcommand list", "error", err)
		panic(err)
	}
	_, err = parser.AddCommand("cat", "write members to stdout", "write members to stdout", &catcmd)
	if err != nil {
		slog.Error("addcommand cat", "error", err)
		panic(err)
	}
	_, err = parser.AddCommand("extract", "extract members", "extract members to a directory", &extractcmd)
	if err != nil {
		slog.Error("addcommand extract", "error", err)
		panic(err)
	}
	_, err = parser.AddCommand("add", "add files", "add files or directories", &addcmd)
	if err != nil {
		slog.Error("addcommand add", "error", err)
		panic(err)
	}
	_, err = parser.AddCommand("delete", "delete members", "delete members", &delcmd)
	if err != nil {
		slog.Error("addcommand delete", "error", err)
		panic(err)
	}
	_, err = parser.AddCommand("webserver", "boot webserver", "serve archive members over http", &webserv)
	if err != nil {
		slog.Error("addcommand webserver", "error", err)
		panic(err)
	}
	_, err = parser.AddCommand("version", "show version", "show version", &vercmd)
	if err != nil {
		slog.Error("addcommand version", "error", err)
		panic(err)
	}
	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		slog.Error("error exit", "error", err)
		os.Exit(1)
	}
}
