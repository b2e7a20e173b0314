// Command mdbload writes records into MongoDB.
//
// Records come from an Extended JSON file (insert) or a CSV or Excel file (load).
// Databases and collections are created as needed.
// Settings are read from flags, MDB_* environment variables
// and an optional mdbload.yaml in the working directory.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/madkins23/go-mongo-ingest/mdb"
)

func main() {
	if err := mainImpl(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "mdbload: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl(args []string) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("mdbload"),
		kong.Description("Insert records and tabular files into MongoDB."),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(colorable.NewColorable(os.Stderr), cli.LogLevel, !isatty.IsTerminal(os.Stderr.Fd()))
	if err != nil {
		return err
	}

	settings, err := resolveSettings(&cli)
	if err != nil {
		return err
	}
	if kctx.Command() != "ping" {
		if err := settings.checkTarget(); err != nil {
			return err
		}
	}

	access, err := mdb.Connect(&mdb.Config{
		URI:       settings.URI,
		LogInfoFn: func(msg string) { logger.Info(msg) },
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := access.Disconnect(); err != nil {
			logger.Error("Disconnect failed", "error", err)
		}
	}()

	return kctx.Run(&session{access: access, settings: settings, logger: logger})
}
