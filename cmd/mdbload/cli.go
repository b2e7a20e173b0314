package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/madkins23/go-mongo-ingest/mdb"
	"github.com/madkins23/go-mongo-ingest/mdbtab"
)

// CLI represents the complete command structure for mdbload.
type CLI struct {
	URI        string   `help:"MongoDB connection URI (default from MDB_URI or mongodb://localhost:27017)"`
	Database   string   `short:"d" help:"Target database name (default from MDB_DATABASE)"`
	Collection string   `short:"c" help:"Target collection name (default from MDB_COLLECTION)"`
	Unique     []string `help:"Fields of a unique index created when the collection is first used"`
	Config     string   `help:"Path to a YAML config file (default ./mdbload.yaml if present)" type:"path"`
	LogLevel   string   `help:"Log level" default:"info" enum:"debug,info,warn,error"`

	Ping   PingCmd   `cmd:"" help:"Check that the server can be reached"`
	Insert InsertCmd `cmd:"" help:"Insert a document or array of documents from an Extended JSON file"`
	Load   LoadCmd   `cmd:"" help:"Bulk load a .csv or .xlsx file, one document per row"`
}

// PingCmd represents the ping command.
type PingCmd struct{}

// InsertCmd represents the insert command.
type InsertCmd struct {
	File string `short:"f" help:"Extended JSON file, - for standard input" required:""`
}

// LoadCmd represents the load command.
type LoadCmd struct {
	File  string `short:"f" help:"CSV or Excel file" required:"" type:"existingfile"`
	Sheet string `help:"Excel sheet to read (default first sheet)"`
	Raw   bool   `help:"Keep every cell as a string instead of converting numbers and booleans"`
}

// session carries what the commands need once the connection is up.
type session struct {
	access   *mdb.Access
	settings *settings
	logger   *slog.Logger
}

var errNoTarget = errors.New("database and collection names are required")

func (p *PingCmd) Run(s *session) error {
	if err := s.access.Ping(); err != nil {
		return err
	}
	s.logger.Info("Ping succeeded")
	return nil
}

func (i *InsertCmd) Run(s *session) error {
	data, err := readInput(i.File)
	if err != nil {
		return err
	}
	records, err := mdb.ParseExtJSON(data)
	if err != nil {
		return fmt.Errorf("%s: %w", i.File, err)
	}

	if err := s.provision(); err != nil {
		return err
	}

	return s.access.InsertRecord(records, s.settings.Collection, s.settings.Database)
}

func (l *LoadCmd) Run(s *session) error {
	opts := make([]mdbtab.Option, 0, 2)
	if l.Sheet != "" {
		opts = append(opts, mdbtab.WithSheet(l.Sheet))
	}
	if l.Raw {
		opts = append(opts, mdbtab.WithRawStrings())
	}

	rows, err := mdbtab.Load(l.File, opts...)
	if err != nil {
		return fmt.Errorf("load %s: %w", l.File, err)
	}

	if err := s.provision(); err != nil {
		return err
	}

	return s.access.InsertRecord(mdb.Many(rows...), s.settings.Collection, s.settings.Database)
}

// provision makes sure the target collection exists in the registry,
// with the unique index if one was asked for.
func (s *session) provision() error {
	if err := s.settings.checkTarget(); err != nil {
		return err
	}

	database, err := s.access.CreateDatabase(s.settings.Database)
	if err != nil {
		return err
	}

	var finishers []mdb.CollectionFinisher
	if len(s.settings.Unique) > 0 {
		finishers = append(finishers, mdb.NewIndexDescription(true, s.settings.Unique...).Finisher())
	}
	_, err = database.CreateCollection(s.settings.Collection, finishers...)
	return err
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read standard input: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
