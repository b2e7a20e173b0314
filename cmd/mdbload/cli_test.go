package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/bsonrw"

	"github.com/madkins23/go-mongo-ingest/mdb"
	"github.com/madkins23/go-mongo-ingest/mdbtab"
	"github.com/madkins23/go-mongo-ingest/test"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("mdbload"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestParseLoad(t *testing.T) {
	path := test.WriteFile(t, "simple.csv", test.SimpleCSV)
	cli, kctx := parse(t, "-d", "alpha", "-c", "one", "--unique", "a", "--unique", "b", "load", "-f", path, "--raw")
	assert.Equal(t, "load", kctx.Command())
	assert.Equal(t, "alpha", cli.Database)
	assert.Equal(t, "one", cli.Collection)
	assert.Equal(t, []string{"a", "b"}, cli.Unique)
	assert.Equal(t, path, cli.Load.File)
	assert.True(t, cli.Load.Raw)
	assert.Equal(t, "info", cli.LogLevel)
}

func TestParseInsert(t *testing.T) {
	_, kctx := parse(t, "insert", "-f", "-")
	assert.Equal(t, "insert", kctx.Command())
}

func TestParsePing(t *testing.T) {
	_, kctx := parse(t, "ping", "--log-level", "debug")
	assert.Equal(t, "ping", kctx.Command())
}

////////////////////////////////////////////////////////////////////////////////

func TestResolveSettingsDefaults(t *testing.T) {
	settings, err := resolveSettings(&CLI{})
	require.NoError(t, err)
	assert.Equal(t, mdb.DefaultURI, settings.URI)
	assert.Empty(t, settings.Database)
	assert.Empty(t, settings.Collection)
	assert.Empty(t, settings.Unique)
}

func TestResolveSettingsEnvironment(t *testing.T) {
	t.Setenv("MDB_URI", "mongodb://env.example.com:27017")
	t.Setenv("MDB_DATABASE", "envdb")
	t.Setenv("MDB_COLLECTION", "envcoll")
	settings, err := resolveSettings(&CLI{Collection: "flagcoll"})
	require.NoError(t, err)
	assert.Equal(t, "mongodb://env.example.com:27017", settings.URI)
	assert.Equal(t, "envdb", settings.Database)
	assert.Equal(t, "flagcoll", settings.Collection)
}

func TestResolveSettingsConfigFile(t *testing.T) {
	path := test.WriteFile(t, "mdbload.yaml", `uri: mongodb://file.example.com:27017
database: filedb
collection: filecoll
unique:
  - alpha
  - bravo
`)
	settings, err := resolveSettings(&CLI{Config: path, Database: "flagdb"})
	require.NoError(t, err)
	assert.Equal(t, "mongodb://file.example.com:27017", settings.URI)
	assert.Equal(t, "flagdb", settings.Database)
	assert.Equal(t, "filecoll", settings.Collection)
	assert.Equal(t, []string{"alpha", "bravo"}, settings.Unique)
}

func TestResolveSettingsMissingConfigFile(t *testing.T) {
	_, err := resolveSettings(&CLI{Config: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

////////////////////////////////////////////////////////////////////////////////

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn", true)
	require.NoError(t, err)
	logger.Info("quiet")
	assert.Empty(t, buf.String())
	logger.Warn("loud", "collection", "alpha.one")
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), "alpha.one")
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, "chatty", true)
	assert.Error(t, err)
}

////////////////////////////////////////////////////////////////////////////////

func TestProvisionNoTarget(t *testing.T) {
	s := &session{settings: &settings{Database: "alpha"}}
	assert.ErrorIs(t, s.provision(), errNoTarget)
	s = &session{settings: &settings{Collection: "one"}}
	assert.ErrorIs(t, s.provision(), errNoTarget)
}

func TestLoadUnsupported(t *testing.T) {
	s := &session{settings: &settings{Database: "alpha", Collection: "one"}}
	load := &LoadCmd{File: test.WriteFile(t, "simple.txt", test.SimpleCSV)}
	assert.ErrorIs(t, load.Run(s), mdbtab.ErrUnsupportedFileType)
}

// The sessions below have no connection, so any attempt to provision would panic.

func TestInsertBadJSON(t *testing.T) {
	s := &session{settings: &settings{Database: "alpha", Collection: "one", Unique: []string{"a"}}}
	insert := &InsertCmd{File: test.WriteFile(t, "bad.json", `{"a": 1}, "records": {"b": 2}`)}
	assert.ErrorIs(t, insert.Run(s), bsonrw.ErrInvalidJSON)
}

func TestInsertMismatch(t *testing.T) {
	s := &session{settings: &settings{Database: "alpha", Collection: "one"}}
	insert := &InsertCmd{File: test.WriteFile(t, "scalar.json", `[{"a": 1}, 2]`)}
	assert.ErrorIs(t, insert.Run(s), mdb.ErrTypeMismatch)
}

func TestInsertMissingFile(t *testing.T) {
	s := &session{settings: &settings{Database: "alpha", Collection: "one"}}
	insert := &InsertCmd{File: filepath.Join(t.TempDir(), "missing.json")}
	assert.ErrorIs(t, insert.Run(s), os.ErrNotExist)
}

func TestLoadBadHeader(t *testing.T) {
	s := &session{settings: &settings{Database: "alpha", Collection: "one", Unique: []string{"a"}}}
	load := &LoadCmd{File: test.WriteFile(t, "dup.csv", "a,a\n1,2\n")}
	assert.ErrorIs(t, load.Run(s), mdbtab.ErrBadHeader)
}

func TestCheckTarget(t *testing.T) {
	assert.NoError(t, (&settings{Database: "alpha", Collection: "one"}).checkTarget())
	assert.ErrorIs(t, (&settings{Database: "alpha"}).checkTarget(), errNoTarget)
	assert.ErrorIs(t, (&settings{Collection: "one"}).checkTarget(), errNoTarget)
}

func TestMainNoTarget(t *testing.T) {
	t.Setenv("MDB_DATABASE", "")
	t.Setenv("MDB_COLLECTION", "")
	// Unreachable URI: the target check must fail before any connection attempt.
	err := mainImpl([]string{"--uri", "mongodb://127.0.0.1:1", "insert", "-f", "-"})
	assert.ErrorIs(t, err, errNoTarget)
}

func TestReadInput(t *testing.T) {
	path := test.WriteFile(t, "records.json", `[{"alpha": "one"}]`)
	data, err := readInput(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"alpha": "one"}]`, string(data))

	_, err = readInput(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
