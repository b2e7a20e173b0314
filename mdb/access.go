package mdb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/madkins23/go-mongo-ingest/mdbtab"
)

// Access encapsulates the database connection and the handles provisioned through it.
type Access struct {
	client    *mongo.Client
	config    Config
	databases map[string]*Database
	mu        sync.Mutex
}

var (
	// DefaultURI is the default connection URI if not provided in Config.URI or Config.Options.
	DefaultURI = "mongodb://localhost:27017"

	// DefaultLogInfoFn is the default info logging function.
	DefaultLogInfoFn = func(msg string) {
		fmt.Printf("MDB: %s\n", msg)
	}

	// DefaultConnectTimeout is the default timeout for the initial connect.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultDisconnectTimeout is the default timeout for the disconnect.
	DefaultDisconnectTimeout = 10 * time.Second

	// DefaultPingTimeout is the default timeout for the ping to make sure the connection is up.
	DefaultPingTimeout = 2 * time.Second

	// DefaultCollectionTimeout is the default timeout for collection access.
	DefaultCollectionTimeout = time.Second

	// DefaultIndexTimeout is the default timeout for index access.
	DefaultIndexTimeout = 5 * time.Second

	// DefaultInsertTimeout is the default timeout for a single insert call.
	// Multi-inserts of large files share the same timeout.
	DefaultInsertTimeout = 30 * time.Second
)

// Config items for Mongo DB connection.
type Config struct {
	// Base context for use in calls to Mongo.
	Ctx context.Context

	// Connection URI, applied on top of Options.
	URI string

	// Mongo options.
	Options *options.ClientOptions

	// Optional BSON codec registry for handling special types.
	Registry *bsoncodec.Registry

	// Logging function for information messages may be overridden.
	LogInfoFn func(msg string)
	// Errors should bubble up and be handled by client code.

	Timeout
}

// Timeout settings for Mongo DB access.
type Timeout struct {
	// Timeout for the initial connect.
	Connect time.Duration

	// Timeout for the disconnect.
	Disconnect time.Duration

	// Timeout for the ping to make sure the connection is up.
	Ping time.Duration

	// Timeout for collection access.
	Collection time.Duration

	// Timeout for indexes.
	Index time.Duration

	// Timeout for inserts.
	Insert time.Duration
}

var (
	ErrNoDbName         = errors.New("no database name")
	ErrNoCollectionName = errors.New("no collection name")
)

// Connect to Mongo DB and return Access object.
// If the config is nil or any of its fields are empty they are defaulted.
// No database is selected here, they are provisioned on first use.
func Connect(config *Config) (*Access, error) {
	config = fixConfig(config)
	ctx, cancel := context.WithTimeout(config.Ctx, config.Timeout.Connect)
	defer cancel()

	client, err := mongo.Connect(ctx, config.Options)
	if err != nil {
		return nil, fmt.Errorf("unable to connect mongo server: %w", err)
	}

	access := newAccess(client, config)
	if err = access.Ping(); err != nil {
		return nil, err
	}

	access.Info("Connected to MongoDB")

	return access, nil
}

// ConnectOrPanic connects to Mongo DB and returns Access object or panics on error.
func ConnectOrPanic(config *Config) *Access {
	access, err := Connect(config)
	if err != nil {
		panic(err)
	}

	return access
}

func newAccess(client *mongo.Client, config *Config) *Access {
	return &Access{
		client:    client,
		config:    *config,
		databases: make(map[string]*Database),
	}
}

// Disconnect Mongo DB client.
// Provided for use in defer statements.
func (a *Access) Disconnect() error {
	ctx, cancel := a.ContextWithTimeout(a.config.Timeout.Disconnect)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("unable to disconnect mongo server: %w", err)
	}

	return nil
}

// DisconnectOrPanic disconnects the Mongo DB client or panics on error.
// Provided for use in defer statements.
func (a *Access) DisconnectOrPanic() {
	if err := a.Disconnect(); err != nil {
		panic(err)
	}
}

// Client returns the Mongo client object.
func (a *Access) Client() *mongo.Client {
	return a.client
}

// Context returns the base context for the object.
func (a *Access) Context() context.Context {
	return a.config.Ctx
}

// ContextWithTimeout returns the base context for the object with the specified timeout.
func (a *Access) ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(a.config.Ctx, timeout)
}

// Ping executes a ping against the Mongo server.
// This is separated from Connect() so that it can be overridden if necessary.
func (a *Access) Ping() error {
	ctx, cancel := a.ContextWithTimeout(a.config.Timeout.Ping)
	defer cancel()
	err := a.client.Ping(ctx, readpref.Primary())
	if err != nil {
		return fmt.Errorf("unable to ping mongo server: %w", err)
	}

	return nil
}

// Info prints a simple message in the format MDB: <msg>.
// This is used for a few calls within the Access code.
// It may be overridden to use another logger or to block these messages.
func (a *Access) Info(msg string) {
	a.config.LogInfoFn(msg)
}

func fixConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}

	if config.Ctx == nil {
		config.Ctx = context.Background()
	}

	if config.Options == nil {
		config.Options = options.Client()
	}

	if config.URI != "" {
		config.Options.ApplyURI(config.URI)
	} else if config.Options.GetURI() == "" {
		config.Options.ApplyURI(DefaultURI)
	}

	if config.Registry != nil {
		config.Options.SetRegistry(config.Registry)
	}

	if config.LogInfoFn == nil {
		config.LogInfoFn = DefaultLogInfoFn
	}

	if config.Timeout.Connect == 0 {
		config.Timeout.Connect = DefaultConnectTimeout
	}

	if config.Timeout.Disconnect == 0 {
		config.Timeout.Disconnect = DefaultDisconnectTimeout
	}

	if config.Timeout.Ping == 0 {
		config.Timeout.Ping = DefaultPingTimeout
	}

	if config.Timeout.Collection == 0 {
		config.Timeout.Collection = DefaultCollectionTimeout
	}

	if config.Timeout.Index == 0 {
		config.Timeout.Index = DefaultIndexTimeout
	}

	if config.Timeout.Insert == 0 {
		config.Timeout.Insert = DefaultInsertTimeout
	}

	return config
}

////////////////////////////////////////////////////////////////////////////////

// CreateDatabase returns the handle for the named database, creating it if necessary.
// Repeated calls with the same name return the same handle.
// Nothing is sent to the server, Mongo creates the database on first write.
func (a *Access) CreateDatabase(name string) (*Database, error) {
	if name == "" {
		return nil, ErrNoDbName
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if database, found := a.databases[name]; found {
		return database, nil
	}

	database := newDatabase(a, name)
	a.databases[name] = database
	a.Info("Provisioned database " + name)

	return database, nil
}

// Database is a synonym for CreateDatabase.
func (a *Access) Database(name string) (*Database, error) {
	return a.CreateDatabase(name)
}

// Databases returns the sorted names of all provisioned databases.
func (a *Access) Databases() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.databases))
	for name := range a.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Collection returns the handle for the named collection in the named database,
// provisioning either or both if necessary.
func (a *Access) Collection(collectionName, databaseName string) (*Collection, error) {
	database, err := a.CreateDatabase(databaseName)
	if err != nil {
		return nil, err
	}

	return database.CreateCollection(collectionName)
}

// InsertRecord writes the records into the named collection,
// provisioning the database and collection handles if necessary.
// A multi-insert that fails part way through is not rolled back.
func (a *Access) InsertRecord(records Records, collectionName, databaseName string) error {
	collection, err := a.Collection(collectionName, databaseName)
	if err != nil {
		return err
	}

	return collection.InsertRecords(records)
}

// Insert converts an untyped payload with RecordsOf and inserts the result.
// Handles are provisioned before the payload is checked
// but nothing is written unless every element is a mapping.
func (a *Access) Insert(payload interface{}, collectionName, databaseName string) error {
	collection, err := a.Collection(collectionName, databaseName)
	if err != nil {
		return err
	}

	records, err := RecordsOf(payload)
	if err != nil {
		return err
	}

	return collection.InsertRecords(records)
}

// InsertExtJSON parses a relaxed Extended JSON document or array of documents and inserts it.
func (a *Access) InsertExtJSON(data []byte, collectionName, databaseName string) error {
	records, err := ParseExtJSON(data)
	if err != nil {
		return err
	}

	return a.InsertRecord(records, collectionName, databaseName)
}

// BulkInsert loads a tabular file (.csv or .xlsx) fully into memory
// and inserts one record per data row.
// The file is read before any handle is provisioned
// so an unsupported file type fails without touching the database.
func (a *Access) BulkInsert(filePath, collectionName, databaseName string, opts ...mdbtab.Option) error {
	rows, err := mdbtab.Load(filePath, opts...)
	if err != nil {
		return fmt.Errorf("load %s: %w", filePath, err)
	}

	return a.InsertRecord(Many(rows...), collectionName, databaseName)
}

////////////////////////////////////////////////////////////////////////////////
// Functions to check for specific, known errors.

// IsDuplicate checks to see if the specified error is for attempting to create a duplicate document.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}

	return false
}

// IsNotFound checks an error condition to see if it matches the underlying database "not found" error.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, mongo.ErrNoDocuments)
}
