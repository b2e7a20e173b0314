package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/madkins23/go-mongo-ingest/mdb"
)

// settings are the connection and target values after flags, environment and config file are merged.
type settings struct {
	URI        string
	Database   string
	Collection string
	Unique     []string
}

// checkTarget makes sure there is somewhere to write records.
func (s *settings) checkTarget() error {
	if s.Database == "" || s.Collection == "" {
		return errNoTarget
	}
	return nil
}

// resolveSettings layers flags over MDB_* environment variables
// over the config file over defaults.
func resolveSettings(cli *CLI) (*settings, error) {
	v := viper.New()
	v.SetDefault("uri", mdb.DefaultURI)
	v.SetDefault("database", "")
	v.SetDefault("collection", "")
	v.SetDefault("unique", []string{})

	v.SetEnvPrefix("MDB")
	v.AutomaticEnv()

	if cli.Config != "" {
		v.SetConfigFile(cli.Config)
	} else {
		v.SetConfigName("mdbload")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cli.Config != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if cli.URI != "" {
		v.Set("uri", cli.URI)
	}
	if cli.Database != "" {
		v.Set("database", cli.Database)
	}
	if cli.Collection != "" {
		v.Set("collection", cli.Collection)
	}
	if len(cli.Unique) > 0 {
		v.Set("unique", cli.Unique)
	}

	return &settings{
		URI:        v.GetString("uri"),
		Database:   v.GetString("database"),
		Collection: v.GetString("collection"),
		Unique:     v.GetStringSlice("unique"),
	}, nil
}
