// Package config loads the process environment and the INI job-defaults
// file, and validates job parameters before a run starts.
package config

import (
	"errors"
	"os"
)

// Checkpoint store backends.
const (
	BackendPebble = "pebble"
	BackendFile   = "file"
)

// Env holds process-level settings, populated from environment variables
// (typically via the .env file loaded in main).
type Env struct {
	SQLConnString   string
	MongoConnString string
	CheckpointDir   string
	CheckpointStore string
	LogFile         string
	Debug           bool
}

// LoadEnv reads the environment. Connection strings are validated lazily:
// only the jobs that need a backend require it.
func LoadEnv() Env {
	env := Env{
		SQLConnString:   os.Getenv("SQL_CONNECTION_STRING"),
		MongoConnString: os.Getenv("MONGO_CONNECTION_STRING"),
		CheckpointDir:   os.Getenv("CHECKPOINT_DIR"),
		CheckpointStore: os.Getenv("CHECKPOINT_STORE"),
		LogFile:         os.Getenv("LOG_FILE"),
		Debug:           os.Getenv("DEBUG") == "true",
	}
	if env.CheckpointDir == "" {
		env.CheckpointDir = ".batchline"
	}
	if env.CheckpointStore == "" {
		env.CheckpointStore = BackendPebble
	}
	return env
}

// SQLConn returns the SQL connection string, erroring when the job needs a
// database but none is configured.
func (e Env) SQLConn() (string, error) {
	if e.SQLConnString == "" {
		return "", errors.New("SQL_CONNECTION_STRING environment variable not set")
	}
	return e.SQLConnString, nil
}

// MongoConn returns the MongoDB connection string for the archive sink.
func (e Env) MongoConn() (string, error) {
	if e.MongoConnString == "" {
		return "", errors.New("MONGO_CONNECTION_STRING environment variable not set")
	}
	return e.MongoConnString, nil
}
