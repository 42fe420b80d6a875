// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"os"
	"time"
)

// StructuredConfig is the top-level configuration container for the lockbox
// daemon. It aggregates all sub-configurations and is populated by merging
// defaults, environment variables, command-line flags, and an optional JSON
// file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds identity and key material settings.
	App App `envPrefix:"APP_"`
	// Storage holds configuration for the durable queue, the metadata
	// attribute store and the blob store.
	Storage Storage `envPrefix:"STORAGE_"`
	// Sync holds settings of the mediator, the shepherd pool and the
	// metadata protocol.
	Sync Sync `envPrefix:"SYNC_"`
	// Server holds the status API listener settings.
	Server Server `envPrefix:"SERVER_"`
	// Adapter holds the settings lockboxctl uses to reach the status API.
	Adapter Adapter `envPrefix:"ADAPTER_"`
	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// HashKey is the HMAC key used to derive object ids from relative paths.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`
	// Recipients are the age X25519 public keys (age1...) every file is
	// encrypted to.
	// Env: APP_RECIPIENTS (comma separated)
	Recipients []string `env:"RECIPIENTS" envSeparator:","`
	// Holder is the name recorded in lock records taken by this client.
	// Env: APP_HOLDER
	Holder string `env:"HOLDER"`
	// LogLevel is the zerolog level name.
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`
	// Version is the semantic version string of the running daemon.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for all storage backends.
type Storage struct {
	Queue    Queue    `envPrefix:"QUEUE_"`
	Metadata Metadata `envPrefix:"METADATA_"`
	Blobs    Blobs    `envPrefix:"BLOBS_"`
}

// Queue holds the durable change queue settings.
type Queue struct {
	// DSN is the sqlite database file of the change queue.
	// Env: STORAGE_QUEUE_DSN
	DSN string `env:"DSN"`
}

// Metadata holds the attribute store settings.
type Metadata struct {
	// Driver selects the attribute store: "postgres" or "memory".
	// Env: STORAGE_METADATA_DRIVER
	Driver string `env:"DRIVER"`
	// DSN is the PostgreSQL connection string used by the postgres driver.
	// Env: STORAGE_METADATA_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
	// LockDomain is the attribute-store domain holding lock records.
	// Env: STORAGE_METADATA_LOCK_DOMAIN
	LockDomain string `env:"LOCK_DOMAIN"`
	// DataDomain is the attribute-store domain holding version records.
	// Env: STORAGE_METADATA_DATA_DOMAIN
	DataDomain string `env:"DATA_DOMAIN"`
}

// Blobs holds the blob store settings.
type Blobs struct {
	// Driver selects the blob store: "s3", "file" or "memory".
	// Env: STORAGE_BLOBS_DRIVER
	Driver string `env:"DRIVER"`
	// Dir is the root directory of the file driver.
	// Env: STORAGE_BLOBS_DIR
	Dir string `env:"DIR"`
	S3  S3     `envPrefix:"S3_"`
}

// S3 holds the S3-compatible object store settings.
type S3 struct {
	Bucket       string `env:"BUCKET"`
	Region       string `env:"REGION"`
	Endpoint     string `env:"ENDPOINT"`
	AccessKey    string `env:"ACCESS_KEY"`
	SecretKey    string `env:"SECRET_KEY"`
	UsePathStyle bool   `env:"USE_PATH_STYLE"`
}

// Sync holds the scheduling and protocol settings.
type Sync struct {
	// Root is the watched directory; object ids are derived from paths
	// relative to it.
	// Env: SYNC_ROOT
	Root string `env:"ROOT"`
	// Shepherds is the size of the worker pool.
	// Env: SYNC_SHEPHERDS
	Shepherds int `env:"SHEPHERDS"`
	// PollInterval is the longest the coordinator sleeps between scans when
	// it is not woken up by an enqueue or a completion.
	// Env: SYNC_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`
	// LockTimeout is the age after which a lock record is ignored. It must
	// exceed twice CallTimeout so a commit finishes before its lock expires.
	// Env: SYNC_LOCK_TIMEOUT
	LockTimeout time.Duration `env:"LOCK_TIMEOUT"`
	// MaxCommitAttempts bounds how many times a shepherd re-reads the head
	// and retries after a version conflict or lock contention.
	// Env: SYNC_MAX_COMMIT_ATTEMPTS
	MaxCommitAttempts int `env:"MAX_COMMIT_ATTEMPTS"`
	// WriteRetries bounds retries of transient attribute-store write failures.
	// Env: SYNC_WRITE_RETRIES
	WriteRetries int `env:"WRITE_RETRIES"`
	// RetryDelay is the base delay between write retries; jitter is added.
	// Env: SYNC_RETRY_DELAY
	RetryDelay time.Duration `env:"RETRY_DELAY"`
	// CallTimeout is the deadline of every individual remote call.
	// Env: SYNC_CALL_TIMEOUT
	CallTimeout time.Duration `env:"CALL_TIMEOUT"`
	// Retention is the age after which completed queue rows are purged.
	// Zero keeps every row.
	// Env: SYNC_RETENTION
	Retention time.Duration `env:"RETENTION"`
}

// Server holds the status API listener settings.
type Server struct {
	// HTTPAddress is the TCP address of the status API in "host:port" form.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
	// RequestTimeout bounds a single status API request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds the settings lockboxctl uses to reach the status API.
type Adapter struct {
	// HTTPAddress is the status API address.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`
	// RequestTimeout is the timeout of outbound requests.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// GetStructuredConfig loads, merges, and validates the daemon configuration
// from all available sources in the following priority order (last source
// wins for non-zero fields):
//  0. Built-in defaults
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
func GetStructuredConfig() (*StructuredConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(os.Args[1:]).
		withJSON().
		build()
	if err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

// CtlConfig is the configuration view used by lockboxctl.
type CtlConfig struct {
	Adapter Adapter
	App     App
}

// GetCtlConfig builds a lockboxctl configuration from defaults, environment
// variables and the optional JSON file. Command-line flags belong to the
// individual subcommands and are not read here.
func GetCtlConfig() (*CtlConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults().
		withEnv().
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	ctlCfg := &CtlConfig{
		Adapter: cfg.Adapter,
		App:     cfg.App,
	}

	return ctlCfg, ctlCfg.validate()
}
