// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverS3       = "s3"
	DriverFile     = "file"
)

// defaultConfig returns the lowest-priority configuration layer.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Holder:   "lockbox",
			LogLevel: "info",
		},
		Storage: Storage{
			Queue: Queue{DSN: "lockbox-queue.db"},
			Metadata: Metadata{
				Driver:     DriverMemory,
				LockDomain: "lockbox-locks",
				DataDomain: "lockbox-data",
			},
			Blobs: Blobs{Driver: DriverFile, Dir: "lockbox-blobs"},
		},
		Sync: Sync{
			Shepherds:         4,
			PollInterval:      time.Second,
			LockTimeout:       30 * time.Second,
			MaxCommitAttempts: 3,
			WriteRetries:      3,
			RetryDelay:        200 * time.Millisecond,
			CallTimeout:       10 * time.Second,
		},
		Server: Server{
			HTTPAddress:    "localhost:8787",
			RequestTimeout: 10 * time.Second,
		},
		Adapter: Adapter{
			HTTPAddress:    "localhost:8787",
			RequestTimeout: 10 * time.Second,
		},
	}
}
