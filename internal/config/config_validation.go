// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// validate checks that the merged [StructuredConfig] can start the daemon.
// All violations are joined into the returned error.
func (cfg *StructuredConfig) validate() error {
	var errs []error

	if cfg.App.HashKey == "" || len(cfg.App.Recipients) == 0 {
		errs = append(errs, ErrInvalidAppConfigs)
	}

	if cfg.Storage.Queue.DSN == "" {
		errs = append(errs, ErrInvalidStorageConfigs)
	}

	switch cfg.Storage.Metadata.Driver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.Storage.Metadata.DSN == "" {
			errs = append(errs, ErrInvalidStorageConfigs)
		}
	default:
		errs = append(errs, ErrInvalidStorageConfigs)
	}

	switch cfg.Storage.Blobs.Driver {
	case DriverMemory:
	case DriverFile:
		if cfg.Storage.Blobs.Dir == "" {
			errs = append(errs, ErrInvalidStorageConfigs)
		}
	case DriverS3:
		if cfg.Storage.Blobs.S3.Bucket == "" {
			errs = append(errs, ErrInvalidStorageConfigs)
		}
	default:
		errs = append(errs, ErrInvalidStorageConfigs)
	}

	if cfg.Sync.Root == "" || cfg.Sync.Shepherds < 1 || cfg.Sync.PollInterval <= 0 ||
		cfg.Sync.LockTimeout <= 0 || cfg.Sync.MaxCommitAttempts < 1 || cfg.Sync.WriteRetries < 0 {
		errs = append(errs, ErrInvalidSyncConfigs)
	}

	// A commit holds the object lock for a set_path and an update_object
	// call, each bounded by CallTimeout.
	if cfg.Sync.CallTimeout <= 0 || cfg.Sync.LockTimeout <= 2*cfg.Sync.CallTimeout {
		errs = append(errs, ErrInvalidSyncConfigs)
	}

	if cfg.Server.HTTPAddress == "" {
		errs = append(errs, ErrInvalidServerConfigs)
	}

	return errors.Join(errs...)
}

func (cfg *CtlConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
