// Command lockboxctl inspects and drives a running lockbox daemon through its
// status API.
//
// Usage:
//
//	lockboxctl [-a address] list [-state failed] [-limit 50]
//	lockboxctl [-a address] get <id>
//	lockboxctl [-a address] replay <id>
//	lockboxctl [-a address] wip
//	lockboxctl [-a address] version
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/MKhiriev/lockbox/internal/adapter"
	"github.com/MKhiriev/lockbox/internal/config"
	"github.com/MKhiriev/lockbox/internal/logger"
	"github.com/MKhiriev/lockbox/models"
)

var errUsage = errors.New("usage: lockboxctl [-a address] list|get|replay|wip|version")

func main() {
	cfg, err := config.GetCtlConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error getting configs:", err)
		os.Exit(1)
	}
	log := logger.NewLoggerTo(os.Stderr, "lockboxctl", cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err = run(ctx, os.Args[1:], os.Stdout, cfg, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, cfg *config.CtlConfig, log *logger.Logger) error {
	fs := flag.NewFlagSet("lockboxctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	address := fs.String("a", cfg.Adapter.HTTPAddress, "Status API address")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	adapterCfg := cfg.Adapter
	adapterCfg.HTTPAddress = *address
	status, err := adapter.NewHTTPStatusAdapter(adapterCfg, log)
	if err != nil {
		return err
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "list":
		return list(ctx, status, rest, out)
	case "get":
		id, err := entryID(rest)
		if err != nil {
			return err
		}
		entry, err := status.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, entry)
	case "replay":
		id, err := entryID(rest)
		if err != nil {
			return err
		}
		entry, err := status.Replay(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, entry)
	case "wip":
		wip, err := status.WorkInProgress(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, wip)
	case "version":
		version, err := status.Version(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, version)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func list(ctx context.Context, status adapter.StatusAdapter, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rawState := fs.String("state", "", "Filter by state")
	limit := fs.Int("limit", 0, "Maximum number of rows")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	var state models.EntryState
	if *rawState != "" {
		parsed, err := models.ParseEntryState(*rawState)
		if err != nil {
			return err
		}
		state = parsed
	}

	entries, err := status.ListEntries(ctx, state, *limit)
	if err != nil {
		return err
	}
	return printJSON(out, entries)
}

func entryID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one entry id", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid entry id %q", errUsage, args[0])
	}
	return id, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
