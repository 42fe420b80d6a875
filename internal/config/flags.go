package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// stringList is a comma separated flag value.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// parseFlags parses the daemon flags from args.
//
// Flags:
//
//	-a status API address in format [host]:[port]
//	-root watched directory
//	-shepherds worker pool size
//	-queue-dsn sqlite file of the change queue
//	-metadata-driver postgres|memory
//	-metadata-dsn postgres DSN
//	-blobs-driver s3|file|memory
//	-blobs-dir file blob store root
//	-s3-bucket S3 bucket
//	-s3-endpoint S3 endpoint
//	-hash-key object id HMAC key
//	-recipients comma separated age recipients
//	-holder lock holder name
//	-log-level zerolog level
//	-poll-interval coordinator poll interval
//	-lock-timeout lock expiry
//	-call-timeout per remote call deadline
//	-max-commit-attempts commit retries after conflicts
//	-retention completed row retention
//	-c/-config json file path with configs
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("lockbox", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var serverAddress NetAddress
	var recipients stringList
	var root, queueDSN, metadataDriver, metadataDSN string
	var blobsDriver, blobsDir, s3Bucket, s3Endpoint string
	var hashKey, holder, logLevel, jsonConfigPath string
	var shepherds, maxCommitAttempts int
	var pollInterval, lockTimeout, callTimeout, retention time.Duration

	fs.Var(&serverAddress, "a", "Status API address host:port")
	fs.StringVar(&root, "root", "", "Watched directory")
	fs.IntVar(&shepherds, "shepherds", 0, "Worker pool size")
	fs.StringVar(&queueDSN, "queue-dsn", "", "Change queue sqlite file")
	fs.StringVar(&metadataDriver, "metadata-driver", "", "Metadata store driver (postgres|memory)")
	fs.StringVar(&metadataDSN, "metadata-dsn", "", "Metadata store DSN")
	fs.StringVar(&blobsDriver, "blobs-driver", "", "Blob store driver (s3|file|memory)")
	fs.StringVar(&blobsDir, "blobs-dir", "", "File blob store directory")
	fs.StringVar(&s3Bucket, "s3-bucket", "", "S3 bucket")
	fs.StringVar(&s3Endpoint, "s3-endpoint", "", "S3 endpoint")
	fs.StringVar(&hashKey, "hash-key", "", "Object id HMAC key")
	fs.Var(&recipients, "recipients", "Comma separated age recipients")
	fs.StringVar(&holder, "holder", "", "Lock holder name")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.DurationVar(&pollInterval, "poll-interval", 0, "Coordinator poll interval (e.g., 1s)")
	fs.DurationVar(&lockTimeout, "lock-timeout", 0, "Lock expiry (e.g., 30s)")
	fs.DurationVar(&callTimeout, "call-timeout", 0, "Remote call deadline (e.g., 10s)")
	fs.IntVar(&maxCommitAttempts, "max-commit-attempts", 0, "Commit attempts after conflicts")
	fs.DurationVar(&retention, "retention", 0, "Completed row retention (e.g., 168h)")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			HashKey:    hashKey,
			Recipients: recipients,
			Holder:     holder,
			LogLevel:   logLevel,
		},
		Storage: Storage{
			Queue: Queue{DSN: queueDSN},
			Metadata: Metadata{
				Driver: metadataDriver,
				DSN:    metadataDSN,
			},
			Blobs: Blobs{
				Driver: blobsDriver,
				Dir:    blobsDir,
				S3: S3{
					Bucket:   s3Bucket,
					Endpoint: s3Endpoint,
				},
			},
		},
		Sync: Sync{
			Root:              root,
			Shepherds:         shepherds,
			PollInterval:      pollInterval,
			LockTimeout:       lockTimeout,
			MaxCommitAttempts: maxCommitAttempts,
			CallTimeout:       callTimeout,
			Retention:         retention,
		},
		Server: Server{
			HTTPAddress: serverAddress.String(),
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string when neither Host nor Port are set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
