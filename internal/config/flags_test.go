package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNetAddress_String tests the String method of NetAddress
func TestNetAddress_String(t *testing.T) {
	tests := []struct {
		name     string
		addr     NetAddress
		expected string
	}{
		{name: "empty address", addr: NetAddress{}, expected: ""},
		{name: "localhost with port", addr: NetAddress{Host: "localhost", Port: 8080}, expected: "localhost:8080"},
		{name: "IP address with port", addr: NetAddress{Host: "127.0.0.1", Port: 9090}, expected: "127.0.0.1:9090"},
		{name: "only port no host", addr: NetAddress{Port: 8080}, expected: ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.addr.String())
		})
	}
}

// TestNetAddress_Set tests the Set method of NetAddress
func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected NetAddress
		wantErr  bool
	}{
		{name: "localhost", input: "localhost:8080", expected: NetAddress{Host: "localhost", Port: 8080}},
		{name: "ipv4", input: "10.0.0.1:443", expected: NetAddress{Host: "10.0.0.1", Port: 443}},
		{name: "missing port", input: "localhost", wantErr: true},
		{name: "non numeric port", input: "localhost:http", wantErr: true},
		{name: "zero port", input: "localhost:0", wantErr: true},
		{name: "bad host", input: "example.com:80", wantErr: true},
		{name: "too many colons", input: "a:b:c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, addr)
		})
	}
}

func TestStringList_Set(t *testing.T) {
	var s stringList
	require.NoError(t, s.Set("age1a, age1b,,"))
	require.NoError(t, s.Set("age1c"))

	assert.Equal(t, stringList{"age1a", "age1b", "age1c"}, s)
	assert.Equal(t, "age1a,age1b,age1c", s.String())
}

func TestParseFlags_AllFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-a", "127.0.0.1:9000",
		"-root", "/srv/docs",
		"-shepherds", "6",
		"-queue-dsn", "q.db",
		"-metadata-driver", "postgres",
		"-metadata-dsn", "postgres://localhost/lockbox",
		"-blobs-driver", "s3",
		"-blobs-dir", "/tmp/blobs",
		"-s3-bucket", "bucket",
		"-s3-endpoint", "http://minio:9000",
		"-hash-key", "k",
		"-recipients", "age1x,age1y",
		"-holder", "desk",
		"-log-level", "debug",
		"-poll-interval", "3s",
		"-lock-timeout", "20s",
		"-call-timeout", "1m",
		"-max-commit-attempts", "7",
		"-retention", "24h",
		"-c", "/etc/lockbox.json",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.HTTPAddress)
	assert.Equal(t, "/srv/docs", cfg.Sync.Root)
	assert.Equal(t, 6, cfg.Sync.Shepherds)
	assert.Equal(t, "q.db", cfg.Storage.Queue.DSN)
	assert.Equal(t, "postgres", cfg.Storage.Metadata.Driver)
	assert.Equal(t, "postgres://localhost/lockbox", cfg.Storage.Metadata.DSN)
	assert.Equal(t, "s3", cfg.Storage.Blobs.Driver)
	assert.Equal(t, "/tmp/blobs", cfg.Storage.Blobs.Dir)
	assert.Equal(t, "bucket", cfg.Storage.Blobs.S3.Bucket)
	assert.Equal(t, "http://minio:9000", cfg.Storage.Blobs.S3.Endpoint)
	assert.Equal(t, "k", cfg.App.HashKey)
	assert.Equal(t, []string{"age1x", "age1y"}, cfg.App.Recipients)
	assert.Equal(t, "desk", cfg.App.Holder)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Sync.PollInterval)
	assert.Equal(t, 20*time.Second, cfg.Sync.LockTimeout)
	assert.Equal(t, time.Minute, cfg.Sync.CallTimeout)
	assert.Equal(t, 7, cfg.Sync.MaxCommitAttempts)
	assert.Equal(t, 24*time.Hour, cfg.Sync.Retention)
	assert.Equal(t, "/etc/lockbox.json", cfg.JSONFilePath)
}

func TestParseFlags_NoFlags(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestParseFlags_ConfigAlias(t *testing.T) {
	cfg, err := parseFlags([]string{"-config", "cfg.json"})
	require.NoError(t, err)
	assert.Equal(t, "cfg.json", cfg.JSONFilePath)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-token-issuer", "x"}},
		{name: "bad address", args: []string{"-a", "nowhere"}},
		{name: "bad duration", args: []string{"-lock-timeout", "soon"}},
		{name: "bad int", args: []string{"-shepherds", "four"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseFlags(tt.args)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "error parsing flags")
		})
	}
}
