package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk JSON layout of the configuration.
type StructuredJSONConfig struct {
	App struct {
		HashKey    string   `json:"hash_key"`
		Recipients []string `json:"recipients"`
		Holder     string   `json:"holder"`
		LogLevel   string   `json:"log_level"`
		Version    string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		Queue struct {
			DSN string `json:"dsn"`
		} `json:"queue,omitempty"`

		Metadata struct {
			Driver     string `json:"driver"`
			DSN        string `json:"dsn"`
			LockDomain string `json:"lock_domain"`
			DataDomain string `json:"data_domain"`
		} `json:"metadata,omitempty"`

		Blobs struct {
			Driver string `json:"driver"`
			Dir    string `json:"dir"`
			S3     struct {
				Bucket       string `json:"bucket"`
				Region       string `json:"region"`
				Endpoint     string `json:"endpoint"`
				AccessKey    string `json:"access_key"`
				SecretKey    string `json:"secret_key"`
				UsePathStyle bool   `json:"use_path_style"`
			} `json:"s3,omitempty"`
		} `json:"blobs,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		Root              string   `json:"root"`
		Shepherds         int      `json:"shepherds"`
		PollInterval      Duration `json:"poll_interval"`
		LockTimeout       Duration `json:"lock_timeout"`
		MaxCommitAttempts int      `json:"max_commit_attempts"`
		WriteRetries      int      `json:"write_retries"`
		RetryDelay        Duration `json:"retry_delay"`
		CallTimeout       Duration `json:"call_timeout"`
		Retention         Duration `json:"retention"`
	} `json:"sync,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	s3 := jsonCfg.Storage.Blobs.S3
	cfg := &StructuredConfig{
		App: App{
			HashKey:    jsonCfg.App.HashKey,
			Recipients: jsonCfg.App.Recipients,
			Holder:     jsonCfg.App.Holder,
			LogLevel:   jsonCfg.App.LogLevel,
			Version:    jsonCfg.App.Version,
		},
		Storage: Storage{
			Queue: Queue{DSN: jsonCfg.Storage.Queue.DSN},
			Metadata: Metadata{
				Driver:     jsonCfg.Storage.Metadata.Driver,
				DSN:        jsonCfg.Storage.Metadata.DSN,
				LockDomain: jsonCfg.Storage.Metadata.LockDomain,
				DataDomain: jsonCfg.Storage.Metadata.DataDomain,
			},
			Blobs: Blobs{
				Driver: jsonCfg.Storage.Blobs.Driver,
				Dir:    jsonCfg.Storage.Blobs.Dir,
				S3: S3{
					Bucket:       s3.Bucket,
					Region:       s3.Region,
					Endpoint:     s3.Endpoint,
					AccessKey:    s3.AccessKey,
					SecretKey:    s3.SecretKey,
					UsePathStyle: s3.UsePathStyle,
				},
			},
		},
		Sync: Sync{
			Root:              jsonCfg.Sync.Root,
			Shepherds:         jsonCfg.Sync.Shepherds,
			PollInterval:      time.Duration(jsonCfg.Sync.PollInterval),
			LockTimeout:       time.Duration(jsonCfg.Sync.LockTimeout),
			MaxCommitAttempts: jsonCfg.Sync.MaxCommitAttempts,
			WriteRetries:      jsonCfg.Sync.WriteRetries,
			RetryDelay:        time.Duration(jsonCfg.Sync.RetryDelay),
			CallTimeout:       time.Duration(jsonCfg.Sync.CallTimeout),
			Retention:         time.Duration(jsonCfg.Sync.Retention),
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
