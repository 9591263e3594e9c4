package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/importer"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/output"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "JSONSHEET"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Import  ImportConfig
	Convert ConvertConfig
	Export  ExportConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// ImportConfig holds chunked reader settings.
type ImportConfig struct {
	ChunkSize     int    `mapstructure:"chunk_size"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	Encoding      string `mapstructure:"encoding"`
}

// ConvertConfig holds record extraction and sheet naming settings.
type ConvertConfig struct {
	RecordKey        string `mapstructure:"record_key"`
	DefaultSheetName string `mapstructure:"default_sheet_name"`
}

// ExportConfig holds xlsx writer settings.
type ExportConfig struct {
	AutoFilter bool `mapstructure:"autofilter"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":       "server.addr",
	"chunk-size": "import.chunk_size",
	"encoding":   "import.encoding",
	"record-key": "convert.record_key",
	"sheet-name": "convert.default_sheet_name",
	"autofilter": "export.autofilter",
}

// Load reads configuration from, in increasing priority: defaults, the
// optional file at path, environment variables with the JSONSHEET_ prefix
// (a .env file in the working directory is loaded first), and the flags in
// flags that were set explicitly. path and flags may be empty/nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.max_upload_mb", 100)

	// Import defaults
	v.SetDefault("import.chunk_size", importer.DefaultChunkSize)
	v.SetDefault("import.max_file_size_mb", 0)
	v.SetDefault("import.encoding", "")

	// Convert defaults
	defaults := jsonsheet.DefaultOptions()
	v.SetDefault("convert.record_key", defaults.RecordKey)
	v.SetDefault("convert.default_sheet_name", defaults.DefaultSheetName)

	v.SetDefault("export.autofilter", false)
	v.SetDefault("log.prefix", "")

	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key, envName(key))
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	// PORT is honored for platform deployments unless the address is set explicitly.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envName("server.addr")) == "" && !v.InConfig("server.addr") {
		v.SetDefault("server.addr", ":"+strings.TrimPrefix(port, ":"))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Import.ChunkSize <= 0 {
		return fmt.Errorf("import.chunk_size must be positive, got %d", c.Import.ChunkSize)
	}
	if c.Import.MaxFileSizeMB < 0 {
		return fmt.Errorf("import.max_file_size_mb must not be negative, got %d", c.Import.MaxFileSizeMB)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

// SessionOptions converts the configuration into session options.
func (c *Config) SessionOptions() jsonsheet.SessionOptions {
	return jsonsheet.SessionOptions{
		Import: importer.Options{
			ChunkSize: c.Import.ChunkSize,
			MaxBytes:  c.Import.MaxFileSizeMB << 20,
			Encoding:  c.Import.Encoding,
		},
		Convert: jsonsheet.Options{
			RecordKey:        c.Convert.RecordKey,
			DefaultSheetName: c.Convert.DefaultSheetName,
		},
		Export: output.XLSXOptions{
			AutoFilter: c.Export.AutoFilter,
		},
	}
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
