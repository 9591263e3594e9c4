package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(100), cfg.Server.MaxUploadMB)
	assert.Equal(t, 64*1024, cfg.Import.ChunkSize)
	assert.Equal(t, "parallel", cfg.Convert.RecordKey)
	assert.Equal(t, "Sheet1", cfg.Convert.DefaultSheetName)
	assert.False(t, cfg.Export.AutoFilter)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("JSONSHEET_SERVER_ADDR", ":9000")
	t.Setenv("JSONSHEET_CONVERT_RECORD_KEY", "items")
	t.Setenv("JSONSHEET_IMPORT_MAX_FILE_SIZE_MB", "5")
	t.Setenv("JSONSHEET_EXPORT_AUTOFILTER", "true")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "items", cfg.Convert.RecordKey)
	assert.True(t, cfg.Export.AutoFilter)

	opts := cfg.SessionOptions()
	assert.Equal(t, int64(5<<20), opts.Import.MaxBytes)
	assert.Equal(t, "items", opts.Convert.RecordKey)
	assert.True(t, opts.Export.AutoFilter)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "3000")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Addr)
}

func TestLoad_FileAndFlags(t *testing.T) {
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "jsonsheet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
convert:
  record_key: rows
  default_sheet_name: Data
import:
  chunk_size: 1024
`), 0644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("sheet-name", "", "")
	flags.String("record-key", "", "")
	require.NoError(t, flags.Parse([]string{"--sheet-name", "Flagged"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "rows", cfg.Convert.RecordKey, "unset flag does not override the file")
	assert.Equal(t, "Flagged", cfg.Convert.DefaultSheetName)
	assert.Equal(t, 1024, cfg.Import.ChunkSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{MaxUploadMB: 1},
		Import: ImportConfig{ChunkSize: 0},
	}
	assert.Error(t, cfg.Validate())

	cfg.Import.ChunkSize = 1
	assert.NoError(t, cfg.Validate())

	cfg.Import.MaxFileSizeMB = -1
	assert.Error(t, cfg.Validate())
}
