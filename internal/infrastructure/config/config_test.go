package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "yellowcube", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "T", cfg.Yellowcube.OperatingMode)
	assert.Equal(t, "CMT", cfg.Yellowcube.LengthISO)
	assert.Equal(t, "CMQ", cfg.Yellowcube.VolumeISO)
	assert.Equal(t, 60*time.Second, cfg.Yellowcube.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Redis.GuardTTL)
	assert.False(t, cfg.Yellowcube.ResetInventory)
	assert.Equal(t, "I", cfg.Yellowcube.ArticleFlag)
	assert.Equal(t, "engine/Shopware/Plugins/Local/Backend/AsignYellowcube", cfg.Yellowcube.SnippetNamespace)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("YC_YELLOWCUBE_SENDER", "YCShop")
	t.Setenv("YC_YELLOWCUBE_RESET_INVENTORY", "true")
	t.Setenv("YC_YELLOWCUBE_TIMEOUT", "15s")
	t.Setenv("YC_DATABASE_HOST", "db.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "YCShop", cfg.Yellowcube.Sender)
	assert.True(t, cfg.Yellowcube.ResetInventory)
	assert.Equal(t, 15*time.Second, cfg.Yellowcube.Timeout)
	assert.Equal(t, "db.local", cfg.Database.Host)
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yellowcube.toml")
	content := `
[yellowcube]
endpoint = "https://example.test/ws"
sender = "YCTest"
depositor_no = "0000040000"
plant_id = "Y005"
volume_iso = "MTQ"
order_documents_flag = "no"

[storage]
bucket = "invoices"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/ws", cfg.Yellowcube.Endpoint)
	assert.Equal(t, "Y005", cfg.Yellowcube.PlantID)
	assert.Equal(t, "MTQ", cfg.Yellowcube.VolumeISO)
	assert.Equal(t, "no", cfg.Yellowcube.OrderDocumentsFlag)
	assert.Equal(t, "invoices", cfg.Storage.Bucket)
	assert.Equal(t, "documents/", cfg.Storage.InvoicePrefix)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 50 }, true},
		{"bad sampling ratio", func(c *Config) { c.Telemetry.SamplingRatio = 2 }, true},
		{"unknown operating mode", func(c *Config) { c.Yellowcube.OperatingMode = "X" }, true},
		{"unknown article flag", func(c *Config) { c.Yellowcube.ArticleFlag = "Z" }, true},
		{"lower case article flag", func(c *Config) { c.Yellowcube.ArticleFlag = "u" }, false},
		{"production needs endpoint", func(c *Config) { c.App.Env = "production" }, true},
		{"production test mode", func(c *Config) {
			c.App.Env = "production"
			c.Yellowcube.Endpoint = "https://example.test"
			c.Yellowcube.Sender = "YC"
			c.Yellowcube.DepositorNo = "1"
			c.Database.SSLMode = "require"
		}, true},
		{"production complete", func(c *Config) {
			c.App.Env = "production"
			c.Yellowcube.Endpoint = "https://example.test"
			c.Yellowcube.Sender = "YC"
			c.Yellowcube.DepositorNo = "1"
			c.Yellowcube.OperatingMode = "P"
			c.Database.SSLMode = "require"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "shop", Password: "p@ss word", DBName: "shop", SSLMode: "disable"}

	assert.Equal(t, "postgres://shop:p%40ss%20word@db:5432/shop?sslmode=disable", d.DSN())
}
