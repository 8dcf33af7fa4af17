package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "000000000000", cfg.Account)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 9400, cfg.Admin.Port)
	assert.False(t, cfg.Telemetry.Enabled)

	require.Len(t, cfg.Services.Ports, len(ServiceNames))
	assert.Equal(t, 9324, cfg.Services.Ports["sqs"])
	assert.Equal(t, 8000, cfg.Services.Ports["dynamodb"])
	assert.Equal(t, 9000, cfg.Services.Ports["s3"])

	require.NoError(t, Validate(cfg))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, 9324, cfg.Services.Ports["sqs"])
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
region: eu-west-1
account: "123456789012"
shutdown_timeout: 10s
logging:
  level: debug
services:
  disabled: [logs, firehose]
  ports:
    sqs: 9999
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "123456789012", cfg.Account)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 9999, cfg.Services.Ports["sqs"])
	// Unlisted ports fall back to defaults.
	assert.Equal(t, 8000, cfg.Services.Ports["dynamodb"])
	assert.False(t, cfg.Services.Enabled("logs"))
	assert.False(t, cfg.Services.Enabled("firehose"))
	assert.True(t, cfg.Services.Enabled("sqs"))
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := GetDefaultConfig()
	cfg.Region = "ap-southeast-2"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", loaded.Region)
	assert.Equal(t, cfg.ShutdownTimeout, loaded.ShutdownTimeout)
	assert.Equal(t, cfg.Services.Ports, loaded.Services.Ports)
}

func TestValidateRejections(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Account = "123"
	assert.Error(t, Validate(cfg))

	cfg = GetDefaultConfig()
	cfg.Services.Disabled = []string{"memcached"}
	assert.Error(t, Validate(cfg))

	cfg = GetDefaultConfig()
	cfg.Services.Ports["sqs"] = cfg.Services.Ports["s3"]
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assigned to both")

	// A disabled service may share a port without conflict.
	cfg.Services.Disabled = []string{"sqs"}
	assert.NoError(t, Validate(cfg))

	cfg = GetDefaultConfig()
	cfg.Admin.Port = cfg.Services.Ports["kms"]
	assert.Error(t, Validate(cfg))
}

func TestServicesEnabledCaseInsensitive(t *testing.T) {
	s := ServicesConfig{Disabled: []string{"DynamoDB"}}
	assert.False(t, s.Enabled("dynamodb"))
	assert.True(t, s.Enabled("s3"))
}

func TestInitializeRegistry(t *testing.T) {
	cfg := GetDefaultConfig()
	reg, err := InitializeRegistry(cfg)
	require.NoError(t, err)

	services := reg.Services()
	require.Len(t, services, len(ServiceNames))
	for i, svc := range services {
		assert.Equal(t, ServiceNames[i], svc.Name)
		assert.Equal(t, cfg.Services.Ports[svc.Name], svc.Port)
		assert.NotNil(t, svc.Handler)
	}
	assert.Equal(t, "us-east-1", reg.Region())
	assert.Equal(t, "000000000000", reg.Account())
}

func TestInitializeRegistrySkipsDisabled(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Services.Disabled = []string{"sqs", "kinesis"}

	reg, err := InitializeRegistry(cfg)
	require.NoError(t, err)
	assert.Len(t, reg.Services(), len(ServiceNames)-2)

	_, ok := reg.Get("sqs")
	assert.False(t, ok)
	_, ok = reg.Get("sns")
	assert.True(t, ok)
}
