package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	for _, key := range []string{"WEB_URL", "SERVER_ADDR", "EXPORT_TTL_HOURS", "ASSET_TIMEOUT_SEC", "AWS_S3_ENDPOINT_URL", "STORAGE_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Nil(t, cfg.WebURL)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, ":2112", cfg.MetricsAddr)
	assert.Equal(t, 24*time.Hour, cfg.ExportTTL())
	assert.Equal(t, 10*time.Second, cfg.AssetTimeout())
	assert.Equal(t, 10<<20, cfg.AssetMaxBytes)
	assert.Equal(t, 1600, cfg.AssetMaxWidth)
	assert.False(t, cfg.StorageEnabled())
}

func TestParseEnv(t *testing.T) {
	t.Setenv("WEB_URL", "https://docs.example.com/base/")
	t.Setenv("EXPORT_TTL_HOURS", "6")
	t.Setenv("ASSET_TIMEOUT_SEC", "1000")
	t.Setenv("MCP_ENABLE", "true")
	t.Setenv("AWS_S3_ENDPOINT_URL", "minio:9000")
	t.Setenv("AWS_S3_BUCKET_NAME", "exports")
	t.Setenv("CLASS_PREFIX", "doc-")

	cfg, err := Parse()
	require.NoError(t, err)

	require.NotNil(t, cfg.WebURL)
	assert.Equal(t, "docs.example.com", cfg.WebURL.Host)
	assert.Equal(t, 6*time.Hour, cfg.ExportTTL())
	assert.Equal(t, 10, cfg.AssetTimeoutSec)
	assert.True(t, cfg.MCPEnable)
	assert.True(t, cfg.StorageEnabled())
	assert.Equal(t, "doc-", cfg.ClassPrefix)
}

func TestParseBadURL(t *testing.T) {
	t.Setenv("WEB_URL", "://broken")
	_, err := Parse()
	assert.ErrorContains(t, err, "WEB_URL")
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "s****t", maskValue("AWSSecretKey", "secret"))
	assert.Equal(t, "**", maskValue("AWSSecretKey", "ab"))
	assert.Equal(t, "minio", maskValue("AWSAccessKey", "minio"))
}

func TestStorageDir(t *testing.T) {
	t.Setenv("AWS_S3_ENDPOINT_URL", "")
	t.Setenv("STORAGE_DIR", "/tmp/exports")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.False(t, cfg.S3Enabled())
	assert.True(t, cfg.StorageEnabled())
}

func TestParseInvalidValues(t *testing.T) {
	t.Setenv("EXPORT_TTL_HOURS", "day")
	t.Setenv("MCP_ENABLE", "maybe")
	t.Setenv("SERVER_ADDR", "  :9090 ")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.ExportTTL())
	assert.False(t, cfg.MCPEnable)
	assert.Equal(t, ":9090", cfg.ServerAddr)
}
