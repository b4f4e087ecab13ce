package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "strictd.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "/invalid-url", cfg.StrictURI.ErrorPath)
}

func TestLoadFile(t *testing.T) {
	p := writeFile(t, `
addr: 127.0.0.1:9000
log_level: debug
log_format: text
strict_uri:
  prefix: /shop
  max_length: "4096"
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "/shop", cfg.StrictURI.Prefix)
	assert.Equal(t, 4096, cfg.StrictURI.MaxLength)
	assert.Equal(t, "/invalid-url", cfg.StrictURI.ErrorPath)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	p := writeFile(t, "addr: \":9000\"\nstrict_uri:\n  prefix: /shop\n")
	t.Setenv("STRICTD_ADDR", ":7000")
	t.Setenv("STRICTD_MAX_LENGTH", "128")
	t.Setenv("STRICTD_ERROR_PATH", "/bad-link")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "/shop", cfg.StrictURI.Prefix)
	assert.Equal(t, 128, cfg.StrictURI.MaxLength)
	assert.Equal(t, "/bad-link", cfg.StrictURI.ErrorPath)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, body, contains string
	}{
		{"bad yaml", "addr: [", "parse config"},
		{"unknown key", "adr: \":80\"\n", "decode config"},
		{"bad level", "log_level: loud\n", "invalid config"},
		{"bad error path", "strict_uri:\n  error_path: oops\n", "invalid config"},
		{"negative max length", "strict_uri:\n  max_length: -1\n", "invalid config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogLevel = "warn"
	l := cfg.NewLogger(&buf)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	cfg.LogFormat = "text"
	cfg.NewLogger(&buf).Warn("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
