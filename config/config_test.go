package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openports/lookup"
	"openports/ports"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "Program", c.Sort)
	assert.Equal(t, lookup.DefaultDNSTimeout, c.DNSTimeout)
	assert.Equal(t, lookup.DefaultServicesFile, c.ServicesFile)
	assert.Nil(t, c.Continuous)
	require.NoError(t, c.Validate())

	mc := c.Monitor()
	assert.False(t, mc.Continuous)
	assert.Equal(t, ports.SortProgram, mc.Sort)
	assert.Equal(t, ports.FilterPermissive, mc.FilterPolicy)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
sort: pid
listening: true
dns: true
regex: "^ssh"
continuous: 5
strict_filter: true
dns_timeout: 500ms
services_file: /opt/services
`)

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, ports.SortPID, c.SortKey())
	assert.True(t, c.DNS)
	assert.Equal(t, 500*time.Millisecond, c.DNSTimeout)
	assert.Equal(t, "/opt/services", c.ServicesFile)

	mc := c.Monitor()
	assert.True(t, mc.Continuous)
	assert.Equal(t, 5*time.Second, mc.Interval)
	assert.Equal(t, "^ssh", mc.Classify.Filter)
	assert.True(t, mc.Classify.ListeningOnly)
	assert.Equal(t, ports.FilterStrict, mc.FilterPolicy)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "sort: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	negative := -1

	tests := []struct {
		name  string
		c     Config
		field string
	}{
		{"bad sort", Config{Sort: "size"}, "sort"},
		{"negative interval", Config{Sort: "Port", Continuous: &negative}, "continuous"},
		{"negative timeout", Config{Sort: "Port", DNSTimeout: -time.Second}, "dns_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestLoadDefaultMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	c, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}
