package config

import (
	"context"
	"testing"

	"github.com/logingood/check-snmp-state/snmp"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	var cfg FromEnv
	err := envconfig.ProcessWith(context.Background(), &cfg, envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.Equal(t, "/var/tmp", cfg.CacheDir)
	assert.Equal(t, snmp.DefaultTools(), cfg.Tools())
	assert.False(t, cfg.InventoryEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	var cfg FromEnv
	err := envconfig.ProcessWith(context.Background(), &cfg, envconfig.MapLookuper(map[string]string{
		"LOG_LEVEL":    "DEBUG",
		"CACHE_DIR":    "/run/nagios",
		"SNMPBULKWALK": "/usr/local/bin/snmpbulkwalk",
		"DB_USERNAME":  "librenms",
		"DB_PASSWORD":  "secret",
		"DB_HOST":      "db.example.net",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/run/nagios", cfg.CacheDir)
	assert.Equal(t, "/usr/local/bin/snmpbulkwalk", cfg.Tools().BulkWalk)
	assert.Equal(t, "snmpget", cfg.Tools().Get)
	assert.True(t, cfg.InventoryEnabled())
	assert.Equal(t, "librenms:secret@tcp(db.example.net:3306)/librenms", cfg.DSN())
}
