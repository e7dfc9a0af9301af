package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Arrange
	t.Setenv("DATA_FILE", "/var/lib/kvstore/data.db")
	t.Setenv("INITIAL_CAPACITY", "64")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "")
	t.Setenv("HTTP_ENABLED", "true")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("ZMQ_ENABLED", "1")
	t.Setenv("ZMQ_API_PORT", "6000")
	t.Setenv("REMOTE_URL", "http://kvstore.local:3000")

	// Act
	cfg := LoadConfig()

	// Assert
	assert.Equal(t, "/var/lib/kvstore/data.db", cfg.DataFile)
	assert.Equal(t, 64, cfg.InitialCapacity)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "", cfg.LogFile)
	assert.True(t, cfg.HttpEnabled)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.ZmqEnabled)
	assert.Equal(t, 6000, cfg.ZmqApiPort)
	assert.Equal(t, "http://kvstore.local:3000", cfg.RemoteUrl)
}

func TestLoadConfig_Defaults(t *testing.T) {
	for _, name := range []string{"DATA_FILE", "INITIAL_CAPACITY", "LOG_LEVEL", "HTTP_ENABLED",
		"HTTP_PORT", "ZMQ_ENABLED", "ZMQ_API_PORT", "REMOTE_URL"} {
		t.Setenv(name, "")
	}
	t.Setenv("INITIAL_CAPACITY", "not-a-number")
	t.Setenv("HTTP_PORT", "-1")

	cfg := LoadConfig()

	assert.Equal(t, defaultDataFile, cfg.DataFile)
	assert.Equal(t, defaultInitialCapacity, cfg.InitialCapacity)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.HttpEnabled)
	assert.Equal(t, defaultServerPort, cfg.ServerPort)
	assert.False(t, cfg.ZmqEnabled)
	assert.Equal(t, defaultZmqApiPort, cfg.ZmqApiPort)
	assert.Empty(t, cfg.RemoteUrl)
}
