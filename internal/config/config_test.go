package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[mainConfig]
appName = "mentor_sync"

[remoteConfig]
baseURL = "http://127.0.0.1:8000"

[rateGuardConfig]
maxAttempts = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mentor_sync", conf.AppName)
	assert.Equal(t, "http://127.0.0.1:8000", conf.RemoteConfig.BaseURL)
	assert.Equal(t, 3, conf.RateGuardConfig.MaxAttempts)
	assert.Equal(t, 15*time.Minute, conf.RateGuardConfig.Window())
	assert.Equal(t, 30*time.Minute, conf.SessionConfig.Timeout())
	assert.Equal(t, DefaultMaxNoteLength, conf.RequestConfig.MaxNoteLength)
	assert.Equal(t, "channel", conf.KafkaConfig.MessageMode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
