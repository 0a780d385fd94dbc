package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesConstantsTable(t *testing.T) {
	d := Default()
	assert.Equal(t, 16, d.MailboxCapacity)
	assert.Equal(t, 128, d.IngressCapacity)
	assert.Equal(t, 32, d.MaxTopics)
	assert.Equal(t, 32, d.MaxActiveObjects)
	assert.Equal(t, 200*time.Millisecond, time.Duration(d.HeartbeatThreshold))
	require.Len(t, d.TimerPeriods, 3)
	assert.Equal(t, 10*time.Millisecond, time.Duration(d.TimerPeriods[0]))
	assert.Equal(t, 100*time.Millisecond, time.Duration(d.TimerPeriods[1]))
	assert.Equal(t, 200*time.Millisecond, time.Duration(d.TimerPeriods[2]))
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rtef.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mailbox_capacity: 64\nheartbeat_threshold: 500ms\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.MailboxCapacity)
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.HeartbeatThreshold))
	// Unspecified fields keep Default()'s values.
	assert.Equal(t, 128, cfg.IngressCapacity)
	assert.Equal(t, 32, cfg.MaxTopics)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("heartbeat_threshold: not-a-duration\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
