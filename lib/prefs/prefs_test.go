package prefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	p := s.Get()
	assert.True(t, p.SyncEnabled)
	assert.False(t, p.SyncOnlyWifi)
	assert.False(t, p.SyncOnlyCharging)
}

func TestOpenReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"sync_enabled":false,"sync_only_wifi":true,"sync_only_charging":true}`), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	p := s.Get()
	assert.False(t, p.SyncEnabled)
	assert.True(t, p.SyncOnlyWifi)
	assert.True(t, p.SyncOnlyCharging)
}

func TestMalformedFileKeepsLastGoodState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sync_only_wifi":true}`), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.True(t, s.Get().SyncOnlyWifi)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	// The reload fails and must not clobber the loaded state.
	time.Sleep(300 * time.Millisecond)
	assert.True(t, s.Get().SyncOnlyWifi)
}

func TestReloadOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sync_enabled":true}`), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.True(t, s.Get().SyncEnabled)

	require.NoError(t, os.WriteFile(path, []byte(`{"sync_enabled":false}`), 0o644))

	assert.Eventually(t, func() bool {
		return !s.Get().SyncEnabled
	}, 3*time.Second, 50*time.Millisecond, "a write to the file is picked up live")
}

func TestSetOverridesInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	s.Set(Prefs{SyncOnlyCharging: true})
	assert.True(t, s.Get().SyncOnlyCharging)
	assert.False(t, s.Get().SyncEnabled)
}
