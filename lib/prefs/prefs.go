package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"playsync/lib/utils/logging"

	"github.com/fsnotify/fsnotify"
)

var logger = logging.NewLogger("PREFS")

// Prefs holds the user-controlled sync preferences. The sync core consumes
// these; it does not own or edit them.
type Prefs struct {
	SyncEnabled      bool `json:"sync_enabled"`
	SyncOnlyWifi     bool `json:"sync_only_wifi"`
	SyncOnlyCharging bool `json:"sync_only_charging"`
}

func defaults() Prefs {
	return Prefs{SyncEnabled: true}
}

// Store is a file-backed preferences store with live reload.
type Store struct {
	path    string
	mu      sync.RWMutex
	current Prefs
	watcher *fsnotify.Watcher
}

// Open loads the preferences file and watches its directory for changes.
// A missing file yields defaults; a malformed file keeps the last good state.
func Open(path string) (*Store, error) {
	s := &Store{path: path, current: defaults()}
	if err := s.reload(); err != nil {
		logger.Warn("PREFS_LOAD_FAILED", err, map[string]any{
			logging.PATH: path,
		})
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					time.Sleep(100 * time.Millisecond) // Small delay to ensure file is fully written
					if err := s.reload(); err != nil {
						logger.Warn("PREFS_RELOAD_FAILED", err, map[string]any{
							logging.PATH: path,
						})
					} else {
						logger.Info("PREFS_RELOADED", map[string]any{
							logging.PATH: path,
						})
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("PREFS_WATCHER_ERROR", err, nil)
			}
		}
	}()

	// Watch the directory containing the prefs file; editors replace files
	// rather than writing in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.current = defaults()
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return err
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return nil
}

// Get returns a snapshot of the current preferences.
func (s *Store) Get() Prefs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the in-memory preferences. Used by tests and callers that
// manage preferences themselves.
func (s *Store) Set(p Prefs) {
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
}

// Close stops watching the preferences file.
func (s *Store) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
