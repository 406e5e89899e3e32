package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/habitquest/internal/logger"
)

// JSONStore persists a Document to a single JSON file, rewriting it after every change.
//
// Before each access the file is checked for changes made by another process
// (the dashboard runs alongside CLI commands) and reloaded when its modification
// time or size differs from what this store last read or wrote.
type JSONStore struct {
	*MemoryStore
	path  string
	stamp fileStamp
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(fi os.FileInfo) fileStamp {
	return fileStamp{modTime: fi.ModTime(), size: fi.Size()}
}

func (f fileStamp) same(o fileStamp) bool {
	return f.size == o.size && f.modTime.Equal(o.modTime)
}

func NewJSONStore(path string) *JSONStore {
	s := &JSONStore{MemoryStore: NewMemoryStore(), path: path}
	s.persist = s.save
	s.refresh = s.reloadIfChanged
	return s
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	return s.MemoryStore.Init()
}

func (s *JSONStore) Load() error {
	doc, stamp, err := s.readFile()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = doc
	s.stamp = stamp
	s.mu.Unlock()
	return nil
}

func (s *JSONStore) readFile() (*Document, fileStamp, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fileStamp{}, ErrNotInitialized
		}
		return nil, fileStamp{}, fmt.Errorf("failed to read storage: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fileStamp{}, fmt.Errorf("failed to read storage: %w", err)
	}
	doc := &Document{}
	if err := json.NewDecoder(f).Decode(doc); err != nil {
		return nil, fileStamp{}, fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > documentVersion {
		return nil, fileStamp{}, fmt.Errorf("storage version (%d) is newer than supported version (%d) - please upgrade the application", doc.Version, documentVersion)
	}
	return doc, stampOf(fi), nil
}

// reloadIfChanged runs with the store lock held. It returns nil when the file
// is unchanged since the last read or write.
func (s *JSONStore) reloadIfChanged() (*Document, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to stat storage: %w", err)
	}
	if stampOf(fi).same(s.stamp) {
		return nil, nil
	}
	doc, stamp, err := s.readFile()
	if err != nil {
		return nil, err
	}
	logger.Debug("Reloaded storage changed by another process", "path", s.path)
	s.stamp = stamp
	return doc, nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// save writes doc with the temp-file, fsync, rename pattern so a crash never
// leaves a truncated file behind.
func (s *JSONStore) save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".habitquest-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	if fi, err := os.Stat(s.path); err == nil {
		s.stamp = stampOf(fi)
	} else {
		s.stamp = fileStamp{}
	}
	return nil
}
