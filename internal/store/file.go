package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend keeps every record in one JSON object on disk:
//
//	{"events": [...], "bookmarks": [...]}
//
// Writes go to a temp file in the same directory and are renamed into place.
type FileBackend struct {
	path string

	mu        sync.Mutex
	lastWrite [sha256.Size]byte
	closed    bool
}

// OpenFile creates a file backend at path, creating its directory if needed.
// The file itself is created on first write.
func OpenFile(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// Path returns the storage file path.
func (f *FileBackend) Path() string {
	return f.path
}

// Get implements Backend.
func (f *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}

	records, err := f.readRecords()
	if err != nil {
		return nil, err
	}
	v, ok := records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

// Set implements Backend. A corrupt file is replaced by a fresh object holding only key.
func (f *FileBackend) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	records, err := f.readRecords()
	if err != nil && !errors.Is(err, ErrNotFound) {
		records = nil
	}
	if records == nil {
		records = make(map[string]json.RawMessage)
	}
	if !json.Valid(value) {
		return fmt.Errorf("value for %s is not valid JSON", key)
	}
	records[key] = json.RawMessage(value)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	if err := writeFileAtomic(f.path, data); err != nil {
		return err
	}
	f.lastWrite = sha256.Sum256(data)
	return nil
}

// WroteContent reports whether data is exactly what this backend last wrote.
// The file watcher uses it to ignore the store's own writes.
func (f *FileBackend) WroteContent(data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastWrite == sha256.Sum256(data)
}

// Close implements Backend.
func (f *FileBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// readRecords returns ErrNotFound when the file does not exist.
func (f *FileBackend) readRecords() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode storage file: %w", err)
	}
	return records, nil
}

// writeFileAtomic writes data to a temp file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
