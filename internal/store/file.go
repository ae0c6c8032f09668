package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"orderdesk/internal/model"
)

// FileStore keeps the whole status map in one JSON document and rewrites it
// on every change. The mutex makes it the single writer inside the process;
// other processes writing the same file can still race.
type FileStore struct {
	Path string

	mu  sync.Mutex
	now func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: strings.TrimSpace(path), now: time.Now}
}

func (s *FileStore) StatusFor(_ context.Context, orderID string) (*model.DispatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	rec, ok := doc[orderID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *FileStore) MarkDispatched(_ context.Context, orderID string) (model.DispatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	rec := newRecord(s.now)
	doc[orderID] = rec

	if err := s.write(doc); err != nil {
		return model.DispatchRecord{}, fmt.Errorf("write dispatch store: %w", err)
	}
	return rec, nil
}

func (s *FileStore) All(_ context.Context) (map[string]model.DispatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

func (s *FileStore) Close() error {
	return nil
}

// read treats a missing or malformed document as empty.
func (s *FileStore) read() map[string]model.DispatchRecord {
	doc := make(map[string]model.DispatchRecord)
	data, err := os.ReadFile(s.Path)
	if err != nil || len(data) == 0 {
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return make(map[string]model.DispatchRecord)
	}
	if doc == nil {
		doc = make(map[string]model.DispatchRecord)
	}
	return doc
}

func (s *FileStore) write(doc map[string]model.DispatchRecord) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}
