package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/model"
)

func TestFileStore_MissingDocumentIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "dispatches.json"))

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	rec, err := s.StatusFor(context.Background(), "A-100")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFileStore_MalformedDocumentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatches.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(path)
	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = s.MarkDispatched(context.Background(), "A-100")
	require.NoError(t, err)

	all, err = s.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFileStore_MarkDispatchedPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dispatches.json")
	now := time.Date(2025, 10, 19, 12, 7, 26, 500, time.UTC)

	s := NewFileStore(path)
	s.now = func() time.Time { return now }

	rec, err := s.MarkDispatched(context.Background(), "A-100")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDispatched, rec.Status)
	assert.Equal(t, now.Truncate(time.Second), rec.DispatchedAt)

	reopened := NewFileStore(path)
	got, err := reopened.StatusFor(context.Background(), "A-100")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	missing, err := reopened.StatusFor(context.Background(), "A-101")
	require.NoError(t, err)
	assert.Nil(t, missing)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Dispatched", doc["A-100"]["status"])
	assert.Equal(t, "2025-10-19T12:07:26Z", doc["A-100"]["dispatched_at"])
}

func TestFileStore_RewritesWholeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatches.json")
	s := NewFileStore(path)

	for _, id := range []string{"A-100", "A-101", "A-100"} {
		_, err := s.MarkDispatched(context.Background(), id)
		require.NoError(t, err)
	}

	all, err := NewFileStore(path).All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Contains(t, all, "A-100")
	assert.Contains(t, all, "A-101")
}
