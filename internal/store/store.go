// Package store persists which orders have been dispatched.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"orderdesk/internal/database"
	"orderdesk/internal/model"
)

const DefaultFileName = "dispatches.json"

type Store interface {
	StatusFor(ctx context.Context, orderID string) (*model.DispatchRecord, error)
	MarkDispatched(ctx context.Context, orderID string) (model.DispatchRecord, error)
	All(ctx context.Context) (map[string]model.DispatchRecord, error)
	Close() error
}

// Open picks a backend from the DSN scheme: a bare path or file:// is a JSON
// document, memory:// keeps state in process, postgres:// uses a table.
func Open(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return NewFileStore(DefaultFileName), nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse store dsn: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "":
		return NewFileStore(dsn), nil
	case "file":
		path := parsed.Path
		if parsed.Host != "" {
			path = parsed.Host + path
		}
		if path == "" {
			path = parsed.Opaque
		}
		if path == "" {
			return nil, fmt.Errorf("file store dsn has no path: %s", dsn)
		}
		return NewFileStore(path), nil
	case "memory", "mem":
		return NewMemoryStore(), nil
	case "postgres", "postgresql":
		db, err := database.NewDB(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := database.InitSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported store scheme: %s", parsed.Scheme)
	}
}

func newRecord(now func() time.Time) model.DispatchRecord {
	return model.DispatchRecord{
		Status:       model.StatusDispatched,
		DispatchedAt: now().UTC().Truncate(time.Second),
	}
}
