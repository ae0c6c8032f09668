package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/model"
)

// PostgresStore keeps one row per order, so concurrent dispatches of
// different orders never overwrite each other.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) StatusFor(ctx context.Context, orderID string) (*model.DispatchRecord, error) {
	var rec model.DispatchRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT status, dispatched_at FROM order_dispatches WHERE order_id = $1`,
		orderID,
	).Scan(&rec.Status, &rec.DispatchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dispatch status: %w", err)
	}
	rec.DispatchedAt = rec.DispatchedAt.UTC()
	return &rec, nil
}

func (s *PostgresStore) MarkDispatched(ctx context.Context, orderID string) (model.DispatchRecord, error) {
	rec := newRecord(s.now)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_dispatches (order_id, status, dispatched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO UPDATE
		SET status = EXCLUDED.status, dispatched_at = EXCLUDED.dispatched_at
	`, orderID, rec.Status, rec.DispatchedAt)
	if err != nil {
		return model.DispatchRecord{}, fmt.Errorf("upsert dispatch status: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) All(ctx context.Context) (map[string]model.DispatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT order_id, status, dispatched_at FROM order_dispatches`)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	records := make(map[string]model.DispatchRecord)
	for rows.Next() {
		var (
			orderID string
			rec     model.DispatchRecord
		)
		if err := rows.Scan(&orderID, &rec.Status, &rec.DispatchedAt); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		rec.DispatchedAt = rec.DispatchedAt.UTC()
		records[orderID] = rec
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return records, nil
}

func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close DB: %w", err)
	}
	return nil
}
