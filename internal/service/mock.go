package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
)

// MockRepository serves the static completed and abandoned datasets used
// when the spreadsheet is unavailable.
type MockRepository struct {
	completedPath string
	abandonedPath string
	logger        *zap.Logger
}

func NewMockRepository(completedPath, abandonedPath string, logger *zap.Logger) *MockRepository {
	return &MockRepository{
		completedPath: completedPath,
		abandonedPath: abandonedPath,
		logger:        logger,
	}
}

func (r *MockRepository) Completed(_ context.Context) (model.Sheet, error) {
	return r.read(r.completedPath)
}

func (r *MockRepository) Abandoned(_ context.Context) (model.Sheet, error) {
	return r.read(r.abandonedPath)
}

// read returns an empty sheet for a missing or malformed file and fails only
// when the file exists but cannot be read.
func (r *MockRepository) read(path string) (model.Sheet, error) {
	empty := model.Sheet{Rows: []model.Row{}, Headers: []string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("mock data file missing", zap.String("path", path))
			return empty, nil
		}
		return model.Sheet{}, &apperr.ConfigurationError{Message: fmt.Sprintf("unable to read mock data file %s", path), Err: err}
	}

	rows, headers, err := decodeRecords(data)
	if err != nil {
		r.logger.Warn("mock data file is not valid JSON", zap.String("path", path), zap.Error(err))
		return empty, nil
	}

	return model.Sheet{
		Rows:                rows,
		Headers:             headers,
		SourceColumnPresent: model.HasSourceColumn(headers),
	}, nil
}

// decodeRecords reads a JSON array of objects. Headers are the union of
// object keys in first-seen order.
func decodeRecords(data []byte) ([]model.Row, []string, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, err
	}

	rows := make([]model.Row, 0, len(raws))
	headers := []string{}
	seen := make(map[string]struct{})

	for _, raw := range raws {
		row := model.Row{}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&row); err != nil || row == nil {
			rows = append(rows, model.Row{})
			continue
		}
		rows = append(rows, row)

		keys, err := objectKeys(raw)
		if err != nil {
			return nil, nil, err
		}
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			headers = append(headers, k)
		}
	}

	return rows, headers, nil
}

func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
