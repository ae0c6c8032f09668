package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
)

type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

type FetchFunc func(ctx context.Context) (model.Sheet, error)

// Outcome is a successful fetch from either the primary or the fallback
// source. PrimaryErr holds the failure that caused the fallback.
type Outcome struct {
	Sheet      model.Sheet
	Source     Source
	PrimaryErr error
}

func (o Outcome) UsedFallback() bool {
	return o.Source == SourceFallback
}

// FetchWithFallback runs primary and, on any failure, fallback. Only a
// fallback failure is returned as an error.
func FetchWithFallback(ctx context.Context, logger *zap.Logger, primary, fallback FetchFunc) (Outcome, error) {
	sheet, err := primary(ctx)
	if err == nil {
		return Outcome{Sheet: sheet, Source: SourcePrimary}, nil
	}

	logger.Warn("primary data source failed, switching to mock data",
		zap.String("kind", apperr.KindOf(err)),
		zap.Error(err),
	)

	sheet, fbErr := fallback(ctx)
	if fbErr != nil {
		return Outcome{}, fmt.Errorf("fallback source: %w", fbErr)
	}

	return Outcome{Sheet: sheet, Source: SourceFallback, PrimaryErr: err}, nil
}
