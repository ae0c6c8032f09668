package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
)

func sheetOf(ids ...string) model.Sheet {
	rows := make([]model.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.Row{"orderId": id})
	}
	return model.Sheet{Rows: rows, Headers: []string{"orderId"}}
}

func TestFetchWithFallback_Primary(t *testing.T) {
	fallbackCalled := false
	outcome, err := FetchWithFallback(context.Background(), zap.NewNop(),
		func(context.Context) (model.Sheet, error) { return sheetOf("A-1"), nil },
		func(context.Context) (model.Sheet, error) {
			fallbackCalled = true
			return sheetOf("M-1"), nil
		},
	)
	require.NoError(t, err)
	assert.False(t, outcome.UsedFallback())
	assert.Equal(t, SourcePrimary, outcome.Source)
	assert.False(t, fallbackCalled)
	assert.Equal(t, "A-1", outcome.Sheet.Rows[0]["orderId"])
}

func TestFetchWithFallback_AnyPrimaryFailure(t *testing.T) {
	failures := []error{
		&apperr.ConfigurationError{Message: "missing"},
		&apperr.AuthError{Message: "denied"},
		&apperr.UpstreamDataError{Message: "boom"},
		errors.New("unexpected"),
	}
	for _, primaryErr := range failures {
		outcome, err := FetchWithFallback(context.Background(), zap.NewNop(),
			func(context.Context) (model.Sheet, error) { return model.Sheet{}, primaryErr },
			func(context.Context) (model.Sheet, error) { return sheetOf("M-1", "M-2"), nil },
		)
		require.NoError(t, err)
		assert.True(t, outcome.UsedFallback())
		assert.Equal(t, sheetOf("M-1", "M-2"), outcome.Sheet)
		assert.ErrorIs(t, outcome.PrimaryErr, primaryErr)
	}
}

func TestFetchWithFallback_FallbackFailureIsFatal(t *testing.T) {
	fbErr := errors.New("disk gone")
	_, err := FetchWithFallback(context.Background(), zap.NewNop(),
		func(context.Context) (model.Sheet, error) { return model.Sheet{}, &apperr.AuthError{} },
		func(context.Context) (model.Sheet, error) { return model.Sheet{}, fbErr },
	)
	assert.ErrorIs(t, err, fbErr)
}
