package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderdesk/internal/apperr"
	"orderdesk/internal/channel"
	"orderdesk/internal/model"
	"orderdesk/internal/store"
)

type fakeSheets struct {
	sheet model.Sheet
	err   error
	calls []string
}

func (f *fakeSheets) FetchRange(_ context.Context, spreadsheetID, rng string) (model.Sheet, error) {
	f.calls = append(f.calls, spreadsheetID+"|"+rng)
	return f.sheet, f.err
}

type fakeMock struct {
	completed model.Sheet
	abandoned model.Sheet
}

func (f *fakeMock) Completed(context.Context) (model.Sheet, error) { return f.completed, nil }
func (f *fakeMock) Abandoned(context.Context) (model.Sheet, error) { return f.abandoned, nil }

func rowsSheet(rows ...model.Row) model.Sheet {
	var headers []string
	seen := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	return model.Sheet{Rows: rows, Headers: headers, SourceColumnPresent: model.HasSourceColumn(headers)}
}

func testResolver() *channel.Resolver {
	return channel.NewResolver("telegram", map[string]model.Channel{
		"whatsapp": {SpreadsheetID: "wa-sheet", CompletedRange: "WA Completed!A1:Z"},
	}, model.Channel{
		SpreadsheetID:  "tg-sheet",
		CompletedRange: "Completed Orders!A1:Z9999",
		AbandonedRange: "Abandoned!A1:Z9999",
	})
}

func newTestOrderService(sheets SheetFetcher, mock MockSource, st store.Store) *OrderService {
	svc := NewOrderService(testResolver(), sheets, mock, st, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 10, 19, 12, 7, 26, 900, time.FixedZone("X", 3600)) }
	return svc
}

func TestOrderService_CompletedMergesDispatchStatus(t *testing.T) {
	sheets := &fakeSheets{sheet: rowsSheet(
		model.Row{"orderId": "A-100", "customerName": "Ann", "totalPrice": "10,50"},
		model.Row{"orderId": "B-200", "customerName": "Bob"},
	)}
	st := store.NewMemoryStore()
	rec, err := st.MarkDispatched(context.Background(), "A-100")
	require.NoError(t, err)

	svc := newTestOrderService(sheets, &fakeMock{}, st)
	got, err := svc.Completed(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, got.Data, 2)
	assert.Equal(t, model.StatusDispatched, got.Data[0].Status)
	require.NotNil(t, got.Data[0].DispatchedAt)
	assert.Equal(t, rec.DispatchedAt, *got.Data[0].DispatchedAt)
	assert.Equal(t, model.StatusPending, got.Data[1].Status)
	assert.Nil(t, got.Data[1].DispatchedAt)

	assert.Equal(t, []string{"A-100"}, got.Meta.DispatchedIDs)
	assert.False(t, got.Meta.UsesMockData)
	assert.Equal(t, "telegram", got.Meta.Channel)
	assert.Equal(t, "telegram", got.Meta.RequestedChannel)
	assert.False(t, got.Meta.ChannelFallback)
	assert.Equal(t, time.Date(2025, 10, 19, 11, 7, 26, 0, time.UTC), got.Meta.FetchedAt)
	assert.Equal(t, []string{"tg-sheet|Completed Orders!A1:Z9999"}, sheets.calls)
}

func TestOrderService_CompletedFallsBackToMock(t *testing.T) {
	sheets := &fakeSheets{err: &apperr.UpstreamDataError{Message: "failed to fetch data from Google Sheets"}}
	mock := &fakeMock{completed: rowsSheet(
		model.Row{"orderId": "202510151432-001", "source": "telegram"},
	)}

	svc := newTestOrderService(sheets, mock, store.NewMemoryStore())
	got, err := svc.Completed(context.Background(), "telegram")
	require.NoError(t, err)

	assert.True(t, got.Meta.UsesMockData)
	assert.True(t, got.Meta.SourceColumnPresent)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "202510151432-001", got.Data[0].OrderID)
	assert.NotNil(t, got.Meta.DispatchedIDs)
	assert.Empty(t, got.Meta.DispatchedIDs)
}

func TestOrderService_ChannelSelection(t *testing.T) {
	sheets := &fakeSheets{sheet: rowsSheet()}
	svc := newTestOrderService(sheets, &fakeMock{}, store.NewMemoryStore())

	got, err := svc.Abandoned(context.Background(), "WhatsApp")
	require.NoError(t, err)
	assert.Equal(t, "whatsapp", got.Meta.Channel)
	assert.False(t, got.Meta.ChannelFallback)

	got, err = svc.Abandoned(context.Background(), "voice")
	require.NoError(t, err)
	assert.Equal(t, "telegram", got.Meta.Channel)
	assert.Equal(t, "voice", got.Meta.RequestedChannel)
	assert.True(t, got.Meta.ChannelFallback)

	assert.Equal(t, []string{
		"wa-sheet|Abandoned!A1:Z9999",
		"tg-sheet|Abandoned!A1:Z9999",
	}, sheets.calls)
}

func TestOrderService_ResolverFailureIsFatal(t *testing.T) {
	sheets := &fakeSheets{}
	svc := NewOrderService(channel.NewResolver("telegram", nil, model.Channel{}), sheets, &fakeMock{}, store.NewMemoryStore(), zap.NewNop())

	_, err := svc.Completed(context.Background(), "")
	var cfgErr *apperr.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = svc.Abandoned(context.Background(), "")
	assert.True(t, errors.As(err, &cfgErr))
	assert.Empty(t, sheets.calls)
}

func TestOrderService_AbandonedTransforms(t *testing.T) {
	sheets := &fakeSheets{sheet: rowsSheet(
		model.Row{"orderId": "X1", "orderStatus": "cart", "timestamp": "2025-10-15 14:32"},
	)}
	svc := newTestOrderService(sheets, &fakeMock{}, store.NewMemoryStore())

	got, err := svc.Abandoned(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "cart", got.Data[0].OrderStatus)
	require.NotNil(t, got.Data[0].TimestampDisplay)
	assert.Equal(t, "2025-10-15 14:32", *got.Data[0].TimestampDisplay)
	assert.False(t, got.Meta.SourceColumnPresent)
}
