package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"orderdesk/internal/channel"
	"orderdesk/internal/model"
	"orderdesk/internal/store"
)

type SheetFetcher interface {
	FetchRange(ctx context.Context, spreadsheetID, rng string) (model.Sheet, error)
}

type MockSource interface {
	Completed(ctx context.Context) (model.Sheet, error)
	Abandoned(ctx context.Context) (model.Sheet, error)
}

// OrderService lists orders for a channel, falling back to mock data when the
// spreadsheet cannot be read.
type OrderService struct {
	resolver *channel.Resolver
	sheets   SheetFetcher
	mock     MockSource
	store    store.Store
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

type OrderServiceOption func(*OrderService)

func WithLocation(loc *time.Location) OrderServiceOption {
	return func(s *OrderService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewOrderService(resolver *channel.Resolver, sheets SheetFetcher, mock MockSource, st store.Store, logger *zap.Logger, opts ...OrderServiceOption) *OrderService {
	s := &OrderService{
		resolver: resolver,
		sheets:   sheets,
		mock:     mock,
		store:    st,
		logger:   logger,
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) Completed(ctx context.Context, channelKey string) (model.CompletedOrders, error) {
	res, err := s.resolver.Resolve(channelKey)
	if err != nil {
		return model.CompletedOrders{}, fmt.Errorf("resolve channel: %w", err)
	}

	outcome, err := FetchWithFallback(ctx, s.logger,
		func(ctx context.Context) (model.Sheet, error) {
			return s.sheets.FetchRange(ctx, res.SpreadsheetID, res.CompletedRange)
		},
		s.mock.Completed,
	)
	if err != nil {
		return model.CompletedOrders{}, err
	}

	dispatched, err := s.store.All(ctx)
	if err != nil {
		return model.CompletedOrders{}, fmt.Errorf("load dispatch statuses: %w", err)
	}

	orders := make([]model.CompletedOrder, 0, len(outcome.Sheet.Rows))
	for _, row := range outcome.Sheet.Rows {
		orders = append(orders, TransformCompleted(row, dispatched, s.loc))
	}

	ids := make([]string, 0, len(dispatched))
	for id := range dispatched {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return model.CompletedOrders{
		Data: orders,
		Meta: model.CompletedMeta{
			Meta:          s.meta(res, outcome),
			DispatchedIDs: ids,
		},
	}, nil
}

func (s *OrderService) Abandoned(ctx context.Context, channelKey string) (model.AbandonedOrders, error) {
	res, err := s.resolver.Resolve(channelKey)
	if err != nil {
		return model.AbandonedOrders{}, fmt.Errorf("resolve channel: %w", err)
	}

	outcome, err := FetchWithFallback(ctx, s.logger,
		func(ctx context.Context) (model.Sheet, error) {
			return s.sheets.FetchRange(ctx, res.SpreadsheetID, res.AbandonedRange)
		},
		s.mock.Abandoned,
	)
	if err != nil {
		return model.AbandonedOrders{}, err
	}

	orders := make([]model.AbandonedOrder, 0, len(outcome.Sheet.Rows))
	for _, row := range outcome.Sheet.Rows {
		orders = append(orders, TransformAbandoned(row, s.loc))
	}

	return model.AbandonedOrders{
		Data: orders,
		Meta: s.meta(res, outcome),
	}, nil
}

func (s *OrderService) meta(res channel.Resolution, outcome Outcome) model.Meta {
	return model.Meta{
		UsesMockData:        outcome.UsedFallback(),
		SourceColumnPresent: outcome.Sheet.SourceColumnPresent,
		FetchedAt:           s.now().UTC().Truncate(time.Second),
		Channel:             res.ResolvedKey,
		RequestedChannel:    res.RequestedKey,
		ChannelFallback:     res.Fallback(),
	}
}
