package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
	"orderdesk/internal/store"
)

const (
	maxDispatchAttempts = 3
	dispatchBackoffBase = 500 * time.Millisecond
)

type WebhookPoster interface {
	Post(ctx context.Context, url string, payload any, idempotencyKey string) (WebhookResponse, error)
}

type dispatchPayload struct {
	OrderID string `json:"orderId"`
	ChatID  string `json:"chatId"`
}

type DispatchService struct {
	store      store.Store
	webhook    WebhookPoster
	webhookURL string
	logger     *zap.Logger
	sleep      func(time.Duration)
}

func NewDispatchService(st store.Store, webhook WebhookPoster, webhookURL string, logger *zap.Logger) *DispatchService {
	return &DispatchService{
		store:      st,
		webhook:    webhook,
		webhookURL: strings.TrimSpace(webhookURL),
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Dispatch notifies the automation webhook about orderID and records the
// order as dispatched once the webhook accepts it.
func (s *DispatchService) Dispatch(ctx context.Context, orderID string) (model.DispatchResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return model.DispatchResult{}, &apperr.ValidationError{Message: "order id can not be empty"}
	}

	chatID, err := ChatIDFromOrderID(orderID)
	if err != nil {
		return model.DispatchResult{}, err
	}

	if s.webhookURL == "" {
		return model.DispatchResult{}, &apperr.ConfigurationError{Message: "dispatch webhook URL is not configured"}
	}

	// Re-dispatching is allowed; the automation is expected to dedupe.
	if rec, err := s.store.StatusFor(ctx, orderID); err != nil {
		s.logger.Warn("dispatch status lookup failed", zap.String("order_id", orderID), zap.Error(err))
	} else if rec != nil {
		s.logger.Warn("order already dispatched, sending again",
			zap.String("order_id", orderID),
			zap.Time("dispatched_at", rec.DispatchedAt),
		)
	}

	payload := dispatchPayload{OrderID: orderID, ChatID: chatID}
	idempotencyKey := uuid.NewString()

	var (
		last    WebhookResponse
		lastErr error
	)
	for attempt := 1; attempt <= maxDispatchAttempts; attempt++ {
		resp, err := s.webhook.Post(ctx, s.webhookURL, payload, idempotencyKey)
		success := err == nil && resp.Successful()

		s.logger.Info("dispatch webhook attempt",
			zap.String("order_id", orderID),
			zap.Int("attempt", attempt),
			zap.Int("status", resp.StatusCode),
			zap.Bool("success", success),
			zap.NamedError("transport_error", err),
		)

		if success {
			rec, err := s.store.MarkDispatched(context.WithoutCancel(ctx), orderID)
			if err != nil {
				return model.DispatchResult{}, fmt.Errorf("record dispatch: %w", err)
			}
			return model.DispatchResult{
				OrderID:      orderID,
				Status:       rec.Status,
				DispatchedAt: rec.DispatchedAt,
				Attempts:     attempt,
			}, nil
		}

		last, lastErr = resp, err
		if attempt < maxDispatchAttempts {
			s.sleep(backoffFor(attempt))
		}
	}

	message := last.Message()
	if lastErr != nil {
		message = lastErr.Error()
	}
	return model.DispatchResult{}, &apperr.DeliveryError{
		OrderID:    orderID,
		StatusCode: last.StatusCode,
		Message:    message,
		Attempts:   maxDispatchAttempts,
	}
}

// ChatIDFromOrderID extracts the numeric chat id from "chatId_timestamp".
func ChatIDFromOrderID(orderID string) (string, error) {
	chatID, _, found := strings.Cut(orderID, "_")
	if !found || chatID == "" || !isDigits(chatID) {
		return "", &apperr.ValidationError{
			Message: fmt.Sprintf("invalid order id format: expected chatId_timestamp, got %s", orderID),
		}
	}
	return chatID, nil
}

func backoffFor(attempt int) time.Duration {
	return dispatchBackoffBase * time.Duration(1<<(attempt-1))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
