package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, orderID string) (model.DispatchResult, error)
}

// DispatchOrderHandler serves POST /api/orders/{orderId}/dispatch.
func DispatchOrderHandler(dispatcher Dispatcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")

		result, err := dispatcher.Dispatch(r.Context(), orderID)
		if err != nil {
			if apperr.IsClientError(err) {
				logger.Warn("dispatch rejected",
					zap.String("order_id", orderID),
					zap.String("kind", apperr.KindOf(err)),
					zap.Error(err),
				)
				writeMessage(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			logger.Error("dispatch failed", zap.String("order_id", orderID), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "unable to dispatch order")
			return
		}

		writeJSON(w, http.StatusOK, dataResponse{Data: result})
	}
}
