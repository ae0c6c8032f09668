package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"orderdesk/internal/apperr"
	"orderdesk/internal/model"
)

type OrderLister interface {
	Completed(ctx context.Context, channelKey string) (model.CompletedOrders, error)
	Abandoned(ctx context.Context, channelKey string) (model.AbandonedOrders, error)
}

func CompletedOrdersHandler(orders OrderLister, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := orders.Completed(r.Context(), r.URL.Query().Get("channel"))
		if err != nil {
			logger.Error("list completed orders failed", zap.String("kind", apperr.KindOf(err)), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "unable to load completed orders")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func AbandonedOrdersHandler(orders OrderLister, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := orders.Abandoned(r.Context(), r.URL.Query().Get("channel"))
		if err != nil {
			logger.Error("list abandoned orders failed", zap.String("kind", apperr.KindOf(err)), zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, "unable to load abandoned orders")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
