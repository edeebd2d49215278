package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	order "github.com/dmehra2102/doglivery/internal/order/domain"
	"github.com/dmehra2102/doglivery/internal/payment/domain"
	"github.com/dmehra2102/doglivery/pkg/httpx"
)

type PixService interface {
	PixCharge(ctx context.Context, orderID string) (domain.Charge, error)
}

type Handler struct {
	log     *slog.Logger
	service PixService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service PixService) *Handler {
	return &Handler{log: log, service: service, tracer: otel.Tracer("payment-http")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/orders/{id}/pix", h.pixCharge)
}

func (h *Handler) pixCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := h.tracer.Start(r.Context(), "PixCharge", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	charge, err := h.service.PixCharge(ctx, id)
	switch {
	case err == nil:
		w.Header().Set("Cache-Control", "no-store")
		httpx.WriteJSON(w, http.StatusOK, charge)
	case errors.Is(err, order.ErrOrderNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotPixOrder), errors.Is(err, domain.ErrPixUnavailable),
		errors.Is(err, domain.ErrOrderClosed):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("pix charge failed", "order_id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
