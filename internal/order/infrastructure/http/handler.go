package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	"github.com/dmehra2102/doglivery/internal/order/application"
	"github.com/dmehra2102/doglivery/internal/order/domain"
	"github.com/dmehra2102/doglivery/pkg/httpx"
	"github.com/dmehra2102/doglivery/pkg/tracing"
)

// PollInterval is how often the tracking page is expected to refresh.
const PollInterval = 30

type OrderService interface {
	CreateOrder(ctx context.Context, req application.CreateOrderRequest, headers map[string]string, traceparent string) (application.CreateOrderResult, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	CustomerOrders(ctx context.Context, slug, phone string) ([]domain.Order, error)
	AdminOrders(ctx context.Context, slug, status, search string) ([]domain.Order, error)
	DashboardStats(ctx context.Context, slug string) (domain.DashboardStats, error)
	UpdateStatus(ctx context.Context, slug, id, status string, headers map[string]string, traceparent string) (domain.Order, error)
}

type Handler struct {
	log     *slog.Logger
	service OrderService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service OrderService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

// RegisterRoutes mounts the public order routes. checkout wraps the
// order creation endpoint, typically with the idempotency middleware.
func (h *Handler) RegisterRoutes(r chi.Router, checkout ...func(http.Handler) http.Handler) {
	r.With(checkout...).Post("/api/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/stores/{slug}/orders", h.customerOrders)
}

// RegisterAdminRoutes mounts the dashboard routes; the caller is
// responsible for the admin guard.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/stores/{slug}/admin/orders", h.adminOrders)
	r.Get("/stores/{slug}/admin/orders/stats", h.stats)
	r.Patch("/stores/{slug}/admin/orders/{id}/status", h.updateStatus)
}

type orderView struct {
	domain.Order
	StatusLabel string `json:"status_label"`
}

type trackingView struct {
	orderView
	Timeline            []domain.TimelineStep `json:"timeline"`
	PollIntervalSeconds int                   `json:"poll_interval_seconds"`
}

func views(orders []domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderView{Order: o, StatusLabel: o.Status.Label()})
	}
	return out
}

func eventHeaders(r *http.Request) map[string]string {
	headers := map[string]string{"source": "storefront"}
	if id := middleware.GetReqID(r.Context()); id != "" {
		headers["request_id"] = id
	}
	return headers
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req application.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.CreateOrder(ctx, req, eventHeaders(r), tracing.Traceparent(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order failed")
		h.fail(w, err)
		return
	}
	span.SetAttributes(attribute.String("order.id", res.OrderID), attribute.String("order.number", res.OrderNumber))

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"orderId":     res.OrderID,
		"orderNumber": res.OrderNumber,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := h.tracer.Start(r.Context(), "GetOrder", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	o, err := h.service.GetOrder(ctx, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, trackingView{
		orderView:           orderView{Order: o, StatusLabel: o.Status.Label()},
		Timeline:            domain.Timeline(o.Status),
		PollIntervalSeconds: PollInterval,
	})
}

func (h *Handler) customerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CustomerOrders")
	defer span.End()

	orders, err := h.service.CustomerOrders(ctx, chi.URLParam(r, "slug"), r.URL.Query().Get("phone"))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": views(orders)})
}

func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AdminOrders")
	defer span.End()

	q := r.URL.Query()
	orders, err := h.service.AdminOrders(ctx, chi.URLParam(r, "slug"), q.Get("status"), q.Get("q"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": views(orders)})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DashboardStats")
	defer span.End()

	stats, err := h.service.DashboardStats(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	var req updateStatusReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "slug"), id, req.Status, eventHeaders(r), tracing.Traceparent(ctx))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orderView{Order: o, StatusLabel: o.Status.Label()})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, domain.ErrInsufficientCash):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrStockUnavailable), errors.Is(err, domain.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, catalog.ErrStoreNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error("order request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to process order")
	}
}
