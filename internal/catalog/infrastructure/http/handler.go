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

	"github.com/dmehra2102/doglivery/internal/catalog/application"
	"github.com/dmehra2102/doglivery/internal/catalog/domain"
	"github.com/dmehra2102/doglivery/pkg/httpx"
)

type CatalogService interface {
	StoreFront(ctx context.Context, slug string) (application.StoreFront, error)
	ListProducts(ctx context.Context, slug string) ([]domain.Product, error)
	Product(ctx context.Context, slug, productSlug string) (domain.Product, error)
}

type Handler struct {
	log     *slog.Logger
	service CatalogService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service CatalogService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("catalog-http"),
	}
}

type productView struct {
	domain.Product
	DefaultMode        domain.Mode `json:"default_mode"`
	CanOrderByValue    bool        `json:"can_order_by_value"`
	CanOrderByQuantity bool        `json:"can_order_by_quantity"`
}

func view(p domain.Product) productView {
	return productView{
		Product:            p,
		DefaultMode:        p.DefaultMode(),
		CanOrderByValue:    p.CanOrderByValue(),
		CanOrderByQuantity: p.CanOrderByQuantity(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stores/{slug}", h.storeFront)
	r.Get("/stores/{slug}/products", h.listProducts)
	r.Get("/stores/{slug}/products/{productSlug}", h.getProduct)
}

func (h *Handler) storeFront(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ctx, span := h.tracer.Start(r.Context(), "StoreFront", trace.WithAttributes(attribute.String("store.slug", slug)))
	defer span.End()

	front, err := h.service.StoreFront(ctx, slug)
	if err != nil {
		h.fail(w, err)
		return
	}
	featured := make([]productView, 0, len(front.Featured))
	for _, p := range front.Featured {
		featured = append(featured, view(p))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"store":             front.Store,
		"featured_products": featured,
		"delivery_settings": front.Delivery,
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	ctx, span := h.tracer.Start(r.Context(), "ListProducts", trace.WithAttributes(attribute.String("store.slug", slug)))
	defer span.End()

	products, err := h.service.ListProducts(ctx, slug)
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, view(p))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProduct")
	defer span.End()

	p, err := h.service.Product(ctx, chi.URLParam(r, "slug"), chi.URLParam(r, "productSlug"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view(p))
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrStoreNotFound), errors.Is(err, domain.ErrProductNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error("catalog request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
