package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/doglivery/internal/cart/application"
	"github.com/dmehra2102/doglivery/internal/cart/domain"
	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	orderapp "github.com/dmehra2102/doglivery/internal/order/application"
	order "github.com/dmehra2102/doglivery/internal/order/domain"
	"github.com/dmehra2102/doglivery/pkg/httpx"
	"github.com/dmehra2102/doglivery/pkg/tracing"
)

type CartService interface {
	Get(ctx context.Context, cartID string) (domain.Cart, error)
	AddItem(ctx context.Context, cartID, storeSlug string, sel domain.Selection) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartID, itemID string, qty decimal.Decimal) (domain.Cart, error)
	RemoveItem(ctx context.Context, cartID, itemID string) (domain.Cart, error)
	Clear(ctx context.Context, cartID string) error
	Checkout(ctx context.Context, cartID string, req orderapp.CreateOrderRequest, headers map[string]string, traceparent string) (orderapp.CreateOrderResult, error)
}

type Handler struct {
	log     *slog.Logger
	service CartService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service CartService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("cart-http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, checkout ...func(http.Handler) http.Handler) {
	r.Route("/carts/{cartID}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clear)
		r.Post("/items", h.addItem)
		r.Patch("/items/{itemID}", h.updateItem)
		r.Delete("/items/{itemID}", h.removeItem)
		r.With(checkout...).Post("/checkout", h.checkout)
	})
}

type cartView struct {
	domain.Cart
	Total      decimal.Decimal `json:"total"`
	ItemsCount decimal.Decimal `json:"itemsCount"`
}

func (h *Handler) writeCart(w http.ResponseWriter, c domain.Cart) {
	if c.Items == nil {
		c.Items = []domain.Item{}
	}
	httpx.WriteJSON(w, http.StatusOK, cartView{Cart: c, Total: c.Total(), ItemsCount: c.ItemsCount()})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCart")
	defer span.End()

	c, err := h.service.Get(ctx, chi.URLParam(r, "cartID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeCart(w, c)
}

type addItemReq struct {
	StoreSlug string `json:"storeSlug"`
	domain.Selection
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")
	ctx, span := h.tracer.Start(r.Context(), "AddCartItem", trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer span.End()

	var req addItemReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.service.AddItem(ctx, cartID, req.StoreSlug, req.Selection)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeCart(w, c)
}

type updateItemReq struct {
	Quantity decimal.Decimal `json:"quantity"`
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCartItem")
	defer span.End()

	var req updateItemReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.service.UpdateQuantity(ctx, chi.URLParam(r, "cartID"), chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeCart(w, c)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveCartItem")
	defer span.End()

	c, err := h.service.RemoveItem(ctx, chi.URLParam(r, "cartID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeCart(w, c)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ClearCart")
	defer span.End()

	if err := h.service.Clear(ctx, chi.URLParam(r, "cartID")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")
	ctx, span := h.tracer.Start(r.Context(), "CheckoutCart", trace.WithAttributes(attribute.String("cart.id", cartID)))
	defer span.End()

	var req orderapp.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	headers := map[string]string{"source": "storefront", "cart_id": cartID}
	if id := middleware.GetReqID(ctx); id != "" {
		headers["request_id"] = id
	}
	res, err := h.service.Checkout(ctx, cartID, req, headers, tracing.Traceparent(ctx))
	if err != nil {
		span.RecordError(err)
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"orderId":     res.OrderID,
		"orderNumber": res.OrderNumber,
	})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, catalog.ErrStoreNotFound), errors.Is(err, catalog.ErrProductNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrModeNotAllowed), errors.Is(err, domain.ErrBelowMinimum),
		errors.Is(err, domain.ErrEmptyCart), errors.Is(err, catalog.ErrBagNotFound),
		errors.Is(err, order.ErrInvalidOrder), errors.Is(err, order.ErrInsufficientCash):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOutOfStock), errors.Is(err, application.ErrStoreMismatch), errors.Is(err, orderapp.ErrStockUnavailable),
		errors.Is(err, domain.ErrCartBusy):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("cart request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
