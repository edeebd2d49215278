package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/doglivery/internal/cart/application"
	"github.com/dmehra2102/doglivery/internal/cart/domain"
	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	orderapp "github.com/dmehra2102/doglivery/internal/order/application"
)

type stubCarts struct {
	cart    domain.Cart
	lastSel domain.Selection
	slug    string
}

func (s *stubCarts) Get(_ context.Context, id string) (domain.Cart, error) {
	s.cart.ID = id
	return s.cart, nil
}

func (s *stubCarts) AddItem(_ context.Context, id, slug string, sel domain.Selection) (domain.Cart, error) {
	s.slug, s.lastSel = slug, sel
	if slug == "other" {
		return domain.Cart{}, application.ErrStoreMismatch
	}
	if sel.ProductID == "missing" {
		return domain.Cart{}, catalog.ErrProductNotFound
	}
	s.cart.ID = id
	s.cart.AddItem(domain.Item{ID: sel.ProductID + "-quantity", ProductID: sel.ProductID, Quantity: *sel.Quantity, Price: decimal.NewFromInt(10), Subtotal: sel.Quantity.Mul(decimal.NewFromInt(10))})
	return s.cart, nil
}

func (s *stubCarts) UpdateQuantity(_ context.Context, _, itemID string, qty decimal.Decimal) (domain.Cart, error) {
	if err := s.cart.UpdateQuantity(itemID, qty); err != nil {
		return domain.Cart{}, err
	}
	return s.cart, nil
}

func (s *stubCarts) RemoveItem(_ context.Context, _, itemID string) (domain.Cart, error) {
	if err := s.cart.RemoveItem(itemID); err != nil {
		return domain.Cart{}, err
	}
	return s.cart, nil
}

func (s *stubCarts) Clear(context.Context, string) error {
	s.cart.Clear()
	return nil
}

func (s *stubCarts) Checkout(_ context.Context, _ string, _ orderapp.CreateOrderRequest, _ map[string]string, _ string) (orderapp.CreateOrderResult, error) {
	if len(s.cart.Items) == 0 {
		return orderapp.CreateOrderResult{}, domain.ErrEmptyCart
	}
	return orderapp.CreateOrderResult{OrderID: "o-1", OrderNumber: "#ORD-20240517-ZZZZ"}, nil
}

func serve(t *testing.T, svc *stubCarts, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCartLifecycle(t *testing.T) {
	svc := &stubCarts{}

	rec := serve(t, svc, http.MethodGet, "/carts/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body(t, rec)["items"])

	rec = serve(t, svc, http.MethodPost, "/carts/c1/items", `{"storeSlug":"petshop","productId":"p1","mode":"quantity","quantity":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "petshop", svc.slug)
	assert.Equal(t, catalog.ModeQuantity, svc.lastSel.Mode)
	assert.Equal(t, "20", body(t, rec)["total"])

	rec = serve(t, svc, http.MethodPatch, "/carts/c1/items/p1-quantity", `{"quantity":"3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30", body(t, rec)["total"])
	assert.Equal(t, "3", body(t, rec)["itemsCount"])

	rec = serve(t, svc, http.MethodPatch, "/carts/c1/items/p1-quantity", `{"quantity":"0"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, svc, http.MethodPost, "/carts/c1/checkout", `{"customerName":"Maria"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "o-1", body(t, rec)["orderId"])

	rec = serve(t, svc, http.MethodDelete, "/carts/c1/items/p1-quantity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, svc, http.MethodDelete, "/carts/c1/items/p1-quantity", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, svc, http.MethodDelete, "/carts/c1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, svc, http.MethodPost, "/carts/c1/checkout", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItemErrors(t *testing.T) {
	rec := serve(t, &stubCarts{}, http.MethodPost, "/carts/c1/items", `{"storeSlug":"other","productId":"p1","quantity":"1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(t, &stubCarts{}, http.MethodPost, "/carts/c1/items", `{"storeSlug":"petshop","productId":"missing","quantity":"1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, &stubCarts{}, http.MethodPost, "/carts/c1/items", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
