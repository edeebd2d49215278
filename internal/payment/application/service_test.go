package application

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	order "github.com/dmehra2102/doglivery/internal/order/domain"
	"github.com/dmehra2102/doglivery/internal/payment/domain"
)

type memCharges map[string]domain.Charge

func (m memCharges) Save(_ context.Context, c domain.Charge) (domain.Charge, error) {
	if prev, ok := m[c.OrderID]; ok {
		c.Status, c.CreatedAt = prev.Status, prev.CreatedAt
	}
	m[c.OrderID] = c
	return c, nil
}

type stubOrders map[string]order.Order

func (s stubOrders) GetOrder(_ context.Context, id string) (order.Order, error) {
	o, ok := s[id]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	return o, nil
}

type stubStores map[string]catalog.Store

func (s stubStores) StoreByID(_ context.Context, id string) (catalog.Store, error) {
	st, ok := s[id]
	if !ok {
		return catalog.Store{}, catalog.ErrStoreNotFound
	}
	return st, nil
}

func fixture() (*Service, memCharges) {
	orders := stubOrders{
		"pix":       {ID: "pix", Number: "#ORD-20240517-K7QZ", StoreID: "s1", Payment: order.Payment{Method: order.PaymentPix}, Total: decimal.RequireFromString("61.25")},
		"cash":      {ID: "cash", StoreID: "s1", Payment: order.Payment{Method: order.PaymentMoney}},
		"nokey":     {ID: "nokey", StoreID: "s2", Payment: order.Payment{Method: order.PaymentPix}, Total: decimal.NewFromInt(1)},
		"cancelled": {ID: "cancelled", StoreID: "s1", Status: order.StatusCancelled, Payment: order.Payment{Method: order.PaymentPix}, Total: decimal.NewFromInt(30)},
		"delivered": {ID: "delivered", StoreID: "s1", Status: order.StatusDelivered, Payment: order.Payment{Method: order.PaymentPix}, Total: decimal.NewFromInt(30)},
	}
	stores := stubStores{
		"s1": {ID: "s1", Name: "Pet Shop", PixKey: "pix@petshop.com.br"},
		"s2": {ID: "s2", Name: "Sem Pix"},
	}
	charges := memCharges{}
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), charges, orders, stores, "Sao Paulo"), charges
}

func TestPixCharge(t *testing.T) {
	svc, charges := fixture()

	c, err := svc.PixCharge(context.Background(), "pix")
	require.NoError(t, err)
	assert.Equal(t, "ORD20240517K7QZ", c.TxID)
	assert.Equal(t, domain.StatusPending, c.Status)
	assert.Contains(t, c.Payload, "6009SAO PAULO")
	assert.True(t, domain.ValidCRC(c.Payload))
	assert.Contains(t, charges, "pix")

	again, err := svc.PixCharge(context.Background(), "pix")
	require.NoError(t, err)
	assert.Equal(t, c.CreatedAt, again.CreatedAt)
}

func TestPixChargeErrors(t *testing.T) {
	svc, _ := fixture()

	_, err := svc.PixCharge(context.Background(), "cash")
	assert.ErrorIs(t, err, domain.ErrNotPixOrder)

	_, err = svc.PixCharge(context.Background(), "nokey")
	assert.ErrorIs(t, err, domain.ErrPixUnavailable)

	_, err = svc.PixCharge(context.Background(), "missing")
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestPixChargeRefusesClosedOrders(t *testing.T) {
	svc, charges := fixture()

	for _, id := range []string{"cancelled", "delivered"} {
		_, err := svc.PixCharge(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrOrderClosed, id)
		assert.NotContains(t, charges, id)
	}
}
