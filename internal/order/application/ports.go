package application

import (
	"context"

	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	"github.com/dmehra2102/doglivery/internal/order/domain"
)

type OrderRepository interface {
	SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, headers map[string]string, traceparent string) error
	// UpdateStatusWithOutbox persists o.Status only if the row still has
	// status from, and reports domain.ErrInvalidTransition otherwise.
	UpdateStatusWithOutbox(ctx context.Context, o domain.Order, from domain.OrderStatus, eventType string, payload []byte, headers map[string]string, traceparent string) error
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByStore(ctx context.Context, storeID string, status domain.OrderStatus) ([]domain.Order, error)
	ListByPhone(ctx context.Context, storeID, phoneDigits string) ([]domain.Order, error)
}

type StoreDirectory interface {
	Store(ctx context.Context, slug string) (catalog.Store, error)
	StoreByID(ctx context.Context, id string) (catalog.Store, error)
	DeliverySettings(ctx context.Context, storeID string) (catalog.DeliverySettings, error)
	ProductsByID(ctx context.Context, ids []string) ([]catalog.Product, error)
}

type StockChecker interface {
	CheckStock(ctx context.Context, lines []catalog.StockLine) ([]catalog.StockShortage, error)
}
