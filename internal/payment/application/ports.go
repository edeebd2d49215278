package application

import (
	"context"

	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	order "github.com/dmehra2102/doglivery/internal/order/domain"
	"github.com/dmehra2102/doglivery/internal/payment/domain"
)

type ChargeRepository interface {
	// Save upserts the charge for its order and returns the stored row.
	Save(ctx context.Context, c domain.Charge) (domain.Charge, error)
}

type OrderReader interface {
	GetOrder(ctx context.Context, id string) (order.Order, error)
}

type StoreReader interface {
	StoreByID(ctx context.Context, id string) (catalog.Store, error)
}
