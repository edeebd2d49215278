package application

import (
	"context"

	"github.com/dmehra2102/doglivery/internal/cart/domain"
	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	orderapp "github.com/dmehra2102/doglivery/internal/order/application"
)

type CartRepository interface {
	// Load returns an empty cart with the given id when none is stored.
	Load(ctx context.Context, id string) (domain.Cart, error)
	// Update loads the cart, applies fn and stores the result atomically.
	// fn may run more than once when the cart changes underneath it.
	Update(ctx context.Context, id string, fn func(*domain.Cart) error) (domain.Cart, error)
	Delete(ctx context.Context, id string) error
}

type ProductCatalog interface {
	Store(ctx context.Context, slug string) (catalog.Store, error)
	ProductByID(ctx context.Context, id string) (catalog.Product, error)
}

type OrderPlacer interface {
	CreateOrder(ctx context.Context, req orderapp.CreateOrderRequest, headers map[string]string, traceparent string) (orderapp.CreateOrderResult, error)
}
