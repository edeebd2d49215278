package application

import (
	"context"

	"github.com/dmehra2102/doglivery/internal/catalog/domain"
)

type CatalogRepository interface {
	StoreBySlug(ctx context.Context, slug string) (domain.Store, error)
	StoreByID(ctx context.Context, id string) (domain.Store, error)
	DeliverySettings(ctx context.Context, storeID string) (domain.DeliverySettings, bool, error)
	Products(ctx context.Context, storeID string, featuredOnly bool) ([]domain.Product, error)
	ProductBySlug(ctx context.Context, storeID, slug string) (domain.Product, error)
	ProductsByID(ctx context.Context, ids []string) ([]domain.Product, error)
}

// StoreCache keeps slug lookups off the database.
type StoreCache interface {
	Get(ctx context.Context, slug string) (domain.Store, bool, error)
	Set(ctx context.Context, store domain.Store) error
}
