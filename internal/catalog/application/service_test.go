package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/doglivery/internal/catalog/domain"
)

type fakeRepo struct {
	stores     map[string]domain.Store
	products   []domain.Product
	delivery   map[string]domain.DeliverySettings
	slugLookup int
}

func (f *fakeRepo) StoreBySlug(_ context.Context, slug string) (domain.Store, error) {
	f.slugLookup++
	st, ok := f.stores[slug]
	if !ok || !st.IsActive {
		return domain.Store{}, domain.ErrStoreNotFound
	}
	return st, nil
}

func (f *fakeRepo) StoreByID(_ context.Context, id string) (domain.Store, error) {
	for _, st := range f.stores {
		if st.ID == id {
			return st, nil
		}
	}
	return domain.Store{}, domain.ErrStoreNotFound
}

func (f *fakeRepo) DeliverySettings(_ context.Context, storeID string) (domain.DeliverySettings, bool, error) {
	ds, ok := f.delivery[storeID]
	return ds, ok, nil
}

func (f *fakeRepo) Products(_ context.Context, storeID string, featuredOnly bool) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		if p.StoreID == storeID && p.IsActive && (!featuredOnly || p.IsFeatured) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) ProductBySlug(_ context.Context, storeID, slug string) (domain.Product, error) {
	for _, p := range f.products {
		if p.StoreID == storeID && p.Slug == slug && p.IsActive {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func (f *fakeRepo) ProductsByID(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		for _, p := range f.products {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type mapCache struct {
	m       map[string]domain.Store
	failGet bool
}

func (c *mapCache) Get(_ context.Context, slug string) (domain.Store, bool, error) {
	if c.failGet {
		return domain.Store{}, false, errors.New("redis down")
	}
	st, ok := c.m[slug]
	return st, ok, nil
}

func (c *mapCache) Set(_ context.Context, st domain.Store) error {
	c.m[st.Slug] = st
	return nil
}

func newFixture() (*fakeRepo, *mapCache, *Service) {
	repo := &fakeRepo{
		stores: map[string]domain.Store{
			"petshop": {ID: "s1", Slug: "petshop", Name: "Pet Shop", IsActive: true},
			"closed":  {ID: "s2", Slug: "closed", IsActive: false},
		},
		products: []domain.Product{
			{ID: "p1", StoreID: "s1", Slug: "racao", Price: decimal.NewFromInt(10), IsActive: true, IsFeatured: true},
			{ID: "p2", StoreID: "s1", Slug: "petisco", Price: decimal.NewFromInt(5), IsActive: true},
			{ID: "p3", StoreID: "s1", Slug: "antigo", IsActive: false},
		},
		delivery: map[string]domain.DeliverySettings{},
	}
	cache := &mapCache{m: map[string]domain.Store{}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo, cache, NewService(log, repo, cache, decimal.NewFromInt(10))
}

func TestStoreUsesCache(t *testing.T) {
	repo, _, svc := newFixture()
	ctx := context.Background()

	_, err := svc.Store(ctx, "petshop")
	require.NoError(t, err)
	_, err = svc.Store(ctx, "petshop")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.slugLookup)

	_, err = svc.Store(ctx, "closed")
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestStoreCacheFailureFallsBack(t *testing.T) {
	_, cache, svc := newFixture()
	cache.failGet = true
	st, err := svc.Store(context.Background(), "petshop")
	require.NoError(t, err)
	assert.Equal(t, "s1", st.ID)
}

func TestStoreFront(t *testing.T) {
	_, _, svc := newFixture()
	front, err := svc.StoreFront(context.Background(), "petshop")
	require.NoError(t, err)
	require.Len(t, front.Featured, 1)
	assert.Equal(t, "p1", front.Featured[0].ID)
	assert.Equal(t, "10", front.Delivery.DeliveryFee.String())
}

func TestProductLookups(t *testing.T) {
	_, _, svc := newFixture()
	ctx := context.Background()

	list, err := svc.ListProducts(ctx, "petshop")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.Product(ctx, "petshop", "antigo")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.ProductByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestDeliverySettingsConfigured(t *testing.T) {
	repo, _, svc := newFixture()
	repo.delivery["s1"] = domain.DeliverySettings{StoreID: "s1", DeliveryFee: decimal.RequireFromString("7.5")}
	ds, err := svc.DeliverySettings(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "7.5", ds.DeliveryFee.String())
}

func TestCheckStock(t *testing.T) {
	_, _, svc := newFixture()
	shortages, err := svc.CheckStock(context.Background(), []domain.StockLine{
		{ProductID: "p1", Quantity: decimal.NewFromInt(2)},
		{ProductID: "p3", Quantity: decimal.NewFromInt(1)},
		{ProductID: "missing", Quantity: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	require.Len(t, shortages, 2)
	assert.Equal(t, "p3", shortages[0].ProductID)
	assert.Equal(t, "missing", shortages[1].ProductID)
}
