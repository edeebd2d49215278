package application

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/doglivery/internal/catalog/domain"
)

type Service struct {
	log        *slog.Logger
	repo       CatalogRepository
	cache      StoreCache
	defaultFee decimal.Decimal
}

func NewService(log *slog.Logger, repo CatalogRepository, cache StoreCache, defaultFee decimal.Decimal) *Service {
	return &Service{log: log, repo: repo, cache: cache, defaultFee: defaultFee}
}

// StoreFront is everything the store home page shows.
type StoreFront struct {
	Store    domain.Store            `json:"store"`
	Featured []domain.Product        `json:"featured_products"`
	Delivery domain.DeliverySettings `json:"delivery_settings"`
}

// Store returns the active store for slug. Cache failures fall through
// to the database.
func (s *Service) Store(ctx context.Context, slug string) (domain.Store, error) {
	if s.cache != nil {
		st, ok, err := s.cache.Get(ctx, slug)
		if err != nil {
			s.log.Warn("store cache read failed", "slug", slug, "err", err)
		}
		if ok {
			return st, nil
		}
	}
	st, err := s.repo.StoreBySlug(ctx, slug)
	if err != nil {
		return domain.Store{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, st); err != nil {
			s.log.Warn("store cache write failed", "slug", slug, "err", err)
		}
	}
	return st, nil
}

func (s *Service) StoreByID(ctx context.Context, id string) (domain.Store, error) {
	return s.repo.StoreByID(ctx, id)
}

func (s *Service) StoreFront(ctx context.Context, slug string) (StoreFront, error) {
	st, err := s.Store(ctx, slug)
	if err != nil {
		return StoreFront{}, err
	}
	featured, err := s.repo.Products(ctx, st.ID, true)
	if err != nil {
		return StoreFront{}, err
	}
	delivery, err := s.DeliverySettings(ctx, st.ID)
	if err != nil {
		return StoreFront{}, err
	}
	return StoreFront{Store: st, Featured: featured, Delivery: delivery}, nil
}

func (s *Service) ListProducts(ctx context.Context, slug string) ([]domain.Product, error) {
	st, err := s.Store(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.repo.Products(ctx, st.ID, false)
}

func (s *Service) Product(ctx context.Context, slug, productSlug string) (domain.Product, error) {
	st, err := s.Store(ctx, slug)
	if err != nil {
		return domain.Product{}, err
	}
	return s.repo.ProductBySlug(ctx, st.ID, productSlug)
}

func (s *Service) ProductByID(ctx context.Context, id string) (domain.Product, error) {
	ps, err := s.repo.ProductsByID(ctx, []string{id})
	if err != nil {
		return domain.Product{}, err
	}
	if len(ps) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return ps[0], nil
}

// ProductsByID includes inactive products; callers decide what to do with them.
func (s *Service) ProductsByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	return s.repo.ProductsByID(ctx, ids)
}

// DeliverySettings falls back to the configured fee for stores that
// have not set one.
func (s *Service) DeliverySettings(ctx context.Context, storeID string) (domain.DeliverySettings, error) {
	ds, ok, err := s.repo.DeliverySettings(ctx, storeID)
	if err != nil {
		return domain.DeliverySettings{}, err
	}
	if !ok {
		return domain.DeliverySettings{StoreID: storeID, DeliveryFee: s.defaultFee, EstimatedMinutes: 60}, nil
	}
	return ds, nil
}

// CheckStock returns the lines that cannot be served. Unknown products
// count as fully short.
func (s *Service) CheckStock(ctx context.Context, lines []domain.StockLine) ([]domain.StockShortage, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.repo.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var shortages []domain.StockShortage
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.IsActive {
			shortages = append(shortages, domain.StockShortage{ProductID: l.ProductID, BagSize: l.BagSize, Requested: l.Quantity, Available: decimal.Zero})
			continue
		}
		if short, isShort := p.Shortage(l); isShort {
			shortages = append(shortages, short)
		}
	}
	return shortages, nil
}
