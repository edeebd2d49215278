package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/doglivery/internal/cart/domain"
	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	orderapp "github.com/dmehra2102/doglivery/internal/order/application"
)

// ErrStoreMismatch is returned when adding a product from another store
// to a cart that already holds items.
var ErrStoreMismatch = errors.New("cart belongs to another store")

type Service struct {
	log     *slog.Logger
	repo    CartRepository
	catalog ProductCatalog
	orders  OrderPlacer
}

func NewService(log *slog.Logger, repo CartRepository, products ProductCatalog, orders OrderPlacer) *Service {
	return &Service{log: log, repo: repo, catalog: products, orders: orders}
}

func (s *Service) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	return s.repo.Load(ctx, cartID)
}

// AddItem prices sel against the live catalog and merges it into the cart.
func (s *Service) AddItem(ctx context.Context, cartID, storeSlug string, sel domain.Selection) (domain.Cart, error) {
	store, err := s.catalog.Store(ctx, storeSlug)
	if err != nil {
		return domain.Cart{}, err
	}
	p, err := s.catalog.ProductByID(ctx, sel.ProductID)
	if err != nil {
		return domain.Cart{}, err
	}
	if p.StoreID != store.ID || !p.IsActive {
		return domain.Cart{}, catalog.ErrProductNotFound
	}
	item, err := domain.BuildItem(p, sel)
	if err != nil {
		return domain.Cart{}, err
	}

	return s.repo.Update(ctx, cartID, func(c *domain.Cart) error {
		if len(c.Items) > 0 && c.StoreSlug != "" && c.StoreSlug != store.Slug {
			return fmt.Errorf("%w: %s", ErrStoreMismatch, c.StoreSlug)
		}
		c.StoreSlug = store.Slug
		c.AddItem(item)
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, cartID, itemID string, qty decimal.Decimal) (domain.Cart, error) {
	return s.repo.Update(ctx, cartID, func(c *domain.Cart) error { return c.UpdateQuantity(itemID, qty) })
}

func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (domain.Cart, error) {
	return s.repo.Update(ctx, cartID, func(c *domain.Cart) error { return c.RemoveItem(itemID) })
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	return s.repo.Delete(ctx, cartID)
}

// Checkout places an order for the cart's items with the customer,
// delivery and payment details from req, then clears the cart.
func (s *Service) Checkout(ctx context.Context, cartID string, req orderapp.CreateOrderRequest, headers map[string]string, traceparent string) (orderapp.CreateOrderResult, error) {
	c, err := s.repo.Load(ctx, cartID)
	if err != nil {
		return orderapp.CreateOrderResult{}, err
	}
	if len(c.Items) == 0 {
		return orderapp.CreateOrderResult{}, domain.ErrEmptyCart
	}

	req.StoreID = ""
	req.StoreSlug = c.StoreSlug
	req.Items = RequestItems(c)
	subtotal := c.Total()
	req.Subtotal = &subtotal
	req.DeliveryFee = nil
	req.Total = nil

	res, err := s.orders.CreateOrder(ctx, req, headers, traceparent)
	if err != nil {
		return orderapp.CreateOrderResult{}, err
	}
	if err := s.repo.Delete(ctx, cartID); err != nil {
		s.log.Warn("cart not cleared after checkout", "cart_id", cartID, "order_id", res.OrderID, "err", err)
	}
	return res, nil
}

// RequestItems converts cart lines to order lines. Bags are bought by
// count at the bag price.
func RequestItems(c domain.Cart) []orderapp.RequestItem {
	items := make([]orderapp.RequestItem, 0, len(c.Items))
	for _, it := range c.Items {
		orderType := string(it.OrderType)
		if it.OrderType == domain.ByBag {
			orderType = string(domain.ByQuantity)
		}
		items = append(items, orderapp.RequestItem{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Price:          it.Price,
			OrderType:      orderType,
			Quantity:       it.Quantity,
			RequestedValue: it.RequestedValue,
			BagSize:        it.BagSize,
			Subtotal:       it.Subtotal,
		})
	}
	return items
}
