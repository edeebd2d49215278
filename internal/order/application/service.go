package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalog "github.com/dmehra2102/doglivery/internal/catalog/domain"
	"github.com/dmehra2102/doglivery/internal/order/domain"
)

var ErrStockUnavailable = errors.New("stock unavailable")

// CreateOrderRequest is the checkout body. Field names follow the cart
// JSON so cart items can be posted unchanged.
type CreateOrderRequest struct {
	StoreID              string           `json:"storeId"`
	StoreSlug            string           `json:"storeSlug,omitempty"`
	CustomerName         string           `json:"customerName"`
	CustomerPhone        string           `json:"customerPhone"`
	DeliveryStreet       string           `json:"deliveryStreet"`
	DeliveryNumber       string           `json:"deliveryNumber"`
	DeliveryNeighborhood string           `json:"deliveryNeighborhood"`
	DeliveryComplement   string           `json:"deliveryComplement,omitempty"`
	DeliveryCity         string           `json:"deliveryCity"`
	DeliveryState        string           `json:"deliveryState"`
	DeliveryZipCode      string           `json:"deliveryZipCode"`
	PaymentMethod        string           `json:"paymentMethod"`
	CashChangeFor        *decimal.Decimal `json:"cashChangeFor,omitempty"`
	CashPaymentAmount    *decimal.Decimal `json:"cashPaymentAmount,omitempty"`
	Items                []RequestItem    `json:"items"`
	Subtotal             *decimal.Decimal `json:"subtotal,omitempty"`
	DeliveryFee          *decimal.Decimal `json:"deliveryFee,omitempty"`
	Total                *decimal.Decimal `json:"total,omitempty"`
}

type RequestItem struct {
	ProductID      string           `json:"productId"`
	ProductName    string           `json:"productName"`
	Price          decimal.Decimal  `json:"price"`
	OrderType      string           `json:"orderType"`
	Quantity       decimal.Decimal  `json:"quantity"`
	RequestedValue *decimal.Decimal `json:"requestedValue,omitempty"`
	BagSize        string           `json:"bagSize,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
}

type CreateOrderResult struct {
	OrderID       string               `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
}

type Service struct {
	log    *slog.Logger
	repo   OrderRepository
	stores StoreDirectory
	stock  StockChecker
	now    func() time.Time
}

func NewService(log *slog.Logger, repo OrderRepository, stores StoreDirectory, stock StockChecker) *Service {
	return &Service{
		log:    log,
		repo:   repo,
		stores: stores,
		stock:  stock,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) resolveStore(ctx context.Context, id, slug string) (catalog.Store, error) {
	switch {
	case id != "":
		st, err := s.stores.StoreByID(ctx, id)
		if err != nil {
			return catalog.Store{}, err
		}
		if !st.IsActive {
			return catalog.Store{}, catalog.ErrStoreNotFound
		}
		return st, nil
	case slug != "":
		return s.stores.Store(ctx, slug)
	}
	return catalog.Store{}, fmt.Errorf("%w: store is required", domain.ErrInvalidOrder)
}

// priceItems turns request lines into order items priced from the catalog.
// Every line must name an active product of the store and carry its
// current price (the bag price for bag lines).
func (s *Service) priceItems(ctx context.Context, storeID string, in []RequestItem) ([]domain.Item, error) {
	ids := make([]string, 0, len(in))
	for _, ri := range in {
		ids = append(ids, ri.ProductID)
	}
	products, err := s.stores.ProductsByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]domain.Item, 0, len(in))
	for _, ri := range in {
		p, ok := byID[ri.ProductID]
		if !ok || !p.IsActive || p.StoreID != storeID {
			return nil, fmt.Errorf("%w: product %s is not sold by this store", domain.ErrInvalidOrder, ri.ProductID)
		}
		typ := domain.ItemByQuantity
		if ri.OrderType == string(domain.ItemByValue) {
			typ = domain.ItemByValue
		}
		price := p.Price
		switch {
		case ri.BagSize != "":
			bag, err := p.Bag(ri.BagSize)
			if err != nil || typ != domain.ItemByQuantity {
				return nil, fmt.Errorf("%w: product %s has no bag %q", domain.ErrInvalidOrder, p.ID, ri.BagSize)
			}
			price = bag.Price
		case typ == domain.ItemByValue && !p.CanOrderByValue():
			return nil, fmt.Errorf("%w: product %s cannot be ordered by value", domain.ErrInvalidOrder, p.ID)
		case typ == domain.ItemByQuantity && !p.CanOrderByQuantity():
			return nil, fmt.Errorf("%w: product %s cannot be ordered by quantity", domain.ErrInvalidOrder, p.ID)
		}
		if !ri.Price.Round(2).Equal(price.Round(2)) {
			return nil, fmt.Errorf("%w: product %s costs %s, not %s", domain.ErrInvalidOrder, p.ID, price.StringFixed(2), ri.Price.StringFixed(2))
		}
		items = append(items, domain.Item{
			ID:             uuid.NewString(),
			ProductID:      p.ID,
			ProductName:    ri.ProductName,
			Quantity:       ri.Quantity,
			UnitPrice:      price,
			OrderType:      typ,
			RequestedValue: ri.RequestedValue,
			Subtotal:       ri.Subtotal,
		})
	}
	return items, nil
}

func claimedMismatch(claimed *decimal.Decimal, actual decimal.Decimal) bool {
	return claimed != nil && !claimed.Round(2).Equal(actual.Round(2))
}

// CreateOrder validates a checkout and stores the order, its items and an
// OrderCreated event in one transaction.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest, headers map[string]string, traceparent string) (CreateOrderResult, error) {
	store, err := s.resolveStore(ctx, req.StoreID, req.StoreSlug)
	if err != nil {
		return CreateOrderResult{}, err
	}
	settings, err := s.stores.DeliverySettings(ctx, store.ID)
	if err != nil {
		return CreateOrderResult{}, err
	}

	items, err := s.priceItems(ctx, store.ID, req.Items)
	if err != nil {
		return CreateOrderResult{}, err
	}
	itemsSubtotal := decimal.Zero
	for _, it := range items {
		itemsSubtotal = itemsSubtotal.Add(it.Subtotal)
	}
	if itemsSubtotal.LessThan(settings.MinOrderValue) {
		return CreateOrderResult{}, fmt.Errorf("%w: minimum order value is %s", domain.ErrInvalidOrder, settings.MinOrderValue.StringFixed(2))
	}

	tendered := req.CashChangeFor
	if tendered == nil {
		tendered = req.CashPaymentAmount
	}
	now := s.now()
	number, err := domain.NewOrderNumber(now)
	if err != nil {
		return CreateOrderResult{}, err
	}
	o, err := domain.NewOrder(
		uuid.NewString(),
		number,
		store.ID,
		domain.Customer{Name: strings.TrimSpace(req.CustomerName), Phone: strings.TrimSpace(req.CustomerPhone)},
		domain.Delivery{
			Street:       req.DeliveryStreet,
			Number:       req.DeliveryNumber,
			Neighborhood: req.DeliveryNeighborhood,
			Complement:   req.DeliveryComplement,
			City:         req.DeliveryCity,
			State:        req.DeliveryState,
			ZipCode:      req.DeliveryZipCode,
		},
		domain.Payment{Method: domain.PaymentMethod(req.PaymentMethod), CashChangeFor: tendered},
		items,
		settings.FeeFor(itemsSubtotal),
		now,
	)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if claimedMismatch(req.Subtotal, o.Subtotal) || claimedMismatch(req.DeliveryFee, o.DeliveryFee) || claimedMismatch(req.Total, o.Total) {
		return CreateOrderResult{}, fmt.Errorf("%w: totals do not match (subtotal %s, delivery fee %s, total %s)",
			domain.ErrInvalidOrder, o.Subtotal.StringFixed(2), o.DeliveryFee.StringFixed(2), o.Total.StringFixed(2))
	}

	if err := s.checkStock(ctx, req.Items); err != nil {
		return CreateOrderResult{}, err
	}

	payload, err := json.Marshal(domain.OrderCreated{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		StoreID:       o.StoreID,
		CustomerName:  o.Customer.Name,
		CustomerPhone: o.Customer.Phone,
		PaymentMethod: o.Payment.Method,
		Total:         o.Total,
		Items:         len(o.Items),
	})
	if err != nil {
		return CreateOrderResult{}, err
	}
	if err := s.repo.SaveWithOutbox(ctx, o, domain.EventOrderCreated, payload, headers, traceparent); err != nil {
		return CreateOrderResult{}, fmt.Errorf("save order: %w", err)
	}
	s.log.Info("order created", "order_id", o.ID, "order_number", o.Number, "store_id", o.StoreID, "total", o.Total.StringFixed(2))

	return CreateOrderResult{OrderID: o.ID, OrderNumber: o.Number, Total: o.Total, PaymentMethod: o.Payment.Method}, nil
}

func (s *Service) checkStock(ctx context.Context, items []RequestItem) error {
	if s.stock == nil {
		return nil
	}
	lines := make([]catalog.StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, catalog.StockLine{ProductID: it.ProductID, BagSize: it.BagSize, Quantity: it.Quantity})
	}
	shortages, err := s.stock.CheckStock(ctx, lines)
	if err != nil {
		return fmt.Errorf("check stock: %w", err)
	}
	if len(shortages) > 0 {
		first := shortages[0]
		return fmt.Errorf("%w: product %s requested %s, available %s", ErrStockUnavailable, first.ProductID, first.Requested, first.Available)
	}
	return nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// CustomerOrders lists a store's orders for a phone number, newest first.
func (s *Service) CustomerOrders(ctx context.Context, slug, phone string) ([]domain.Order, error) {
	digits := domain.PhoneDigits(phone)
	if digits == "" {
		return nil, fmt.Errorf("%w: phone is required", domain.ErrInvalidOrder)
	}
	store, err := s.stores.Store(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPhone(ctx, store.ID, digits)
}

// AdminOrders lists a store's orders, optionally filtered by status
// ("" or "all" for every status) and a search term.
func (s *Service) AdminOrders(ctx context.Context, slug, status, search string) ([]domain.Order, error) {
	var filter domain.OrderStatus
	if status != "" && status != "all" {
		st, err := domain.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidOrder, err)
		}
		filter = st
	}
	store, err := s.stores.Store(ctx, slug)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.ListByStore(ctx, store.ID, filter)
	if err != nil {
		return nil, err
	}
	search = strings.TrimSpace(search)
	if search == "" {
		return orders, nil
	}
	matched := orders[:0]
	for _, o := range orders {
		if o.Matches(search) {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

func (s *Service) DashboardStats(ctx context.Context, slug string) (domain.DashboardStats, error) {
	orders, err := s.AdminOrders(ctx, slug, "", "")
	if err != nil {
		return domain.DashboardStats{}, err
	}
	return domain.Stats(orders), nil
}

// UpdateStatus moves an order of the given store along its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, slug, id, status string, headers map[string]string, traceparent string) (domain.Order, error) {
	to, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrInvalidOrder, err)
	}
	store, err := s.stores.Store(ctx, slug)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.StoreID != store.ID {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	from := o.Status
	if err := o.Transition(to, s.now()); err != nil {
		return domain.Order{}, err
	}
	payload, err := json.Marshal(domain.OrderStatusChanged{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		StoreID:       o.StoreID,
		CustomerName:  o.Customer.Name,
		CustomerPhone: o.Customer.Phone,
		From:          from,
		To:            to,
	})
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.UpdateStatusWithOutbox(ctx, o, from, domain.EventOrderStatusChanged, payload, headers, traceparent); err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order status updated", "order_id", o.ID, "from", from, "to", to)
	return o, nil
}
