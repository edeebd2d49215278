package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrInsufficientCash = errors.New("cash amount is less than the order total")
)

type PaymentMethod string

const (
	PaymentPix         PaymentMethod = "pix"
	PaymentMoney       PaymentMethod = "money"
	PaymentCard        PaymentMethod = "card"
	PaymentMercadoPago PaymentMethod = "mercadopago"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentMoney, PaymentCard, PaymentMercadoPago:
		return true
	}
	return false
}

// ItemType is the persisted order type. Bag purchases are stored as
// by_quantity with the bag price as unit price.
type ItemType string

const (
	ItemByQuantity ItemType = "by_quantity"
	ItemByValue    ItemType = "by_value"
)

type Item struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"product_id"`
	ProductName    string           `json:"product_name"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	OrderType      ItemType         `json:"order_type"`
	RequestedValue *decimal.Decimal `json:"requested_value,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
}

// Validate checks that the subtotal is quantity × unit price, or the
// requested value for by-value lines.
func (it Item) Validate() error {
	if it.ProductID == "" {
		return fmt.Errorf("%w: item without product", ErrInvalidOrder)
	}
	if !it.Quantity.IsPositive() || it.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: item %s has invalid quantity or price", ErrInvalidOrder, it.ProductID)
	}
	switch it.OrderType {
	case ItemByValue:
		if it.RequestedValue == nil || !it.Subtotal.Round(2).Equal(it.RequestedValue.Round(2)) {
			return fmt.Errorf("%w: item %s subtotal must equal requested value", ErrInvalidOrder, it.ProductID)
		}
	case ItemByQuantity:
		if !it.Subtotal.Round(2).Equal(it.Quantity.Mul(it.UnitPrice).Round(2)) {
			return fmt.Errorf("%w: item %s subtotal must equal quantity × unit price", ErrInvalidOrder, it.ProductID)
		}
	default:
		return fmt.Errorf("%w: item %s has unknown order type %q", ErrInvalidOrder, it.ProductID, it.OrderType)
	}
	return nil
}

type Customer struct {
	Name  string `json:"customer_name"`
	Phone string `json:"customer_phone"`
}

type Delivery struct {
	Street       string `json:"delivery_street"`
	Number       string `json:"delivery_number"`
	Neighborhood string `json:"delivery_neighborhood"`
	Complement   string `json:"delivery_complement,omitempty"`
	City         string `json:"delivery_city"`
	State        string `json:"delivery_state"`
	ZipCode      string `json:"delivery_zip_code"`
}

type Payment struct {
	Method        PaymentMethod    `json:"payment_method"`
	CashChangeFor *decimal.Decimal `json:"cash_change_for,omitempty"`
	CashChange    *decimal.Decimal `json:"cash_change,omitempty"`
}

type Order struct {
	ID      string      `json:"id"`
	Number  string      `json:"order_number"`
	StoreID string      `json:"store_id"`
	Status  OrderStatus `json:"status"`
	// Embedded so the JSON form matches the flat orders row.
	Customer
	Delivery
	Payment
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
	Items       []Item          `json:"items,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CashChange is what the courier hands back. It is negative when the
// tendered amount does not cover the total.
func CashChange(tendered, total decimal.Decimal) decimal.Decimal {
	return tendered.Sub(total).Round(2)
}

// NewOrder assembles a pending order, computing subtotal, total and the
// cash change.
func NewOrder(id, number, storeID string, customer Customer, delivery Delivery, payment Payment, items []Item, deliveryFee decimal.Decimal, now time.Time) (Order, error) {
	if strings.TrimSpace(customer.Name) == "" || strings.TrimSpace(customer.Phone) == "" {
		return Order{}, fmt.Errorf("%w: customer name and phone are required", ErrInvalidOrder)
	}
	if strings.TrimSpace(delivery.Street) == "" || strings.TrimSpace(delivery.Number) == "" || strings.TrimSpace(delivery.Neighborhood) == "" {
		return Order{}, fmt.Errorf("%w: street, number and neighborhood are required", ErrInvalidOrder)
	}
	if !payment.Method.Valid() {
		return Order{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, payment.Method)
	}
	if len(items) == 0 {
		return Order{}, fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	if deliveryFee.IsNegative() {
		return Order{}, fmt.Errorf("%w: negative delivery fee", ErrInvalidOrder)
	}

	subtotal := decimal.Zero
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return Order{}, err
		}
		subtotal = subtotal.Add(it.Subtotal)
	}
	subtotal = subtotal.Round(2)
	fee := deliveryFee.Round(2)
	total := subtotal.Add(fee)

	payment.CashChange = nil
	if payment.Method != PaymentMoney {
		payment.CashChangeFor = nil
	} else if payment.CashChangeFor != nil {
		change := CashChange(*payment.CashChangeFor, total)
		if change.IsNegative() {
			return Order{}, ErrInsufficientCash
		}
		payment.CashChange = &change
	}

	return Order{
		ID:          id,
		Number:      number,
		StoreID:     storeID,
		Status:      StatusPending,
		Customer:    customer,
		Delivery:    delivery,
		Payment:     payment,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       total,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Transition moves o to status, enforcing the lifecycle.
func (o *Order) Transition(to OrderStatus, now time.Time) error {
	if !o.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}

// Matches is the admin dashboard search: case-insensitive on order
// number and customer name, substring on phone.
func (o Order) Matches(term string) bool {
	if term == "" {
		return true
	}
	lower := strings.ToLower(term)
	return strings.Contains(strings.ToLower(o.Number), lower) ||
		strings.Contains(strings.ToLower(o.Customer.Name), lower) ||
		strings.Contains(o.Customer.Phone, term)
}

// PhoneDigits strips formatting from a phone number.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
