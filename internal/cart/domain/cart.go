package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCartBusy        = errors.New("cart is being changed by another request")
)

type OrderType string

const (
	ByQuantity OrderType = "by_quantity"
	ByValue    OrderType = "by_value"
	ByBag      OrderType = "by_bag"
)

type Item struct {
	ID             string           `json:"id"`
	ProductID      string           `json:"productId"`
	ProductName    string           `json:"productName"`
	ProductSlug    string           `json:"productSlug"`
	ProductType    string           `json:"productType"`
	Price          decimal.Decimal  `json:"price"`
	Unit           string           `json:"unit"`
	OrderType      OrderType        `json:"orderType"`
	Quantity       decimal.Decimal  `json:"quantity"`
	RequestedValue *decimal.Decimal `json:"requestedValue,omitempty"`
	BagSize        string           `json:"bagSize,omitempty"`
	BagWeight      *decimal.Decimal `json:"bagWeight,omitempty"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
}

// Cart is a customer's basket for one store.
type Cart struct {
	ID        string `json:"id"`
	StoreSlug string `json:"storeSlug,omitempty"`
	Items     []Item `json:"items"`
}

// AddItem appends item, or merges it into the line with the same id by
// summing quantity, subtotal and requested value.
func (c *Cart) AddItem(item Item) {
	for i := range c.Items {
		existing := &c.Items[i]
		if existing.ID != item.ID {
			continue
		}
		existing.Quantity = existing.Quantity.Add(item.Quantity)
		existing.Subtotal = existing.Subtotal.Add(item.Subtotal)
		if existing.RequestedValue != nil && item.RequestedValue != nil {
			sum := existing.RequestedValue.Add(*item.RequestedValue)
			existing.RequestedValue = &sum
		}
		return
	}
	c.Items = append(c.Items, item)
}

func (c *Cart) RemoveItem(id string) error {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// UpdateQuantity sets a line's quantity and recomputes its subtotal as
// quantity × price. By-value lines follow the new subtotal.
func (c *Cart) UpdateQuantity(id string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		it := &c.Items[i]
		if it.ID != id {
			continue
		}
		it.Quantity = qty
		it.Subtotal = qty.Mul(it.Price).Round(2)
		if it.OrderType == ByValue {
			v := it.Subtotal
			it.RequestedValue = &v
		}
		return nil
	}
	return ErrItemNotFound
}

func (c *Cart) Clear() { c.Items = nil }

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// ItemsCount sums quantities, so fractional kilograms count fractionally.
func (c *Cart) ItemsCount() decimal.Decimal {
	count := decimal.Zero
	for _, it := range c.Items {
		count = count.Add(it.Quantity)
	}
	return count
}
