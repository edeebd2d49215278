package domain

import "github.com/shopspring/decimal"

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type OrderCreated struct {
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	StoreID       string          `json:"store_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Items         int             `json:"items"`
}

type OrderStatusChanged struct {
	OrderID       string      `json:"order_id"`
	OrderNumber   string      `json:"order_number"`
	StoreID       string      `json:"store_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	From          OrderStatus `json:"from"`
	To            OrderStatus `json:"to"`
}
