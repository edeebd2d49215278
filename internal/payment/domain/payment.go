package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotPixOrder    = errors.New("order is not paid with pix")
	ErrPixUnavailable = errors.New("store has no pix key")
	ErrOrderClosed    = errors.New("order is already closed")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Charge is the pix charge shown on the confirmation page.
type Charge struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TxID        string          `json:"txid"`
	Amount      decimal.Decimal `json:"amount"`
	Key         string          `json:"pix_key"`
	Payload     string          `json:"payload"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}
