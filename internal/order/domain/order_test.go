package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

var (
	now      = time.Date(2025, 1, 31, 14, 0, 0, 0, time.UTC)
	customer = Customer{Name: "João Silva", Phone: "(11) 99999-9999"}
	address  = Delivery{Street: "Rua das Flores", Number: "123", Neighborhood: "Centro", City: "São Paulo", State: "SP"}
)

func items() []Item {
	return []Item{
		{ProductID: "p1", ProductName: "Ração", Quantity: dec("2.5"), UnitPrice: dec("12.50"), OrderType: ItemByQuantity, Subtotal: dec("31.25")},
		{ProductID: "p2", ProductName: "Petisco", Quantity: dec("0.4"), UnitPrice: dec("50"), OrderType: ItemByValue, RequestedValue: ptr(dec("20")), Subtotal: dec("20")},
	}
}

func TestNewOrderTotals(t *testing.T) {
	o, err := NewOrder("id", "#ORD-1", "s1", customer, address, Payment{Method: PaymentPix}, items(), dec("10"), now)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "51.25", o.Subtotal.String())
	assert.Equal(t, "61.25", o.Total.String())
	assert.True(t, o.Total.Equal(o.Subtotal.Add(o.DeliveryFee)))
	assert.Nil(t, o.CashChange)
}

func TestNewOrderTotalAlwaysSubtotalPlusFee(t *testing.T) {
	for _, fee := range []string{"0", "5", "10", "12.99"} {
		o, err := NewOrder("id", "n", "s1", customer, address, Payment{Method: PaymentCard}, items(), dec(fee), now)
		require.NoError(t, err)
		assert.True(t, o.Total.Equal(o.Subtotal.Add(dec(fee))), "fee %s", fee)
	}
}

func TestNewOrderCashChange(t *testing.T) {
	o, err := NewOrder("id", "n", "s1", customer, address, Payment{Method: PaymentMoney, CashChangeFor: ptr(dec("100"))}, items(), dec("10"), now)
	require.NoError(t, err)
	require.NotNil(t, o.CashChange)
	assert.Equal(t, "38.75", o.CashChange.String())

	o, err = NewOrder("id", "n", "s1", customer, address, Payment{Method: PaymentMoney, CashChangeFor: ptr(dec("61.25"))}, items(), dec("10"), now)
	require.NoError(t, err)
	assert.True(t, o.CashChange.IsZero())

	_, err = NewOrder("id", "n", "s1", customer, address, Payment{Method: PaymentMoney, CashChangeFor: ptr(dec("50"))}, items(), dec("10"), now)
	assert.ErrorIs(t, err, ErrInsufficientCash)

	o, err = NewOrder("id", "n", "s1", customer, address, Payment{Method: PaymentPix, CashChangeFor: ptr(dec("100"))}, items(), dec("10"), now)
	require.NoError(t, err)
	assert.Nil(t, o.CashChangeFor)
}

func TestCashChangeSign(t *testing.T) {
	total := dec("61.25")
	for _, tendered := range []string{"0", "61.24", "61.25", "61.26", "200"} {
		change := CashChange(dec(tendered), total)
		assert.Equal(t, !change.IsNegative(), dec(tendered).GreaterThanOrEqual(total), tendered)
	}
}

func TestNewOrderValidation(t *testing.T) {
	cases := map[string]func() error{
		"missing name": func() error {
			_, err := NewOrder("id", "n", "s1", Customer{Phone: "1"}, address, Payment{Method: PaymentPix}, items(), dec("10"), now)
			return err
		},
		"missing street": func() error {
			_, err := NewOrder("id", "n", "s1", customer, Delivery{Number: "1", Neighborhood: "x"}, Payment{Method: PaymentPix}, items(), dec("10"), now)
			return err
		},
		"bad payment": func() error {
			_, err := NewOrder("id", "n", "s1", customer, address, Payment{Method: "crypto"}, items(), dec("10"), now)
			return err
		},
		"no items": func() error {
			_, err := NewOrder("id", "n", "s1", customer, address, Payment{Method: PaymentPix}, nil, dec("10"), now)
			return err
		},
		"wrong item subtotal": func() error {
			its := items()
			its[0].Subtotal = dec("30")
			_, err := NewOrder("id", "n", "s1", customer, address, Payment{Method: PaymentPix}, its, dec("10"), now)
			return err
		},
		"by value without requested value": func() error {
			its := items()
			its[1].RequestedValue = nil
			_, err := NewOrder("id", "n", "s1", customer, address, Payment{Method: PaymentPix}, its, dec("10"), now)
			return err
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, fn(), ErrInvalidOrder)
		})
	}
}

func TestMatches(t *testing.T) {
	o := Order{Number: "#ORD-20250131-AB12", Customer: Customer{Name: "Maria Souza", Phone: "11988887777"}}
	assert.True(t, o.Matches(""))
	assert.True(t, o.Matches("ab12"))
	assert.True(t, o.Matches("maria"))
	assert.True(t, o.Matches("8888"))
	assert.False(t, o.Matches("joão"))
}

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "11999999999", PhoneDigits("(11) 99999-9999"))
}

func TestNewOrderNumber(t *testing.T) {
	n, err := NewOrderNumber(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^#ORD-20250131-[0-9A-Z]{4}$`), n)
}

func TestStats(t *testing.T) {
	s := Stats([]Order{
		{Status: StatusPending, Total: dec("10")},
		{Status: StatusPreparing, Total: dec("20")},
		{Status: StatusOutForDelivery, Total: dec("30")},
		{Status: StatusCancelled, Total: dec("40")},
		{Status: StatusDelivered, Total: dec("50")},
	})
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Preparing)
	assert.Equal(t, 1, s.Delivering)
	assert.Equal(t, "110", s.TotalRevenue.String())
}
