package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestAddItemMergesDuplicateIDs(t *testing.T) {
	var c Cart
	c.AddItem(Item{ID: "p1-quantity", Price: dec("12.50"), Quantity: dec("2"), Subtotal: dec("25")})
	c.AddItem(Item{ID: "p2-value", Price: dec("10"), OrderType: ByValue, Quantity: dec("1.5"), RequestedValue: ptr(dec("15")), Subtotal: dec("15")})
	c.AddItem(Item{ID: "p1-quantity", Price: dec("12.50"), Quantity: dec("0.5"), Subtotal: dec("6.25")})
	c.AddItem(Item{ID: "p2-value", Price: dec("10"), OrderType: ByValue, Quantity: dec("0.5"), RequestedValue: ptr(dec("5")), Subtotal: dec("5")})

	require.Len(t, c.Items, 2)
	assert.Equal(t, "2.5", c.Items[0].Quantity.String())
	assert.Equal(t, "31.25", c.Items[0].Subtotal.String())
	assert.Equal(t, "2", c.Items[1].Quantity.String())
	assert.Equal(t, "20", c.Items[1].Subtotal.String())
	assert.Equal(t, "20", c.Items[1].RequestedValue.String())

	assert.Equal(t, "51.25", c.Total().String())
	assert.Equal(t, "4.5", c.ItemsCount().String())
}

func TestUpdateQuantityRecomputesSubtotal(t *testing.T) {
	c := Cart{Items: []Item{
		{ID: "a", Price: dec("12.50"), OrderType: ByQuantity, Quantity: dec("1"), Subtotal: dec("12.5")},
		{ID: "b", Price: dec("10"), OrderType: ByValue, Quantity: dec("1"), RequestedValue: ptr(dec("10")), Subtotal: dec("10")},
	}}

	require.NoError(t, c.UpdateQuantity("a", dec("3")))
	assert.Equal(t, "37.5", c.Items[0].Subtotal.String())

	require.NoError(t, c.UpdateQuantity("b", dec("2.5")))
	assert.Equal(t, "25", c.Items[1].Subtotal.String())
	assert.Equal(t, "25", c.Items[1].RequestedValue.String())

	assert.Equal(t, "62.5", c.Total().String())

	assert.ErrorIs(t, c.UpdateQuantity("a", decimal.Zero), ErrInvalidQuantity)
	assert.ErrorIs(t, c.UpdateQuantity("zzz", dec("1")), ErrItemNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	c := Cart{Items: []Item{{ID: "a", Subtotal: dec("1")}, {ID: "b", Subtotal: dec("2")}}}
	require.NoError(t, c.RemoveItem("a"))
	assert.ErrorIs(t, c.RemoveItem("a"), ErrItemNotFound)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "2", c.Total().String())

	c.Clear()
	assert.Empty(t, c.Items)
	assert.True(t, c.Total().IsZero())
	assert.True(t, c.ItemsCount().IsZero())
}
