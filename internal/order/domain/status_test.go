package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusPreparing, true},
		{StatusConfirmed, StatusPreparing, true},
		{StatusPreparing, StatusOutForDelivery, true},
		{StatusOutForDelivery, StatusDelivered, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusPending, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, "shipped", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTransition(t *testing.T) {
	o := Order{Status: StatusPending}
	later := time.Now()
	require.NoError(t, o.Transition(StatusConfirmed, later))
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, later, o.UpdatedAt)

	assert.ErrorIs(t, o.Transition(StatusPending, later), ErrInvalidTransition)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, "Saiu para Entrega", s.Label())

	_, err = ParseStatus("lost")
	assert.Error(t, err)
}

func TestTimeline(t *testing.T) {
	active := func(steps []TimelineStep) int {
		n := 0
		for _, s := range steps {
			if s.Active {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 1, active(Timeline(StatusPending)))
	assert.Equal(t, 3, active(Timeline(StatusPreparing)))
	assert.Equal(t, 5, active(Timeline(StatusDelivered)))
	assert.Equal(t, 1, active(Timeline(StatusCancelled)))
	assert.Equal(t, "Recebido", Timeline(StatusPending)[0].Label)
}
