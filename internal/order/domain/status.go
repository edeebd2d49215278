package domain

import (
	"errors"
	"fmt"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// lifecycle is the forward path; cancelled sits outside it.
var lifecycle = []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered}

var labels = map[OrderStatus]string{
	StatusPending:        "Aguardando Confirmação",
	StatusConfirmed:      "Pedido Confirmado",
	StatusPreparing:      "Preparando Pedido",
	StatusOutForDelivery: "Saiu para Entrega",
	StatusDelivered:      "Entregue",
	StatusCancelled:      "Cancelado",
}

func (s OrderStatus) Valid() bool {
	_, ok := labels[s]
	return ok
}

func (s OrderStatus) Label() string { return labels[s] }

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) rank() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// CanTransition allows moving forward along the lifecycle (skipping steps
// is fine) and cancelling any order that is not finished.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if !to.Valid() || s.Terminal() || s == to {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return to.rank() > s.rank()
}

func ParseStatus(v string) (OrderStatus, error) {
	s := OrderStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

type TimelineStep struct {
	Status OrderStatus `json:"status"`
	Label  string      `json:"label"`
	Active bool        `json:"active"`
}

var stepLabels = map[OrderStatus]string{
	StatusPending:        "Recebido",
	StatusConfirmed:      "Confirmado",
	StatusPreparing:      "Preparando",
	StatusOutForDelivery: "A Caminho",
	StatusDelivered:      "Entregue",
}

// Timeline lists the lifecycle steps with the ones already reached
// marked active. A cancelled order only shows the received step.
func Timeline(current OrderStatus) []TimelineStep {
	steps := make([]TimelineStep, 0, len(lifecycle))
	reached := current.rank()
	for i, st := range lifecycle {
		steps = append(steps, TimelineStep{
			Status: st,
			Label:  stepLabels[st],
			Active: i == 0 || i <= reached,
		})
	}
	return steps
}
