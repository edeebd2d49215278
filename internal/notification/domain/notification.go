package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	order "github.com/dmehra2102/doglivery/internal/order/domain"
)

type Channel string

const ChannelWhatsApp Channel = "whatsapp"

const brazilCode = "55"

type Notification struct {
	ID        int64     `json:"id"`
	OrderID   string    `json:"order_id"`
	EventType string    `json:"event_type"`
	Phone     string    `json:"phone"`
	Channel   Channel   `json:"channel"`
	Message   string    `json:"message"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
}

// WhatsAppLink builds a wa.me deep link. Local numbers (10 or 11
// digits) get the Brazilian country code.
func WhatsAppLink(phone, message string) string {
	digits := order.PhoneDigits(phone)
	if len(digits) == 10 || len(digits) == 11 {
		digits = brazilCode + digits
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message)
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "cliente"
}

func build(orderID, eventType, phone, message string, now time.Time) Notification {
	return Notification{
		OrderID:   orderID,
		EventType: eventType,
		Phone:     order.PhoneDigits(phone),
		Channel:   ChannelWhatsApp,
		Message:   message,
		Link:      WhatsAppLink(phone, message),
		CreatedAt: now,
	}
}

func ForOrderCreated(ev order.OrderCreated, now time.Time) Notification {
	msg := fmt.Sprintf("Olá %s! Recebemos seu pedido %s no valor de R$ %s. Pagamento: %s.",
		firstName(ev.CustomerName), ev.OrderNumber, ev.Total.StringFixed(2), paymentLabel(ev.PaymentMethod))
	return build(ev.OrderID, order.EventOrderCreated, ev.CustomerPhone, msg, now)
}

func ForStatusChanged(ev order.OrderStatusChanged, now time.Time) Notification {
	msg := fmt.Sprintf("Olá %s! Seu pedido %s: %s.", firstName(ev.CustomerName), ev.OrderNumber, ev.To.Label())
	return build(ev.OrderID, order.EventOrderStatusChanged, ev.CustomerPhone, msg, now)
}

func paymentLabel(m order.PaymentMethod) string {
	switch m {
	case order.PaymentPix:
		return "PIX"
	case order.PaymentMoney:
		return "dinheiro"
	case order.PaymentCard:
		return "cartão na entrega"
	case order.PaymentMercadoPago:
		return "Mercado Pago"
	}
	return string(m)
}
