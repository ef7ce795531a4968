// Package notify composes and sends the order lifecycle e-mails: the
// customer receipt and business fulfilment alert on the paid edge, and
// admin-composed status updates. Composition is pure; transmission is
// best-effort and never feeds back into order state.
package notify

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/cart"
	"backend/internal/models"
)

// Dispatcher fans one committed transition out to the affected parties. The
// caller is responsible for invoking it at most once per transition; the
// webhook handler only calls it on the actual edge into paid.
type Dispatcher struct {
	mailer      Mailer
	ordersEmail string // business inbox for fulfilment alerts
}

func NewDispatcher(mailer Mailer, ordersEmail string) *Dispatcher {
	return &Dispatcher{mailer: mailer, ordersEmail: ordersEmail}
}

// SendReceipt mails the itemized receipt to the customer.
func (d *Dispatcher) SendReceipt(ctx context.Context, order *models.Order) error {
	return d.mailer.Send(ctx, Message{
		To:      order.Customer.Email,
		Subject: fmt.Sprintf("Order %s confirmed", order.Reference),
		Body:    ReceiptBody(order),
	})
}

// SendFulfilmentAlert tells the business an order needs fulfilment.
func (d *Dispatcher) SendFulfilmentAlert(ctx context.Context, order *models.Order) error {
	if d.ordersEmail == "" {
		return nil
	}
	return d.mailer.Send(ctx, Message{
		To:      d.ordersEmail,
		Subject: fmt.Sprintf("New order %s (%s)", order.Reference, order.PaymentMethod),
		Body:    FulfilmentBody(order),
	})
}

// SendStatusUpdate mails an admin-composed free-text message to the
// customer. Nothing is templated and no status is changed here.
func (d *Dispatcher) SendStatusUpdate(ctx context.Context, order *models.Order, subject, body string) error {
	return d.mailer.Send(ctx, Message{
		To:      order.Customer.Email,
		Subject: subject,
		Body:    body,
	})
}

// PaymentMethodLabel renders the stored payment method for humans.
func PaymentMethodLabel(method string) string {
	switch method {
	case models.PaymentMethodGateway:
		return "Online payment"
	case models.PaymentMethodBankTransfer:
		return "Bank transfer (EFT)"
	default:
		return method
	}
}

// ReceiptBody renders the customer receipt: every line with its quantity,
// unit price and line total, then subtotal, delivery fee when nonzero, and
// the grand total.
func ReceiptBody(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", order.Customer.Name)
	fmt.Fprintf(&b, "Thank you for your order. Your reference is %s.\n\n", order.Reference)

	var subtotal float64
	for _, item := range order.Items {
		lineTotal := cart.Round2(item.Price * float64(item.Quantity))
		subtotal += lineTotal
		fmt.Fprintf(&b, "  %s x%d @ R%.2f = R%.2f\n", item.Name, item.Quantity, item.Price, lineTotal)
	}
	fmt.Fprintf(&b, "\nSubtotal: R%.2f\n", cart.Round2(subtotal))
	if order.DeliveryFee > 0 {
		fmt.Fprintf(&b, "Delivery fee: R%.2f\n", order.DeliveryFee)
	}
	fmt.Fprintf(&b, "Total: R%.2f\n\n", order.TotalPrice)

	fmt.Fprintf(&b, "Delivery: %s\n", order.DeliveryType)
	if order.DeliveryType == models.DeliveryTypeDelivery && order.DeliveryAddress != "" {
		fmt.Fprintf(&b, "Address: %s\n", order.DeliveryAddress)
	}
	fmt.Fprintf(&b, "Payment method: %s\n", PaymentMethodLabel(order.PaymentMethod))

	return b.String()
}

// FulfilmentBody renders the alert sent to the business inbox.
func FulfilmentBody(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order %s needs fulfilment.\n\n", order.Reference)
	fmt.Fprintf(&b, "Customer: %s <%s>", order.Customer.Name, order.Customer.Email)
	if order.Customer.Phone != "" {
		fmt.Fprintf(&b, " (%s)", order.Customer.Phone)
	}
	b.WriteString("\n\n")

	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s x%d\n", item.Name, item.Quantity)
	}
	fmt.Fprintf(&b, "\nTotal: R%.2f\n", order.TotalPrice)
	fmt.Fprintf(&b, "Delivery: %s\n", order.DeliveryType)
	if order.DeliveryAddress != "" {
		fmt.Fprintf(&b, "Address: %s\n", order.DeliveryAddress)
	}
	fmt.Fprintf(&b, "Payment method: %s\n", PaymentMethodLabel(order.PaymentMethod))

	return b.String()
}
