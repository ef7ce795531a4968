package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

type fakeMailer struct {
	sent []Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func sampleOrder() *models.Order {
	return &models.Order{
		Reference: "ref-123",
		Customer: models.OrderCustomer{
			Name:  "Jo Customer",
			Email: "jo@example.com",
			Phone: "0821234567",
		},
		Items: []models.OrderItem{
			{Name: "Tote Bag", Price: 150, Quantity: 2},
			{Name: "Mug", Price: 80, Quantity: 1},
		},
		DeliveryFee:     50,
		TotalPrice:      430,
		DeliveryType:    models.DeliveryTypeDelivery,
		DeliveryAddress: "12 Main Rd, Cape Town",
		PaymentMethod:   models.PaymentMethodGateway,
	}
}

func TestReceiptBodyItemizesLines(t *testing.T) {
	body := ReceiptBody(sampleOrder())

	require.Contains(t, body, "Tote Bag x2 @ R150.00 = R300.00")
	require.Contains(t, body, "Mug x1 @ R80.00 = R80.00")
	require.Contains(t, body, "Subtotal: R380.00")
	require.Contains(t, body, "Delivery fee: R50.00")
	require.Contains(t, body, "Total: R430.00")
	require.Contains(t, body, "Address: 12 Main Rd, Cape Town")
	require.Contains(t, body, "Payment method: Online payment")
}

func TestReceiptBodyOmitsZeroDeliveryFee(t *testing.T) {
	order := sampleOrder()
	order.DeliveryFee = 0
	order.TotalPrice = 380
	order.DeliveryType = models.DeliveryTypePickup
	order.DeliveryAddress = ""

	body := ReceiptBody(order)
	require.NotContains(t, body, "Delivery fee")
	require.NotContains(t, body, "Address:")
	require.Contains(t, body, "Total: R380.00")
}

func TestSendReceiptAndAlertAddressing(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, "orders@example.com")
	order := sampleOrder()

	require.NoError(t, d.SendReceipt(context.Background(), order))
	require.NoError(t, d.SendFulfilmentAlert(context.Background(), order))

	require.Len(t, mailer.sent, 2)
	require.Equal(t, "jo@example.com", mailer.sent[0].To)
	require.Equal(t, "orders@example.com", mailer.sent[1].To)
	require.Contains(t, mailer.sent[1].Body, "0821234567")
}

func TestSendFulfilmentAlertSkippedWithoutBusinessInbox(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, "")

	require.NoError(t, d.SendFulfilmentAlert(context.Background(), sampleOrder()))
	require.Empty(t, mailer.sent)
}

func TestSendStatusUpdateUsesAdminText(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, "orders@example.com")

	err := d.SendStatusUpdate(context.Background(), sampleOrder(), "On its way", "Courier picked it up today.")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "On its way", mailer.sent[0].Subject)
	require.Equal(t, "Courier picked it up today.", mailer.sent[0].Body)
}

func TestTransportFailureSurfacesAsError(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("relay down")}
	d := NewDispatcher(mailer, "orders@example.com")

	err := d.SendReceipt(context.Background(), sampleOrder())
	require.Error(t, err)
}
