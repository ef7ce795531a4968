// Package payments types the payment gateway's asynchronous notification.
// The payload is untrusted form-encoded input; it is parsed into a typed
// value here and business logic never reads raw form fields.
package payments

import (
	"errors"
	"net/url"
	"strings"
)

// Gateway field names. The gateway echoes m_payment_id, the order reference
// generated at checkout and sent along with the redirect.
const (
	fieldOrderReference   = "m_payment_id"
	fieldPaymentStatus    = "payment_status"
	fieldGatewayPaymentID = "pf_payment_id"
	fieldAmountGross      = "amount_gross"
)

// SuccessToken is the one payment_status value that confirms a completed
// payment. Anything else, including absence, is non-success.
const SuccessToken = "COMPLETE"

var ErrMissingReference = errors.New("notification is missing the order reference")

// Notification is a validated inbound gateway notification. Gateway fields
// not interpreted by the order lifecycle are dropped at parse time.
type Notification struct {
	OrderReference   string
	PaymentStatus    string
	GatewayPaymentID string
	AmountGross      string
}

// ParseNotification extracts the typed notification from a form-encoded
// payload. A missing order reference is a parse failure: the notification
// cannot be matched to an order, which is not the same as a failed payment.
func ParseNotification(values url.Values) (Notification, error) {
	reference := strings.TrimSpace(values.Get(fieldOrderReference))
	if reference == "" {
		return Notification{}, ErrMissingReference
	}

	return Notification{
		OrderReference:   reference,
		PaymentStatus:    strings.TrimSpace(values.Get(fieldPaymentStatus)),
		GatewayPaymentID: strings.TrimSpace(values.Get(fieldGatewayPaymentID)),
		AmountGross:      strings.TrimSpace(values.Get(fieldAmountGross)),
	}, nil
}

// Succeeded reports whether the notification confirms payment. Exact match
// only: a malformed or unexpected status must never transition an order.
func (n Notification) Succeeded() bool {
	return n.PaymentStatus == SuccessToken
}
