package payments

import "fmt"

// RedirectConfig holds the merchant settings baked into every gateway
// redirect.
type RedirectConfig struct {
	ProcessURL  string
	MerchantID  string
	MerchantKey string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// Redirect is the payload the storefront posts the customer to the gateway
// with. Fields mirror the gateway's process form; m_payment_id carries the
// order reference so the notification can be matched back.
type Redirect struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// BuildRedirect assembles the gateway redirect for an order.
func BuildRedirect(cfg RedirectConfig, orderReference, customerName, customerEmail string, amount float64) Redirect {
	return Redirect{
		URL: cfg.ProcessURL,
		Fields: map[string]string{
			"merchant_id":   cfg.MerchantID,
			"merchant_key":  cfg.MerchantKey,
			"return_url":    cfg.ReturnURL,
			"cancel_url":    cfg.CancelURL,
			"notify_url":    cfg.NotifyURL,
			"name_first":    customerName,
			"email_address": customerEmail,
			"m_payment_id":  orderReference,
			"amount":        fmt.Sprintf("%.2f", amount),
			"item_name":     fmt.Sprintf("Order %s", orderReference),
		},
	}
}
