// Package cart models the anonymous session cart. The cart lives in the
// client's local storage and is never trusted by the server: checkout
// re-prices every line from the shop items collection. What this package
// owns is the shared shape and the arithmetic both sides agree on.
package cart

import (
	"math"

	"github.com/google/uuid"
)

// Item is one cart line. UnitPrice and Name are denormalized at add time for
// display only; they carry no authority at checkout.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// Cart is an ordered list of items keyed by a session identifier.
type Cart struct {
	SessionID string `json:"sessionId"`
	Items     []Item `json:"items"`
}

// NewSessionID returns an identifier unpredictable enough to avoid collisions.
// It is not an authorization token; cart contents are not sensitive.
func NewSessionID() string {
	return uuid.NewString()
}

func New() *Cart {
	return &Cart{SessionID: NewSessionID()}
}

// Add merges an item into the cart. Adding a product already present bumps
// its quantity instead of duplicating the line.
func (c *Cart) Add(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity updates a line quantity, clamped to a floor of 1. Unknown
// product ids are ignored.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

// Remove drops a line from the cart.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Subtotal sums price times quantity over all lines, rounded to two decimals.
// Display-time rounding only; canonical totals are recomputed at checkout.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return Round2(sum)
}

// Round2 rounds a currency amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
