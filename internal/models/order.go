package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusDelivered       OrderStatus = "delivered"
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAwaitingPayment, OrderStatusPaid,
		OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// orderTransitions lists, per status, the statuses an order may move to.
// There is deliberately no cancelled/refunded edge and no way back out of
// delivered; adding one is a product decision.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:         {OrderStatusAwaitingPayment, OrderStatusPaid},
	OrderStatusAwaitingPayment: {OrderStatusPaid},
	OrderStatusPaid:            {OrderStatusProcessing},
	OrderStatusProcessing:      {OrderStatusShipped},
	OrderStatusShipped:         {OrderStatusDelivered},
	OrderStatusDelivered:       {},
}

// CanTransition reports whether an order may move from one status to another.
// Re-applying the current status is not a transition.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// PayableStatuses returns the statuses from which a payment notification may
// move an order to paid. The order store uses this to build the conditional
// filter that makes the paid transition idempotent under webhook retries.
func PayableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusAwaitingPayment}
}

const (
	DeliveryTypePickup   = "pickup"
	DeliveryTypeDelivery = "delivery"
	DeliveryTypeDigital  = "digital"

	PaymentMethodGateway      = "gateway"
	PaymentMethodBankTransfer = "bank-transfer"
)

// OrderItem is a snapshot of a cart line taken at checkout. Prices come from
// the shop items collection, never from the client cart.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

// OrderCustomer holds the contact details captured at checkout.
type OrderCustomer struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Order is the persisted order document. Reference is the opaque identifier
// handed to the payment gateway at redirect time and echoed back in its
// notification. TotalPrice is fixed at creation; only status and fulfilment
// metadata change afterwards.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference        string             `bson:"reference" json:"reference"`
	Customer         OrderCustomer      `bson:"customer" json:"customer"`
	Items            []OrderItem        `bson:"items" json:"items"`
	DeliveryFee      float64            `bson:"deliveryFee" json:"deliveryFee"`
	TotalPrice       float64            `bson:"totalPrice" json:"totalPrice"`
	DeliveryType     string             `bson:"deliveryType" json:"deliveryType"`
	DeliveryAddress  string             `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	PaymentMethod    string             `bson:"paymentMethod" json:"paymentMethod"`
	Status           OrderStatus        `bson:"status" json:"status"`
	GatewayPaymentID string             `bson:"gatewayPaymentId,omitempty" json:"gatewayPaymentId,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	PaidAt           *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}
