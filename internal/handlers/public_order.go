package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/cart"
	"backend/internal/events"
	"backend/internal/models"
	"backend/internal/notify"
	"backend/internal/orders"
	"backend/internal/payments"
)

/* =========================
   REQUEST DTOs
========================= */

type checkoutItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type checkoutCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type checkoutRequest struct {
	Items           []checkoutItemRequest   `json:"items" binding:"required"`
	Customer        checkoutCustomerRequest `json:"customer" binding:"required"`
	DeliveryType    string                  `json:"deliveryType" binding:"required"`
	DeliveryAddress string                  `json:"deliveryAddress"`
	PaymentMethod   string                  `json:"paymentMethod" binding:"required"`
}

/* =========================
   CHECKOUT
========================= */

// Checkout snapshots the cart into an order. Every line is re-priced through
// the pricer; the client's cart prices are display hints and nothing more.
// Gateway orders get a redirect payload and move to awaiting_payment;
// bank-transfer orders stay pending for the business to reconcile the
// deposit by hand.
func Checkout(
	pricer ItemPricer,
	store orders.Store,
	dispatcher *notify.Dispatcher,
	producer *events.Producer,
	gatewayCfg payments.RedirectConfig,
	deliveryFee float64,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if err := validateCheckoutRequest(req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		priced, subtotal, err := pricer.PriceItems(ctx, req.Items)
		if err != nil {
			var notFound shopItemNotFoundError
			switch {
			case errors.Is(err, errDBUnavailable):
				respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			case errors.Is(err, errInvalidProductID):
				respondWithError(c, http.StatusBadRequest, route, errInvalidProductID.Error())
			case errors.As(err, &notFound):
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "shop item not found",
					"productId": notFound.ProductID.Hex(),
				})
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		// The order keeps its own copy of the priced lines; nothing the
		// caller (or pricer) does to its slices afterwards reaches the
		// stored snapshot.
		items := make([]models.OrderItem, len(priced))
		copy(items, priced)

		fee := 0.0
		if req.DeliveryType == models.DeliveryTypeDelivery {
			fee = deliveryFee
		}

		order := &models.Order{
			Reference: uuid.NewString(),
			Customer: models.OrderCustomer{
				Name:  strings.TrimSpace(req.Customer.Name),
				Email: strings.ToLower(strings.TrimSpace(req.Customer.Email)),
				Phone: strings.TrimSpace(req.Customer.Phone),
			},
			Items:           items,
			DeliveryFee:     fee,
			TotalPrice:      cart.Round2(subtotal + fee),
			DeliveryType:    req.DeliveryType,
			DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
			PaymentMethod:   req.PaymentMethod,
			Status:          models.OrderStatusPending,
			CreatedAt:       time.Now(),
		}

		if err := store.Create(ctx, order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] order %s created, total %.2f, payment %s", route, order.Reference, order.TotalPrice, order.PaymentMethod)
		producer.Publish(events.OrderEvent{
			Type:      events.TypeOrderCreated,
			OrderID:   order.ID.Hex(),
			Reference: order.Reference,
			Status:    order.Status.String(),
		})

		response := gin.H{
			"orderId":   order.ID.Hex(),
			"reference": order.Reference,
			"total":     order.TotalPrice,
			"status":    order.Status,
		}

		switch order.PaymentMethod {
		case models.PaymentMethodGateway:
			if err := store.UpdateStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusAwaitingPayment); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			response["status"] = models.OrderStatusAwaitingPayment
			response["redirect"] = payments.BuildRedirect(
				gatewayCfg,
				order.Reference,
				order.Customer.Name,
				order.Customer.Email,
				order.TotalPrice,
			)
		case models.PaymentMethodBankTransfer:
			// The deposit arrives out of band; alert the business now so
			// someone watches the bank account for this reference.
			go func(o models.Order) {
				alertCtx, alertCancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer alertCancel()
				if err := dispatcher.SendFulfilmentAlert(alertCtx, &o); err != nil {
					log.Printf("[%s] fulfilment alert for %s failed: %v", route, o.Reference, err)
				}
			}(*order)
		}

		c.JSON(http.StatusCreated, response)
	}
}

// GetOrderByReference serves the confirmation page's read. The reference is
// unguessable, which is the only access control an anonymous shopper has.
func GetOrderByReference(store orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := store.GetByReference(ctx, c.Param("reference"))
		if err == orders.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func validateCheckoutRequest(req checkoutRequest) error {
	if len(req.Items) == 0 {
		return errors.New("at least one item is required")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return errors.New("quantity must be at least 1")
		}
		if _, err := primitive.ObjectIDFromHex(item.ProductID); err != nil {
			return errInvalidProductID
		}
	}

	switch req.DeliveryType {
	case models.DeliveryTypePickup, models.DeliveryTypeDigital:
	case models.DeliveryTypeDelivery:
		if strings.TrimSpace(req.DeliveryAddress) == "" {
			return errors.New("delivery address is required for delivery orders")
		}
	default:
		return errors.New("invalid delivery type")
	}

	if req.PaymentMethod != models.PaymentMethodGateway && req.PaymentMethod != models.PaymentMethodBankTransfer {
		return errors.New("invalid payment method")
	}
	return nil
}
