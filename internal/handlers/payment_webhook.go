package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/events"
	"backend/internal/notify"
	"backend/internal/orders"
	"backend/internal/payments"
)

// PaymentNotify handles the gateway's asynchronous payment notification.
//
// The gateway delivers at least once, in no guaranteed order, so the whole
// handler is built to be safely re-runnable: the only state change is the
// conditional MarkPaid write, and notifications fire only on the call that
// actually performed the edge into paid. The gateway gets a success
// acknowledgment for every durably processed payload, including no-ops,
// so it stops retrying; only malformed input or a store failure earns an
// error status.
func PaymentNotify(store orders.Store, dispatcher *notify.Dispatcher, producer *events.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/notify"
		defer handlePanic(c, route)

		if err := c.Request.ParseForm(); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "malformed payload")
			return
		}

		notification, err := payments.ParseNotification(c.Request.PostForm)
		if errors.Is(err, payments.ErrMissingReference) {
			// Unmatchable, not "payment failed". Reject so the gateway's
			// retry policy can decide; no order is touched.
			respondWithError(c, http.StatusBadRequest, route, "missing order reference")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := store.GetByReference(ctx, notification.OrderReference)
		if errors.Is(err, orders.ErrNotFound) {
			// Never create an order from a webhook.
			respondWithError(c, http.StatusNotFound, route, "unknown order reference")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !notification.Succeeded() {
			// A valid outcome, not an error. The order keeps its status so
			// a later valid notification, or a human, can complete it.
			log.Printf("[%s] non-success status %q for order %s, leaving status %s",
				route, notification.PaymentStatus, order.Reference, order.Status)
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}

		transitioned, err := store.MarkPaid(ctx, notification.OrderReference, notification.GatewayPaymentID)
		if err != nil {
			// Transient store failure: error out so the gateway redelivers;
			// the conditional write makes the retry safe.
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if transitioned {
			log.Printf("[%s] order %s paid (gateway payment %s)", route, order.Reference, notification.GatewayPaymentID)
			producer.Publish(events.OrderEvent{
				Type:      events.TypeOrderPaid,
				OrderID:   order.ID.Hex(),
				Reference: order.Reference,
				Status:    "paid",
			})
			go notifyPaid(route, dispatcher, store, order.Reference)
		} else {
			log.Printf("[%s] duplicate notification for order %s ignored", route, order.Reference)
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// notifyPaid sends the receipt and fulfilment alert for a freshly paid
// order. Runs off the request path: the paid transition is already durable
// and a mail failure must not delay or fail the gateway acknowledgment.
func notifyPaid(route string, dispatcher *notify.Dispatcher, store orders.Store, reference string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	order, err := store.GetByReference(ctx, reference)
	if err != nil {
		log.Printf("[%s] reload of %s for notifications failed: %v", route, reference, err)
		return
	}

	if err := dispatcher.SendReceipt(ctx, order); err != nil {
		log.Printf("[%s] receipt for %s failed: %v", route, reference, err)
	}
	if err := dispatcher.SendFulfilmentAlert(ctx, order); err != nil {
		log.Printf("[%s] fulfilment alert for %s failed: %v", route, reference, err)
	}
}
