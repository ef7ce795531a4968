package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/events"
	"backend/internal/models"
	"backend/internal/notify"
	"backend/internal/orders"
)

/*
GET /admin/api/orders
- newest first, optional ?status= filter, optional pagination
*/
func GetAdminOrders(store orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := orders.ListFilter{}

		if status := strings.TrimSpace(c.Query("status")); status != "" {
			s := models.OrderStatus(status)
			if !s.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			filter.Status = s
		}

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		if pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination params"})
				return
			}
			filter.Page = page
			filter.Limit = limit
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, total, err := store.List(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":  result,
			"total": total,
		})
	}
}

/*
GET /admin/api/orders/:id
*/
func GetAdminOrder(store orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := store.GetByID(ctx, orderID)
		if errors.Is(err, orders.ErrNotFound) {
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

type updateOrderStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

/*
PUT /admin/api/orders/:id/status
  - moves an order along the fulfilment chain (paid -> processing -> shipped
    -> delivered); the webhook owns the edge into paid
  - optional subject+body sends an admin-composed e-mail after the change;
    a mail failure is reported but the status change stands
*/
func UpdateOrderStatus(store orders.Store, dispatcher *notify.Dispatcher, producer *events.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		target := models.OrderStatus(req.Status)
		if !target.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		if target == models.OrderStatusPaid {
			// Payment confirmation comes from the gateway, not a person.
			c.JSON(http.StatusBadRequest, gin.H{"error": "paid is set by payment confirmation"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := store.GetByID(ctx, orderID)
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if !models.CanTransition(order.Status, target) {
			c.JSON(http.StatusConflict, gin.H{
				"error":  "illegal status transition",
				"from":   order.Status,
				"status": target,
			})
			return
		}

		err = store.UpdateStatus(ctx, orderID, order.Status, target)
		if errors.Is(err, orders.ErrStatusConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "order status changed concurrently"})
			return
		}
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Printf("[%s] order %s moved %s -> %s", route, order.Reference, order.Status, target)
		producer.Publish(events.OrderEvent{
			Type:      events.TypeOrderStatusChanged,
			OrderID:   order.ID.Hex(),
			Reference: order.Reference,
			Status:    target.String(),
		})

		response := gin.H{"status": target}

		subject := strings.TrimSpace(req.Subject)
		body := strings.TrimSpace(req.Body)
		if subject != "" && body != "" {
			if err := dispatcher.SendStatusUpdate(ctx, order, subject, body); err != nil {
				log.Printf("[%s] status e-mail for %s failed: %v", route, order.Reference, err)
				response["emailError"] = "status e-mail could not be sent"
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

type orderNotifyRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

/*
POST /admin/api/orders/:id/notify
- free-text e-mail to the order's customer; no status side effect
*/
func SendOrderEmail(store orders.Store, dispatcher *notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/notify"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req orderNotifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subject and body are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := store.GetByID(ctx, orderID)
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if err := dispatcher.SendStatusUpdate(ctx, order, req.Subject, req.Body); err != nil {
			log.Printf("[%s] e-mail for %s failed: %v", route, order.Reference, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "e-mail could not be sent"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "e-mail sent"})
	}
}

/*
DELETE /admin/api/orders/:id
*/
func DeleteOrder(store orders.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = store.Delete(ctx, orderID)
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
