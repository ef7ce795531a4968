package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
	"backend/internal/notify"
)

func newAdminOrderRouter(store *fakeOrderStore, mailer *fakeMailer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	dispatcher := notify.NewDispatcher(mailer, "orders@business.example")
	r.PUT("/admin/api/orders/:id/status", UpdateOrderStatus(store, dispatcher, nil))
	r.POST("/admin/api/orders/:id/notify", SendOrderEmail(store, dispatcher))
	return r
}

func paidOrder() *models.Order {
	now := time.Now()
	order := pendingToteBagOrder()
	order.Status = models.OrderStatusPaid
	order.PaidAt = &now
	return order
}

func putJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("PUT", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateOrderStatusAlongFulfilmentChain(t *testing.T) {
	order := paidOrder()
	store := newFakeOrderStore(order)
	mailer := &fakeMailer{}
	r := newAdminOrderRouter(store, mailer)

	path := fmt.Sprintf("/admin/api/orders/%s/status", order.ID.Hex())

	w := putJSON(r, path, `{"status":"processing"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	got, _ := store.GetByID(nil, order.ID)
	if got.Status != models.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", got.Status)
	}
	if len(mailer.messages()) != 0 {
		t.Fatal("status change without subject/body must not send e-mail")
	}
}

func TestUpdateOrderStatusWithComposedEmail(t *testing.T) {
	order := paidOrder()
	order.Status = models.OrderStatusProcessing
	store := newFakeOrderStore(order)
	mailer := &fakeMailer{}
	r := newAdminOrderRouter(store, mailer)

	path := fmt.Sprintf("/admin/api/orders/%s/status", order.ID.Hex())
	w := putJSON(r, path, `{"status":"shipped","subject":"Shipped!","body":"Your parcel is on the way."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	msgs := mailer.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 e-mail, got %d", len(msgs))
	}
	if msgs[0].To != "jo@example.com" || msgs[0].Subject != "Shipped!" {
		t.Fatalf("unexpected message %+v", msgs[0])
	}
}

func TestUpdateOrderStatusRejectsIllegalTransition(t *testing.T) {
	order := pendingToteBagOrder()
	store := newFakeOrderStore(order)
	r := newAdminOrderRouter(store, &fakeMailer{})

	path := fmt.Sprintf("/admin/api/orders/%s/status", order.ID.Hex())
	w := putJSON(r, path, `{"status":"shipped"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for pending -> shipped, got %d", w.Code)
	}

	got, _ := store.GetByID(nil, order.ID)
	if got.Status != models.OrderStatusPending {
		t.Fatalf("illegal transition must not change status, got %s", got.Status)
	}
}

func TestUpdateOrderStatusRefusesManualPaid(t *testing.T) {
	order := pendingToteBagOrder()
	store := newFakeOrderStore(order)
	r := newAdminOrderRouter(store, &fakeMailer{})

	path := fmt.Sprintf("/admin/api/orders/%s/status", order.ID.Hex())
	w := putJSON(r, path, `{"status":"paid"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for manual paid, got %d", w.Code)
	}
}

func TestUpdateOrderStatusEmailFailureKeepsChange(t *testing.T) {
	order := paidOrder()
	store := newFakeOrderStore(order)
	mailer := &fakeMailer{err: errMailDown}
	r := newAdminOrderRouter(store, mailer)

	path := fmt.Sprintf("/admin/api/orders/%s/status", order.ID.Hex())
	w := putJSON(r, path, `{"status":"processing","subject":"Update","body":"In progress."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite mail failure, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "emailError") {
		t.Fatalf("expected emailError in response, got %s", w.Body.String())
	}

	got, _ := store.GetByID(nil, order.ID)
	if got.Status != models.OrderStatusProcessing {
		t.Fatalf("status change must stand despite mail failure, got %s", got.Status)
	}
}

func TestSendOrderEmailHasNoStatusSideEffect(t *testing.T) {
	order := paidOrder()
	store := newFakeOrderStore(order)
	mailer := &fakeMailer{}
	r := newAdminOrderRouter(store, mailer)

	path := fmt.Sprintf("/admin/api/orders/%s/notify", order.ID.Hex())
	req := httptest.NewRequest("POST", path, strings.NewReader(`{"subject":"Hello","body":"Just checking in."}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if len(mailer.messages()) != 1 {
		t.Fatalf("expected 1 e-mail, got %d", len(mailer.messages()))
	}

	got, _ := store.GetByID(nil, order.ID)
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("manual e-mail must not change status, got %s", got.Status)
	}
}
