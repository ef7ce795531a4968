package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
	"backend/internal/notify"
)

func newWebhookRouter(store *fakeOrderStore, mailer *fakeMailer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	dispatcher := notify.NewDispatcher(mailer, "orders@business.example")
	r.POST("/payments/notify", PaymentNotify(store, dispatcher, nil))
	return r
}

func postNotification(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/payments/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func waitForMessages(t *testing.T, mailer *fakeMailer, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(mailer.messages()) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d messages, got %d", want, len(mailer.messages()))
}

func pendingToteBagOrder() *models.Order {
	return &models.Order{
		Reference: "ref-tote",
		Customer: models.OrderCustomer{
			Name:  "Jo Customer",
			Email: "jo@example.com",
		},
		Items: []models.OrderItem{
			{Name: "Tote Bag", Price: 150, Quantity: 2},
			{Name: "Mug", Price: 80, Quantity: 1},
		},
		TotalPrice:    380,
		DeliveryType:  models.DeliveryTypePickup,
		PaymentMethod: models.PaymentMethodGateway,
		Status:        models.OrderStatusPending,
		CreatedAt:     time.Now(),
	}
}

func TestPaymentNotifyDuplicateDeliveryIsIdempotent(t *testing.T) {
	order := pendingToteBagOrder()
	store := newFakeOrderStore(order)
	mailer := &fakeMailer{}
	r := newWebhookRouter(store, mailer)

	form := url.Values{}
	form.Set("m_payment_id", "ref-tote")
	form.Set("payment_status", "COMPLETE")
	form.Set("pf_payment_id", "pf-1")

	w := postNotification(r, form)
	if w.Code != http.StatusOK {
		t.Fatalf("first delivery: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	got, err := store.GetByReference(nil, "ref-tote")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("expected status paid after first delivery, got %s", got.Status)
	}
	if got.PaidAt == nil {
		t.Fatal("paid order must have paidAt set")
	}
	if got.GatewayPaymentID != "pf-1" {
		t.Fatalf("expected gateway payment id recorded, got %q", got.GatewayPaymentID)
	}

	// receipt + fulfilment alert, dispatched off the request path
	waitForMessages(t, mailer, 2)

	// second delivery of the same notification
	w = postNotification(r, form)
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate delivery: expected 200, got %d", w.Code)
	}

	got, _ = store.GetByReference(nil, "ref-tote")
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("duplicate delivery changed status to %s", got.Status)
	}
	if got.TotalPrice != 380 {
		t.Fatalf("duplicate delivery changed total to %v", got.TotalPrice)
	}

	time.Sleep(100 * time.Millisecond)
	if n := len(mailer.messages()); n != 2 {
		t.Fatalf("expected exactly 2 messages after duplicate delivery, got %d", n)
	}
}

func TestPaymentNotifyNonSuccessIsInert(t *testing.T) {
	order := pendingToteBagOrder()
	store := newFakeOrderStore(order)
	mailer := &fakeMailer{}
	r := newWebhookRouter(store, mailer)

	form := url.Values{}
	form.Set("m_payment_id", "ref-tote")
	form.Set("payment_status", "CANCELLED")

	w := postNotification(r, form)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for a processed non-success, got %d", w.Code)
	}

	got, _ := store.GetByReference(nil, "ref-tote")
	if got.Status != models.OrderStatusPending {
		t.Fatalf("non-success must leave status pending, got %s", got.Status)
	}
	if got.PaidAt != nil {
		t.Fatal("non-success must not set paidAt")
	}

	time.Sleep(100 * time.Millisecond)
	if n := len(mailer.messages()); n != 0 {
		t.Fatalf("non-success must send no notifications, got %d", n)
	}
}

func TestPaymentNotifyMissingReference(t *testing.T) {
	store := newFakeOrderStore(pendingToteBagOrder())
	mailer := &fakeMailer{}
	r := newWebhookRouter(store, mailer)

	form := url.Values{}
	form.Set("payment_status", "COMPLETE")

	w := postNotification(r, form)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing reference, got %d", w.Code)
	}

	got, _ := store.GetByReference(nil, "ref-tote")
	if got.Status != models.OrderStatusPending {
		t.Fatalf("missing reference must not touch any order, got %s", got.Status)
	}
}

func TestPaymentNotifyUnknownReference(t *testing.T) {
	store := newFakeOrderStore(pendingToteBagOrder())
	mailer := &fakeMailer{}
	r := newWebhookRouter(store, mailer)

	form := url.Values{}
	form.Set("m_payment_id", "no-such-order")
	form.Set("payment_status", "COMPLETE")

	w := postNotification(r, form)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown reference, got %d", w.Code)
	}

	got, _ := store.GetByReference(nil, "ref-tote")
	if got.Status != models.OrderStatusPending {
		t.Fatal("unknown reference must not mutate other orders")
	}
	time.Sleep(100 * time.Millisecond)
	if len(mailer.messages()) != 0 {
		t.Fatal("unknown reference must send nothing")
	}
}

func TestPaymentNotifyMalformedBody(t *testing.T) {
	store := newFakeOrderStore(pendingToteBagOrder())
	mailer := &fakeMailer{}
	r := newWebhookRouter(store, mailer)

	req := httptest.NewRequest("POST", "/payments/notify", strings.NewReader("m_payment_id=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed payload, got %d", w.Code)
	}
}

func TestPaymentNotifyMailFailureDoesNotAffectOrder(t *testing.T) {
	order := pendingToteBagOrder()
	store := newFakeOrderStore(order)
	mailer := &fakeMailer{err: errMailDown}
	r := newWebhookRouter(store, mailer)

	form := url.Values{}
	form.Set("m_payment_id", "ref-tote")
	form.Set("payment_status", "COMPLETE")

	w := postNotification(r, form)
	if w.Code != http.StatusOK {
		t.Fatalf("mail failure must not fail the acknowledgment, got %d", w.Code)
	}

	time.Sleep(100 * time.Millisecond)
	got, _ := store.GetByReference(nil, "ref-tote")
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("order must stay paid despite mail failure, got %s", got.Status)
	}
}
