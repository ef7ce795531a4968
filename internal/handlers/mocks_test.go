package handlers

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
	"backend/internal/notify"
	"backend/internal/orders"
)

// fakeOrderStore implements orders.Store in memory with the same conditional
// write semantics as the mongo implementation.
type fakeOrderStore struct {
	mu       sync.Mutex
	byID     map[primitive.ObjectID]*models.Order
	storeErr error
}

func newFakeOrderStore(seed ...*models.Order) *fakeOrderStore {
	s := &fakeOrderStore{byID: map[primitive.ObjectID]*models.Order{}}
	for _, order := range seed {
		if order.ID.IsZero() {
			order.ID = primitive.NewObjectID()
		}
		s.byID[order.ID] = order
	}
	return s
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return s.storeErr
	}
	order.ID = primitive.NewObjectID()
	copied := *order
	s.byID[order.ID] = &copied
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	order, ok := s.byID[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *fakeOrderStore) GetByReference(_ context.Context, reference string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	for _, order := range s.byID {
		if order.Reference == reference {
			copied := *order
			return &copied, nil
		}
	}
	return nil, orders.ErrNotFound
}

func (s *fakeOrderStore) MarkPaid(_ context.Context, reference, gatewayPaymentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return false, s.storeErr
	}
	for _, order := range s.byID {
		if order.Reference != reference {
			continue
		}
		for _, payable := range models.PayableStatuses() {
			if order.Status == payable {
				now := time.Now()
				order.Status = models.OrderStatusPaid
				order.PaidAt = &now
				order.GatewayPaymentID = gatewayPaymentID
				return true, nil
			}
		}
		return false, nil
	}
	return false, orders.ErrNotFound
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return s.storeErr
	}
	order, ok := s.byID[id]
	if !ok {
		return orders.ErrNotFound
	}
	if order.Status != from {
		return orders.ErrStatusConflict
	}
	order.Status = to
	return nil
}

func (s *fakeOrderStore) List(_ context.Context, filter orders.ListFilter) ([]models.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return nil, 0, s.storeErr
	}
	var result []models.Order
	for _, order := range s.byID {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		result = append(result, *order)
	}
	return result, int64(len(result)), nil
}

func (s *fakeOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return s.storeErr
	}
	if _, ok := s.byID[id]; !ok {
		return orders.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// fakePricer serves a fixed price list, standing in for the shop items
// collection.
type fakePricer struct {
	items    []models.OrderItem
	subtotal float64
	err      error
}

func (f *fakePricer) PriceItems(_ context.Context, _ []checkoutItemRequest) ([]models.OrderItem, float64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.items, f.subtotal, nil
}

var errMailDown = errors.New("mail transport unavailable")

// fakeMailer records messages; safe for the off-request notification
// goroutine.
type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) messages() []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notify.Message, len(f.sent))
	copy(out, f.sent)
	return out
}
