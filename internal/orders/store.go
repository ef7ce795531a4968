// Package orders persists order documents and owns the two conditional
// status writes the lifecycle depends on.
package orders

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStatusConflict means the order exists but was not in the expected
	// status; someone else moved it first.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Store is the order persistence collaborator. Status writes are
// conditional on the current status so that retried webhooks and racing
// admins resolve to one winner instead of a lost update.
type Store interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)

	// MarkPaid moves the order into paid if it is still in a payable
	// status. Status, paidAt and the gateway payment id land in one write.
	// transitioned is true only for the call that performed the edge;
	// a repeat delivery gets (false, nil).
	MarkPaid(ctx context.Context, reference, gatewayPaymentID string) (transitioned bool, err error)

	// UpdateStatus moves the order from an expected current status to the
	// next one. Returns ErrStatusConflict when the order is no longer in
	// the expected status.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) error

	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ListFilter narrows and pages the admin order listing.
type ListFilter struct {
	Status models.OrderStatus
	Page   int64
	Limit  int64
}
