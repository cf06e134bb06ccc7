package ports

import (
	"context"

	"github.com/ledgerport/order-admission/internal/core/domain"
)

// AdmitOrderInput is a candidate order offered to the admission protocol.
type AdmitOrderInput struct {
	Title      string
	SupplierID string
	ConsumerID string
	Price      domain.Cents
}

// UpdateOrderInput carries a title/price correction for an existing order.
// A title change re-runs the business-key duplicate check.
type UpdateOrderInput struct {
	Title string
	Price domain.Cents
}

// OrderService exposes the admission protocol plus the order read/correct
// surface. Admit returns the committed order on success; on refusal it
// returns one of the typed errors from the domain package
// (*domain.ValidationError, *domain.RejectionError, domain.ErrClientNotFound,
// domain.ErrDuplicateOrder) and leaves no partial state behind.
type OrderService interface {
	Admit(ctx context.Context, in AdmitOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Order, error)
	Update(ctx context.Context, id string, in UpdateOrderInput) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}
