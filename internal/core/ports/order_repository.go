package ports

import (
	"context"

	"github.com/ledgerport/order-admission/internal/core/domain"
)

// OrderRepository defines persistence operations for orders.
//
// Create must enforce the business-key uniqueness constraint and surface a
// collision as domain.ErrDuplicateOrder, including the benign race where a
// concurrent committer won between an in-memory duplicate check and the
// write. FindByID returns domain.ErrOrderNotFound for an unknown id.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// FindByKey looks an order up by its business key; domain.ErrOrderNotFound
	// when absent.
	FindByKey(ctx context.Context, key domain.OrderKey) (*domain.Order, error)
	// List returns all orders sorted by id.
	List(ctx context.Context) ([]*domain.Order, error)
	// ListByClient returns all orders where the client is supplier or
	// consumer, sorted by id.
	ListByClient(ctx context.Context, clientID string) ([]*domain.Order, error)
	Save(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id string) error
}
