package ports

import (
	"context"

	"github.com/ledgerport/order-admission/internal/core/domain"
)

// CreateClientInput carries the fields for registering a new client.
type CreateClientInput struct {
	Name    string
	Email   string
	Address string
}

// UpdateClientInput carries the mutable client profile fields.
type UpdateClientInput struct {
	Name    string
	Email   string
	Address string
}

// ClientProfit is a client snapshot together with its computed net position.
type ClientProfit struct {
	ClientID string
	Name     string
	Email    string
	Active   bool
	Profit   domain.Cents
}

// ProfitRange bounds a profit search; nil means unbounded on that side.
type ProfitRange struct {
	Min *domain.Cents
	Max *domain.Cents
}

// ClientService covers the client CRUD surface, the status mutator and the
// profit reporting endpoints.
type ClientService interface {
	Create(ctx context.Context, in CreateClientInput) (*domain.Client, error)
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	// ListOrSearch returns all clients when q is blank, otherwise a keyword
	// search over name/email/address (q must be at least 3 characters).
	ListOrSearch(ctx context.Context, q string) ([]*domain.Client, error)
	Update(ctx context.Context, id string, in UpdateClientInput) (*domain.Client, error)
	// SetActive toggles the active flag. Idempotent: repeating the current
	// state is a no-op that still returns the current snapshot. A true
	// active→inactive transition records the deactivation timestamp;
	// reactivation clears it.
	SetActive(ctx context.Context, id string, active bool) (*domain.Client, error)
	ListOrders(ctx context.Context, clientID string) ([]*domain.Order, error)
	Profit(ctx context.Context, clientID string) (*ClientProfit, error)
	ProfitsInRange(ctx context.Context, r ProfitRange) ([]*ClientProfit, error)
}
