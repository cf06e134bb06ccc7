package ports

import (
	"context"

	"github.com/ledgerport/order-admission/internal/core/domain"
)

// ClientRepository defines persistence operations for clients.
//
// Create and Save must surface domain.ErrEmailTaken when the unique email
// constraint is violated. FindByID returns domain.ErrClientNotFound for an
// unknown id. Reads issued after a committed Save must observe the committed
// state (no stale reads); the admission protocol relies on this for its
// under-lock revalidation.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	// FindByEmail looks a client up by normalized (lower-cased) email.
	FindByEmail(ctx context.Context, emailLower string) (*domain.Client, error)
	// List returns all clients sorted by id. When q is non-empty it is
	// matched case-insensitively against name, email and address.
	List(ctx context.Context, q string) ([]*domain.Client, error)
	Save(ctx context.Context, c *domain.Client) error
}
