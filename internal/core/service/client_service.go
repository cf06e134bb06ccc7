package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerport/order-admission/internal/core/domain"
	"github.com/ledgerport/order-admission/internal/core/ports"
)

type clientService struct {
	clients ports.ClientRepository
	orders  ports.OrderRepository
	log     zerolog.Logger
}

// NewClientService returns a ClientService implementation.
func NewClientService(clients ports.ClientRepository, orders ports.OrderRepository, log zerolog.Logger) ports.ClientService {
	return &clientService{clients: clients, orders: orders, log: log}
}

// Create registers a new active client. Email uniqueness is checked
// case-insensitively; a taken email is a conflict, not a validation error.
func (s *clientService) Create(ctx context.Context, in ports.CreateClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "client name must not be blank"}
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, &domain.ValidationError{Message: "client email must not be blank"}
	}

	emailLower := domain.NormalizeEmail(email)
	if _, err := s.clients.FindByEmail(ctx, emailLower); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
	}

	now := time.Now().UTC()
	client := &domain.Client{
		Name:       name,
		Email:      email,
		EmailLower: emailLower,
		Address:    strings.TrimSpace(in.Address),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.Info().Str("client_id", client.ID).Str("email", emailLower).Msg("client created")
	return client, nil
}

func (s *clientService) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return s.clients.FindByID(ctx, id)
}

// ListOrSearch returns all clients when q is blank; otherwise a keyword
// search over name/email/address with a 3-character minimum.
func (s *clientService) ListOrSearch(ctx context.Context, q string) ([]*domain.Client, error) {
	q = strings.TrimSpace(q)
	if q != "" && len(q) < 3 {
		return nil, &domain.ValidationError{Message: "search keyword must be at least 3 characters"}
	}
	return s.clients.List(ctx, q)
}

// Update replaces the client's profile fields. An email change is checked
// for conflicts against every other client.
func (s *clientService) Update(ctx context.Context, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "client name must not be blank"}
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, &domain.ValidationError{Message: "client email must not be blank"}
	}

	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	emailLower := domain.NormalizeEmail(email)
	if other, err := s.clients.FindByEmail(ctx, emailLower); err == nil && other.ID != id {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmailTaken, email)
	}

	client.Name = name
	client.Email = email
	client.EmailLower = emailLower
	client.Address = strings.TrimSpace(in.Address)
	client.UpdatedAt = time.Now().UTC()

	if err := s.clients.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

// SetActive is the status mutator. It deliberately does not take the
// admission pair locks: status changes are expected to race with in-flight
// admissions, and the protocol's under-lock timestamp re-check is what makes
// that race safe. The deactivation timestamp is stamped only on a true
// active→inactive transition and cleared on reactivation.
func (s *clientService) SetActive(ctx context.Context, id string, active bool) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var changed bool
	if active {
		changed = client.Activate()
	} else {
		changed = client.Deactivate(time.Now().UTC())
	}
	if !changed {
		return client, nil
	}

	client.UpdatedAt = time.Now().UTC()
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("set client status: %w", err)
	}

	s.log.Info().Str("client_id", id).Bool("active", active).Msg("client status changed")
	return client, nil
}

func (s *clientService) ListOrders(ctx context.Context, clientID string) ([]*domain.Order, error) {
	if _, err := s.clients.FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.orders.ListByClient(ctx, clientID)
}

// Profit recomputes the client's net position from its full order set,
// through the same oracle the admission floor check uses.
func (s *clientService) Profit(ctx context.Context, clientID string) (*ports.ClientProfit, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list orders for profit: %w", err)
	}
	return &ports.ClientProfit{
		ClientID: client.ID,
		Name:     client.Name,
		Email:    client.Email,
		Active:   client.Active,
		Profit:   domain.NetPosition(client.ID, orders),
	}, nil
}

func (s *clientService) ProfitsInRange(ctx context.Context, r ports.ProfitRange) ([]*ports.ClientProfit, error) {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return nil, &domain.ValidationError{Message: "min must be <= max"}
	}

	clients, err := s.clients.List(ctx, "")
	if err != nil {
		return nil, err
	}

	results := make([]*ports.ClientProfit, 0, len(clients))
	for _, c := range clients {
		orders, err := s.orders.ListByClient(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list orders for profit: %w", err)
		}
		p := domain.NetPosition(c.ID, orders)
		if r.Min != nil && p < *r.Min {
			continue
		}
		if r.Max != nil && p > *r.Max {
			continue
		}
		results = append(results, &ports.ClientProfit{
			ClientID: c.ID,
			Name:     c.Name,
			Email:    c.Email,
			Active:   c.Active,
			Profit:   p,
		})
	}
	return results, nil
}
