package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerport/order-admission/internal/api/metrics"
	"github.com/ledgerport/order-admission/internal/core/domain"
	"github.com/ledgerport/order-admission/internal/core/ports"
)

// DupChecker abstracts the advisory duplicate pre-check store (Redis).
// It is advisory only: marks are not invalidated when a delete or rename
// frees a key, so a hit must be confirmed against the order store, and a
// miss proves nothing. The authoritative duplicate decision is always made
// under the pair lock against the store.
type DupChecker interface {
	Seen(ctx context.Context, key domain.OrderKey) (bool, error)
	Mark(ctx context.Context, key domain.OrderKey) error
}

type orderService struct {
	clients ports.ClientRepository
	orders  ports.OrderRepository
	locker  ports.PairLocker
	delay   ports.DelayStrategy
	dedup   DupChecker // optional, may be nil
	floor   domain.Cents
	log     zerolog.Logger
}

// NewOrderService returns the OrderService implementing the admission
// protocol. floor is the minimum net position a consumer may be left with
// after a committed order; it is explicit configuration, never ambient state.
// dedup may be nil to disable the advisory pre-check.
func NewOrderService(
	clients ports.ClientRepository,
	orders ports.OrderRepository,
	locker ports.PairLocker,
	delay ports.DelayStrategy,
	dedup DupChecker,
	floor domain.Cents,
	log zerolog.Logger,
) ports.OrderService {
	return &orderService{
		clients: clients,
		orders:  orders,
		locker:  locker,
		delay:   delay,
		dedup:   dedup,
		floor:   floor,
		log:     log,
	}
}

// Admit runs the full admission sequence for one candidate order: validate
// the input, resolve both clients, check their status, run the processing
// window, then take the ordered pair lock and revalidate status, floor and
// duplicate before committing. Everything from the lock acquisition to the
// commit is atomic with respect to any other admission touching either of
// the same two clients.
//
// The floor is enforced on the consumer's resulting position only. The
// supplier's position can only grow on admission, so a supplier-side bound
// could never trip here.
func (s *orderService) Admit(ctx context.Context, in ports.AdmitOrderInput) (order *domain.Order, err error) {
	begin := time.Now()
	defer func() {
		metrics.AdmissionDuration.Observe(time.Since(begin).Seconds())
		metrics.AdmissionsTotal.WithLabelValues(outcomeOf(err)).Inc()
	}()

	// 1. Preconditions, no locks held.
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &domain.ValidationError{Message: "order title must not be blank"}
	}
	if in.SupplierID == in.ConsumerID {
		return nil, &domain.ValidationError{Message: "supplier and consumer must be different"}
	}
	if in.Price < 100 {
		return nil, &domain.ValidationError{Message: "price must be positive and >= 1"}
	}
	key := domain.NewOrderKey(title, in.SupplierID, in.ConsumerID)

	// 2. Resolve both parties.
	supplier, err := s.clients.FindByID(ctx, in.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("supplier %s: %w", in.SupplierID, err)
	}
	consumer, err := s.clients.FindByID(ctx, in.ConsumerID)
	if err != nil {
		return nil, fmt.Errorf("consumer %s: %w", in.ConsumerID, err)
	}

	// 3. Snapshot status check.
	if !supplier.Active {
		return nil, domain.Reject(domain.ReasonInactiveParty, "supplier is inactive: id="+supplier.ID)
	}
	if !consumer.Active {
		return nil, domain.Reject(domain.ReasonInactiveParty, "consumer is inactive: id="+consumer.ID)
	}

	// 4. Advisory duplicate pre-check. A hit is only a hint: the key may have
	// been freed since it was marked (the order deleted, or renamed away by
	// an update), so the store is consulted before rejecting. Only a
	// confirmed key fails fast without opening the window or taking locks.
	// Redis being down never blocks admission.
	if s.dedup != nil {
		seen, derr := s.dedup.Seen(ctx, key)
		switch {
		case derr != nil:
			s.log.Warn().Err(derr).Msg("dedup pre-check failed, continuing")
		case seen:
			if _, ferr := s.orders.FindByKey(ctx, key); ferr == nil {
				metrics.DedupTotal.WithLabelValues("hit").Inc()
				return nil, domain.ErrDuplicateOrder
			}
			// Stale mark. The authoritative under-lock check still guards
			// the commit.
			metrics.DedupTotal.WithLabelValues("stale").Inc()
		default:
			metrics.DedupTotal.WithLabelValues("miss").Inc()
		}
	}

	// 5. Processing window. Status changes racing with the admission during
	// this interval are caught by the under-lock re-check below; the protocol
	// stays correct for a window of any length.
	started := time.Now().UTC()
	s.delay.Wait(ctx)
	finished := time.Now().UTC()

	// 6. Exclusive pair lock, fixed ascending-id order, released on every
	// exit path.
	lockStart := time.Now()
	release := s.locker.LockPair(in.SupplierID, in.ConsumerID)
	defer release()
	metrics.AdmissionLockWait.Observe(time.Since(lockStart).Seconds())

	// 7. Revalidate under lock: both parties still active, and neither was
	// deactivated at or before the window's end. A deactivation inside the
	// window invalidates the order even though the snapshot check passed.
	supplier, err = s.clients.FindByID(ctx, in.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("supplier %s: %w", in.SupplierID, err)
	}
	consumer, err = s.clients.FindByID(ctx, in.ConsumerID)
	if err != nil {
		return nil, fmt.Errorf("consumer %s: %w", in.ConsumerID, err)
	}
	if supplier.InactiveAsOf(finished) {
		return nil, domain.Reject(domain.ReasonBecameInactive, "supplier became inactive during processing")
	}
	if consumer.InactiveAsOf(finished) {
		return nil, domain.Reject(domain.ReasonBecameInactive, "consumer became inactive during processing")
	}

	// 8. Floor check on the consumer's resulting position, recomputed from
	// the committed order set under lock.
	consumerOrders, err := s.orders.ListByClient(ctx, in.ConsumerID)
	if err != nil {
		return nil, fmt.Errorf("recompute consumer position: %w", err)
	}
	position := domain.NetPosition(in.ConsumerID, consumerOrders)
	if position-in.Price < s.floor {
		return nil, domain.Reject(domain.ReasonFloorBreach,
			fmt.Sprintf("consumer position would drop below %.2f", s.floor.Dollars()))
	}

	// 9. Duplicate check under lock.
	if _, err := s.orders.FindByKey(ctx, key); err == nil {
		return nil, domain.ErrDuplicateOrder
	} else if !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}

	// 10. Commit. A store-level uniqueness violation here is the benign race
	// with another committer that passed the same window; the repository
	// translates it to ErrDuplicateOrder.
	now := time.Now().UTC()
	order = &domain.Order{
		Title:      title,
		TitleLower: key.TitleLower,
		SupplierID: in.SupplierID,
		ConsumerID: in.ConsumerID,
		Price:      in.Price,
		StartedAt:  started,
		FinishedAt: finished,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			return nil, err
		}
		return nil, fmt.Errorf("commit order: %w", err)
	}

	if s.dedup != nil {
		if merr := s.dedup.Mark(ctx, key); merr != nil {
			s.log.Warn().Err(merr).Msg("failed to mark dedup key")
		}
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("supplier_id", order.SupplierID).
		Str("consumer_id", order.ConsumerID).
		Int64("price_cents", int64(order.Price)).
		Msg("order admitted")

	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *orderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *orderService) ListByClient(ctx context.Context, clientID string) ([]*domain.Order, error) {
	return s.orders.ListByClient(ctx, clientID)
}

// Update applies a title/price correction. A case-insensitive title change
// re-runs the business-key duplicate check; supplier, consumer and the
// already-admitted price floor decision are untouched.
func (s *orderService) Update(ctx context.Context, id string, in ports.UpdateOrderInput) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Price < 100 {
		return nil, &domain.ValidationError{Message: "price must be positive and >= 1"}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &domain.ValidationError{Message: "order title must not be blank"}
	}

	if !strings.EqualFold(order.Title, title) {
		key := domain.NewOrderKey(title, order.SupplierID, order.ConsumerID)
		if _, err := s.orders.FindByKey(ctx, key); err == nil {
			return nil, domain.ErrDuplicateOrder
		} else if !errors.Is(err, domain.ErrOrderNotFound) {
			return nil, fmt.Errorf("duplicate check: %w", err)
		}
		order.Title = title
		order.TitleLower = key.TitleLower
	}

	order.Price = in.Price
	order.UpdatedAt = time.Now().UTC()

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return err
	}
	return s.orders.Delete(ctx, id)
}
