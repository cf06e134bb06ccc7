package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ledgerport/order-admission/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
//
// Both stubs are safe for concurrent use and model the store contracts the
// services rely on: unique-key enforcement, clone-on-read (no aliasing into
// the store), and immediate visibility of committed writes.
// ---------------------------------------------------------------------------

type stubClientRepo struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*domain.Client
	findErr error // if set, FindByID returns this error
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{byID: make(map[string]*domain.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.EmailLower == c.EmailLower {
			return domain.ErrEmailTaken
		}
	}
	r.seq++
	c.ID = fmt.Sprintf("client-%03d", r.seq)
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) FindByEmail(_ context.Context, emailLower string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.byID {
		if c.EmailLower == emailLower {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) List(_ context.Context, q string) ([]*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	q = strings.ToLower(q)
	var out []*domain.Client
	for _, id := range ids {
		c := r.byID[id]
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(c.EmailLower, q) &&
			!strings.Contains(strings.ToLower(c.Address), q) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubClientRepo) Save(_ context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; !ok {
		return domain.ErrClientNotFound
	}
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

type stubOrderRepo struct {
	mu        sync.Mutex
	seq       int
	byID      map[string]*domain.Order
	createErr error // if set, Create returns this error after the key check
	commits   []commitRecord
}

type commitRecord struct {
	orderID     string
	committedAt time.Time
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{byID: make(map[string]*domain.Order)}
}

// Create enforces business-key uniqueness atomically under the stub's own
// mutex, modelling the store's unique index.
func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Key() == o.Key() {
			return domain.ErrDuplicateOrder
		}
	}
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	o.ID = fmt.Sprintf("order-%03d", r.seq)
	clone := *o
	r.byID[o.ID] = &clone
	r.commits = append(r.commits, commitRecord{orderID: o.ID, committedAt: time.Now().UTC()})
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) FindByKey(_ context.Context, key domain.OrderKey) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.byID {
		if o.Key() == key {
			clone := *o
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(""), nil
}

func (r *stubOrderRepo) ListByClient(_ context.Context, clientID string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(clientID), nil
}

func (r *stubOrderRepo) snapshotLocked(clientID string) []*domain.Order {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*domain.Order
	for _, id := range ids {
		o := r.byID[id]
		if clientID != "" && o.SupplierID != clientID && o.ConsumerID != clientID {
			continue
		}
		clone := *o
		out = append(out, &clone)
	}
	return out
}

func (r *stubOrderRepo) Save(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[o.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	for id, existing := range r.byID {
		if id != o.ID && existing.Key() == o.Key() {
			return domain.ErrDuplicateOrder
		}
	}
	clone := *o
	r.byID[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.byID, id)
	return nil
}

// allOrders returns a stable snapshot for oracle assertions.
func (r *stubOrderRepo) allOrders() []*domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked("")
}

// ---------------------------------------------------------------------------
// Delay and dedup stubs
// ---------------------------------------------------------------------------

// gateDelay holds every admission inside its processing window until the test
// releases the gate, making window-racing deterministic.
type gateDelay struct {
	gate chan struct{}
}

func newGateDelay() *gateDelay {
	return &gateDelay{gate: make(chan struct{})}
}

func (d *gateDelay) Wait(ctx context.Context) {
	select {
	case <-d.gate:
	case <-ctx.Done():
	}
}

func (d *gateDelay) release() {
	close(d.gate)
}

type stubDup struct {
	mu     sync.Mutex
	seen   map[string]bool
	seenFn func(key domain.OrderKey) (bool, error)
	marked []domain.OrderKey
}

func newStubDup() *stubDup {
	return &stubDup{seen: make(map[string]bool)}
}

func (d *stubDup) Seen(_ context.Context, key domain.OrderKey) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seenFn != nil {
		return d.seenFn(key)
	}
	return d.seen[dupKey(key)], nil
}

func (d *stubDup) Mark(_ context.Context, key domain.OrderKey) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[dupKey(key)] = true
	d.marked = append(d.marked, key)
	return nil
}

func dupKey(k domain.OrderKey) string {
	return k.TitleLower + "|" + k.SupplierID + "|" + k.ConsumerID
}
