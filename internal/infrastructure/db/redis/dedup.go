package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerport/order-admission/internal/core/domain"
)

const dedupTTL = time.Hour

// DupChecker provides the advisory duplicate pre-check on order business
// keys, backed by Redis. Key format: dup:<title_lower>:<supplier>:<consumer>.
// Entries expire after dedupTTL and are never removed when a delete or
// rename frees the key, so a positive answer is a hint, not a verdict:
// callers confirm against the order store before treating it as a duplicate.
type DupChecker struct {
	client *redis.Client
}

// NewDupChecker creates a DupChecker wrapping the given Redis client.
func NewDupChecker(client *redis.Client) *DupChecker {
	return &DupChecker{client: client}
}

// Seen reports whether an order with this business key has already been
// committed and marked.
func (d *DupChecker) Seen(ctx context.Context, key domain.OrderKey) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("dup check: %w", err)
	}
	return n > 0, nil
}

// Mark records a committed business key (expires after dedupTTL).
func (d *DupChecker) Mark(ctx context.Context, key domain.OrderKey) error {
	return d.client.Set(ctx, d.key(key), "1", dedupTTL).Err()
}

func (d *DupChecker) key(k domain.OrderKey) string {
	return fmt.Sprintf("dup:%s:%s:%s", k.TitleLower, k.SupplierID, k.ConsumerID)
}
