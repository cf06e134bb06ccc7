package domain

import (
	"strings"
	"time"
)

// Client is a party that can appear on either side of an order.
type Client struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	Name          string     `json:"name" bson:"name"`
	Email         string     `json:"email" bson:"email"`
	EmailLower    string     `json:"-" bson:"email_lower"`
	Address       string     `json:"address,omitempty" bson:"address,omitempty"`
	Active        bool       `json:"active" bson:"active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty" bson:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// NormalizeEmail returns the canonical form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Deactivate flips the client to inactive and stamps the deactivation time.
// It reports whether a real active→inactive transition happened; deactivating
// an already-inactive client is a no-op that keeps the original timestamp.
func (c *Client) Deactivate(now time.Time) bool {
	if !c.Active {
		return false
	}
	c.Active = false
	c.DeactivatedAt = &now
	return true
}

// Activate flips the client to active and clears the deactivation timestamp.
// It reports whether a real inactive→active transition happened.
func (c *Client) Activate() bool {
	if c.Active {
		return false
	}
	c.Active = true
	c.DeactivatedAt = nil
	return true
}

// InactiveAsOf reports whether the client must be treated as inactive for an
// admission whose processing window finished at t: either the client is
// inactive now, or a recorded deactivation happened at or before t.
func (c *Client) InactiveAsOf(t time.Time) bool {
	if !c.Active {
		return true
	}
	return c.DeactivatedAt != nil && !t.Before(*c.DeactivatedAt)
}
