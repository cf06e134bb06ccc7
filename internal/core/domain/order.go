package domain

import (
	"strings"
	"time"
)

// Order is a directed value transfer from a consumer to a supplier.
// Supplier and consumer are immutable once the order is committed; title
// and price corrections go through Update, which re-runs the business-key
// check.
type Order struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	Title      string    `json:"title" bson:"title"`
	TitleLower string    `json:"-" bson:"title_lower"`
	SupplierID string    `json:"supplier_id" bson:"supplier_id"`
	ConsumerID string    `json:"consumer_id" bson:"consumer_id"`
	Price      Cents     `json:"price" bson:"price"`
	StartedAt  time.Time `json:"started_at" bson:"started_at"`
	FinishedAt time.Time `json:"finished_at" bson:"finished_at"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// OrderKey is the business key that must be unique across all orders.
// The title component is compared case-insensitively.
type OrderKey struct {
	TitleLower string
	SupplierID string
	ConsumerID string
}

// NewOrderKey builds the business key for a raw title and client pair.
func NewOrderKey(title, supplierID, consumerID string) OrderKey {
	return OrderKey{
		TitleLower: strings.ToLower(strings.TrimSpace(title)),
		SupplierID: supplierID,
		ConsumerID: consumerID,
	}
}

// Key returns the order's business key.
func (o *Order) Key() OrderKey {
	return OrderKey{TitleLower: o.TitleLower, SupplierID: o.SupplierID, ConsumerID: o.ConsumerID}
}
