package domain

import "errors"

// Sentinel errors for not-found and conflict cases.
// The handler layer maps these to HTTP status codes.
var (
	ErrClientNotFound = errors.New("client not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrEmailTaken     = errors.New("email already exists")
	ErrDuplicateOrder = errors.New("order with the same title/supplier/consumer already exists")
)

// ValidationError represents a malformed request (blank title, non-positive
// price, supplier equal to consumer, ...). Never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RejectionReason identifies why the admission protocol refused an order.
// The set is closed: callers switch over it exhaustively.
type RejectionReason string

const (
	// ReasonInactiveParty: supplier or consumer was inactive at the initial
	// snapshot check, before the processing window opened.
	ReasonInactiveParty RejectionReason = "inactive"
	// ReasonBecameInactive: a party was deactivated during the processing
	// window; caught by the under-lock revalidation.
	ReasonBecameInactive RejectionReason = "became_inactive_during_processing"
	// ReasonFloorBreach: committing the order would push the consumer's net
	// position below the configured floor.
	ReasonFloorBreach RejectionReason = "floor_breach"
)

// RejectionError is a terminal business-rule rejection. It carries the typed
// reason so the harness and the API can report the exact outcome.
type RejectionError struct {
	Reason  RejectionReason
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Reject builds a RejectionError.
func Reject(reason RejectionReason, message string) *RejectionError {
	return &RejectionError{Reason: reason, Message: message}
}
