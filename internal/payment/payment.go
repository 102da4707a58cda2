package payment

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned when the processor does not know the
	// session identifier (malformed ids included).
	ErrSessionNotFound = errors.New("checkout session not found")
)

// Payment status values reported by the processor. The processor is the
// source of truth; this system never marks a payment as paid itself.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// CartMetadataKey is the session metadata key under which the cart
// snapshot travels to and from the processor.
const CartMetadataKey = "cart"

// LineItem is a priced, quantified unit sent to the processor to build
// its hosted checkout page. UnitAmount is in the currency's minor unit.
type LineItem struct {
	Name       string
	Images     []string
	UnitAmount int64
	Quantity   int64
	Currency   string
}

// CreateSessionInput holds the parameters for opening a hosted checkout session.
type CreateSessionInput struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CreateSessionResult holds the processor's handle on a freshly opened session.
type CreateSessionResult struct {
	SessionID string
	URL       string
}

// Session is the processor's view of a checkout session. AmountTotal is
// the captured amount in minor units.
type Session struct {
	ID            string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// Provider defines the interface for hosted checkout integrations.
type Provider interface {
	// Name returns the provider name (e.g., "stripe").
	Name() string

	// CreateSession opens a hosted checkout session for the given line items.
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionResult, error)

	// RetrieveSession fetches the current state of a checkout session.
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}
