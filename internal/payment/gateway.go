// Package payment defines the provider-neutral payment gateway contract used by the checkout flow.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Status is the normalised transaction outcome reported by a gateway.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
	StatusAbandoned Status = "abandoned"
	StatusReversed  Status = "reversed"
)

// InitializeRequest starts a hosted payment for a single order.
type InitializeRequest struct {
	Amount      decimal.Decimal
	Email       string
	Reference   string
	CallbackURL string
	Metadata    map[string]string
}

// Session is what the customer is redirected to.
type Session struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Verification is the gateway's record of a transaction.
type Verification struct {
	Reference       string
	Status          Status
	Amount          decimal.Decimal
	GatewayResponse string
}

// Refund describes a refund request accepted by the gateway.
type Refund struct {
	Reference string
	Status    string
}

// Gateway initializes, verifies and refunds transactions.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (Session, error)
	Verify(ctx context.Context, reference string) (Verification, error)
	Refund(ctx context.Context, reference string) (Refund, error)
}

// Error is returned by gateway clients when the upstream rejected the call.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "payment gateway error"
	}
	return "payment gateway: " + e.Message
}

// UpstreamMessage extracts the upstream's human readable message when available.
func UpstreamMessage(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	return ""
}
