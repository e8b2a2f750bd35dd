// Package registry tracks issued invoice numbers and their payment status.
// It replaces the browser front end's ambient global storage with an
// injected store carrying the same get/set/merge contract.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no invoice exists under the given number.
var ErrNotFound = eris.New("registry: invoice not found")

// PaymentStatus is the payment state of an invoice.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// Invoice is one registry entry, keyed by its invoice number.
type Invoice struct {
	Number    string        `json:"number"`
	UserID    string        `json:"user_id"`
	ClaimID   string        `json:"claim_id,omitempty"`
	Amount    float64       `json:"amount"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Patch holds the fields Merge applies over an existing invoice. Zero
// values are left untouched.
type Patch struct {
	Status  PaymentStatus
	Amount  *float64
	ClaimID string
}

// Registry is the invoice store contract.
type Registry interface {
	Get(ctx context.Context, number string) (*Invoice, error)
	Set(ctx context.Context, inv Invoice) error
	Merge(ctx context.Context, number string, patch Patch) (*Invoice, error)
	ListByUser(ctx context.Context, userID string) ([]Invoice, error)
	Close() error
}

// now is swapped out in tests.
var now = time.Now

// NewNumber issues a fresh invoice number in the registry's key format:
// ML-INV-<userID>-<timestampTail>-<random>.
func NewNumber(userID string) string {
	tail := now().UnixMilli() % 1_000_000
	random := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("ML-INV-%s-%06d-%s", userID, tail, random)
}

func applyPatch(inv *Invoice, patch Patch) {
	if patch.Status != "" {
		inv.Status = patch.Status
	}
	if patch.Amount != nil {
		inv.Amount = *patch.Amount
	}
	if patch.ClaimID != "" {
		inv.ClaimID = patch.ClaimID
	}
	inv.UpdatedAt = now().UTC()
}
