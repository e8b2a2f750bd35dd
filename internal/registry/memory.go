package registry

import (
	"context"
	"sort"
	"sync"
)

// MemoryRegistry is an in-memory Registry for tests and ephemeral runs.
type MemoryRegistry struct {
	mu       sync.RWMutex
	invoices map[string]Invoice
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *MemoryRegistry {
	return &MemoryRegistry{invoices: make(map[string]Invoice)}
}

func (r *MemoryRegistry) Get(_ context.Context, number string) (*Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[number]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (r *MemoryRegistry) Set(_ context.Context, inv Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.Status == "" {
		inv.Status = PaymentPending
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now().UTC()
	}
	inv.UpdatedAt = now().UTC()
	r.invoices[inv.Number] = inv
	return nil
}

func (r *MemoryRegistry) Merge(_ context.Context, number string, patch Patch) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[number]
	if !ok {
		return nil, ErrNotFound
	}
	applyPatch(&inv, patch)
	r.invoices[number] = inv
	return &inv, nil
}

func (r *MemoryRegistry) ListByUser(_ context.Context, userID string) ([]Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRegistry) Close() error { return nil }
