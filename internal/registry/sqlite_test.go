package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteRegistry {
	t.Helper()
	r, err := NewSQLite(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRegistry_RoundTrip(t *testing.T) {
	r := newTestSQLite(t)
	ctx := context.Background()

	num := NewNumber("u7")
	require.NoError(t, r.Set(ctx, Invoice{Number: num, UserID: "u7", Amount: 1250.50}))

	got, err := r.Get(ctx, num)
	require.NoError(t, err)
	assert.Equal(t, "u7", got.UserID)
	assert.Equal(t, 1250.50, got.Amount)
	assert.Equal(t, PaymentPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteRegistry_GetMissing(t *testing.T) {
	r := newTestSQLite(t)
	_, err := r.Get(context.Background(), "no-such-number")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRegistry_SetUpserts(t *testing.T) {
	r := newTestSQLite(t)
	ctx := context.Background()

	inv := Invoice{Number: "n1", UserID: "u1", Amount: 100}
	require.NoError(t, r.Set(ctx, inv))
	inv.Amount = 200
	inv.Status = PaymentPaid
	require.NoError(t, r.Set(ctx, inv))

	got, err := r.Get(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.Amount)
	assert.Equal(t, PaymentPaid, got.Status)
}

func TestSQLiteRegistry_MergeAndList(t *testing.T) {
	r := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, Invoice{Number: "n1", UserID: "u1", Amount: 100}))
	require.NoError(t, r.Set(ctx, Invoice{Number: "n2", UserID: "u1", Amount: 50}))

	merged, err := r.Merge(ctx, "n1", Patch{Status: PaymentOverdue})
	require.NoError(t, err)
	assert.Equal(t, PaymentOverdue, merged.Status)
	assert.Equal(t, 100.0, merged.Amount)

	list, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = r.Merge(ctx, "missing", Patch{Status: PaymentPaid})
	assert.ErrorIs(t, err, ErrNotFound)
}
