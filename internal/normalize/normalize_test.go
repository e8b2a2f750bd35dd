package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField(t *testing.T) {
	raw := []byte(`{"data": {"claim": {"id": "c-1", "amount": 320.5}}, "items": [1,2]}`)

	assert.Equal(t, "c-1", Field(raw, "data.claim.id", "missing"))
	assert.Equal(t, 320.5, Field(raw, "data.claim.amount", 0.0))
	assert.Equal(t, "fallback", Field(raw, "data.claim.none", "fallback"))
	assert.Equal(t, "fallback", Field([]byte("{broken"), "data", "fallback"))
}

func TestNumber(t *testing.T) {
	raw := []byte(`{
		"prediction": {"settlement_amount": "1250.50", "confidence_score": 0.9},
		"bad": "abc",
		"nested": {"n": 42}
	}`)

	n, ok := Number(raw, "prediction.settlement_amount")
	require.True(t, ok)
	assert.Equal(t, 1250.50, n)

	n, ok = Number(raw, "prediction.confidence_score")
	require.True(t, ok)
	assert.Equal(t, 0.9, n)

	_, ok = Number(raw, "bad")
	assert.False(t, ok)

	_, ok = Number(raw, "missing.path")
	assert.False(t, ok)

	n, ok = Number(raw, "nested.n")
	require.True(t, ok)
	assert.Equal(t, 42.0, n)
}

func TestArray(t *testing.T) {
	raw := []byte(`{"results": [{"id": 1}, {"id": 2}], "count": 2}`)

	items, err := Array(raw, "results")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.JSONEq(t, `{"id": 1}`, string(items[0]))

	_, err = Array(raw, "count")
	assert.Error(t, err, "non-array value must be rejected")

	_, err = Array(raw, "missing")
	assert.Error(t, err)

	root, err := Array([]byte(`[1, 2, 3]`), "")
	require.NoError(t, err)
	assert.Len(t, root, 3)
}
