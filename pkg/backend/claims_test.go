package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claims-cli/internal/model"
)

func testPayload() *model.ClaimPayload {
	return &model.ClaimPayload{
		Title:  "Claim - Rear end - 2026-02-01",
		Amount: 1250.50,
		ClaimData: map[string]any{
			"AccidentType": "Rear end",
		},
		MLPrediction: &model.MLPredictionEcho{
			PredictionRecord: model.PredictionRecord{
				SettlementAmount: 1250.50,
				ConfidenceScore:  0.9,
				Source:           model.SourceMLService,
			},
		},
		Status: model.ClaimStatusPendingReview,
	}
}

func TestCreateClaim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/claims/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var p model.ClaimPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, 1250.50, p.Amount)
		assert.Equal(t, model.SourceMLService, p.MLPrediction.Source)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Claim{ID: "c1", Amount: p.Amount, Status: p.Status})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTokens(Tokens{Access: "tok"}))
	claim, err := c.CreateClaim(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "c1", claim.ID)
	assert.Equal(t, 1250.50, claim.Amount)
}

func TestCreateFinanceClaim_Path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/claims/finance/", r.URL.Path)
		json.NewEncoder(w).Encode(model.Claim{ID: "cf1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	claim, err := c.CreateFinanceClaim(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "cf1", claim.ID)
}

func TestListClaims_ResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"paginated_results", `{"results": [{"id": "a"}, {"id": "b"}], "count": 2}`, 2},
		{"legacy_data", `{"data": [{"id": "a"}]}`, 1},
		{"bare_array", `[{"id": "a"}, {"id": "b"}, {"id": "c"}]`, 3},
		{"empty", `{"results": []}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			claims, err := c.ListClaims(context.Background(), ListOptions{})
			require.NoError(t, err)
			assert.Len(t, claims, tt.want)
		})
	}
}

func TestListClaims_UnknownShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"claims_by_id": {"a": {}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListClaims(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a list")
}

func TestListClaims_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending_review", r.URL.Query().Get("status"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "50", r.URL.Query().Get("offset"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListClaims(context.Background(), ListOptions{
		Status: model.ClaimStatusPendingReview,
		Limit:  25,
		Offset: 50,
	})
	require.NoError(t, err)
}

func TestProxyPredict_RawPassthrough(t *testing.T) {
	const body = `{"prediction": {"settlement_amount": 900}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ml/models/predict/", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req, "input_data")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	raw, err := c.ProxyPredict(context.Background(), "/ml/models/predict/", map[string]any{
		"input_data": map[string]any{"DriverAge": 30},
		"request_id": "r1",
	})
	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))
}

func TestCreateClaim_RejectionSurfacesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": "ml_prediction.source must be ml_service"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateClaim(context.Background(), testPayload())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "ml_prediction.source must be ml_service", apiErr.Detail)
}
