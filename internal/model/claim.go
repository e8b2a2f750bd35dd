package model

import "time"

// ClaimStatus is the backend-side lifecycle state of a claim.
type ClaimStatus string

const (
	ClaimStatusPendingReview ClaimStatus = "pending_review"
	ClaimStatusApproved      ClaimStatus = "approved"
	ClaimStatusRejected      ClaimStatus = "rejected"
	ClaimStatusPaid          ClaimStatus = "paid"
)

// MLPredictionEcho embeds the prediction record plus the exact input vector
// and raw output it was derived from, for backend-side audit.
type MLPredictionEcho struct {
	PredictionRecord
	Input  map[string]any `json:"input"`
	Output map[string]any `json:"output,omitempty"`
}

// ClaimPayload is the canonical wire shape for claim creation. Built fresh
// from wizard state and the prediction record at submit time, never mutated
// afterwards, and sent at most once per wizard lifecycle (a finance-path
// retry reuses the same payload).
type ClaimPayload struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Amount       float64           `json:"amount"`
	ClaimData    map[string]any    `json:"claim_data"`
	MLPrediction *MLPredictionEcho `json:"ml_prediction"`
	Status       ClaimStatus       `json:"status"`
}

// Claim is a claim as returned by the backend.
type Claim struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Amount       float64           `json:"amount"`
	Status       ClaimStatus       `json:"status"`
	ClaimData    map[string]any    `json:"claim_data,omitempty"`
	MLPrediction *MLPredictionEcho `json:"ml_prediction,omitempty"`
	UserID       string            `json:"user_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
