package rest

import "yqhp/rpncalc/internal/output"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// EvaluateRequest is the body of POST /api/v1/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
	Trace      bool   `json:"trace,omitempty"`
}

// BatchRequest is the body of POST /api/v1/batch.
type BatchRequest struct {
	Expressions []string `json:"expressions"`
	Trace       bool     `json:"trace,omitempty"`
}

// BatchResponse holds one record per submitted expression, in order.
type BatchResponse struct {
	RunID   string          `json:"run_id"`
	Results []output.Record `json:"results"`
	Failed  int             `json:"failed"`
}
