package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"yqhp/rpncalc/internal/expression"
	"yqhp/rpncalc/internal/output"
)

// healthCheck handles GET /health
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// evaluate handles POST /api/v1/evaluate. Equation errors are part of the
// record and still answer 200; only malformed requests are rejected.
func (s *Server) evaluate(c *fiber.Ctx) error {
	var req EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
		})
	}
	if strings.TrimSpace(req.Expression) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "expression is required",
		})
	}

	return c.JSON(s.run(0, req.Expression, req.Trace))
}

// evaluateBatch handles POST /api/v1/batch
func (s *Server) evaluateBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
		})
	}
	if len(req.Expressions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "expressions must not be empty",
		})
	}
	if s.config.MaxBatch > 0 && len(req.Expressions) > s.config.MaxBatch {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorResponse{
			Error:   "batch_too_large",
			Message: fmt.Sprintf("at most %d expressions per batch", s.config.MaxBatch),
		})
	}

	resp := BatchResponse{
		RunID:   uuid.NewString(),
		Results: make([]output.Record, 0, len(req.Expressions)),
	}
	for i, expr := range req.Expressions {
		rec := s.run(i, expr, req.Trace)
		if !rec.OK() {
			resp.Failed++
		}
		resp.Results = append(resp.Results, rec)
	}

	s.log.Debug("batch evaluated",
		zap.String("run_id", resp.RunID),
		zap.Int("equations", len(resp.Results)),
		zap.Int("failed", resp.Failed))
	return c.JSON(resp)
}

// getStats handles GET /api/v1/stats
func (s *Server) getStats(c *fiber.Ctx) error {
	return c.JSON(s.stats.Snapshot())
}

// run evaluates one expression in string mode and records its latency.
func (s *Server) run(index int, expr string, trace bool) output.Record {
	start := time.Now()
	outcome := expression.ProcessString(expr, trace)
	s.stats.Record(time.Since(start))

	return output.FromOutcome(index, expr, outcome)
}
