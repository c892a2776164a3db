// Package batch drives the multi-equation input format: an equation count
// followed by that many '.'-terminated equations.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yqhp/rpncalc/internal/expression"
	"yqhp/rpncalc/internal/output"
)

// ErrBadCount is returned when the leading equation count is missing or invalid.
var ErrBadCount = errors.New("invalid equation count")

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Equations int
	Failed    int
}

// Runner processes batches.
type Runner struct {
	renderer output.Renderer
	trace    bool
	log      *zap.Logger
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(renderer output.Renderer, trace bool, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{renderer: renderer, trace: trace, log: log}
}

// recordingScanner remembers the lexemes of the current equation.
type recordingScanner struct {
	expression.LexemeScanner
	lexemes []string
}

func (s *recordingScanner) Scan() bool {
	if !s.LexemeScanner.Scan() {
		return false
	}
	s.lexemes = append(s.lexemes, s.Text())
	return true
}

func (s *recordingScanner) take() string {
	infix := strings.Join(s.lexemes, " ")
	s.lexemes = s.lexemes[:0]
	return infix
}

// Run reads a batch from in and renders one record per equation to out.
// Equation failures are rendered and counted; only stream level problems
// (bad count, truncated input, write failures, cancellation) are returned.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (*Summary, error) {
	summary := &Summary{RunID: uuid.New().String()}
	log := r.log.With(zap.String("run_id", summary.RunID))

	scanner := &recordingScanner{LexemeScanner: expression.NewLexemeScanner(in)}
	count, err := readCount(scanner)
	if err != nil {
		return summary, err
	}
	scanner.take()
	log.Debug("batch started", zap.Int("equations", count))

	tz := expression.NewStreamTokenizer(scanner)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome := expression.Process(tz, r.trace)
		var streamErr error
		if outcome.Err != nil && !errors.Is(outcome.Err, expression.ErrUnexpectedEnd) {
			streamErr = tz.SkipEquation()
		} else if outcome.Err != nil {
			streamErr = outcome.Err
		}

		rec := output.FromOutcome(i, scanner.take(), outcome)
		summary.Equations++
		if !rec.OK() {
			summary.Failed++
			log.Debug("equation failed",
				zap.Int("index", i),
				zap.String("infix", rec.Infix),
				zap.String("error", rec.Error),
				zap.Error(outcome.Err))
		} else {
			log.Debug("equation evaluated",
				zap.Int("index", i),
				zap.String("postfix", rec.Postfix),
				zap.Int64("value", *rec.Value))
		}

		if err := r.renderer.Render(out, rec); err != nil {
			return summary, fmt.Errorf("write result %d: %w", i, err)
		}
		if streamErr != nil {
			return summary, fmt.Errorf("equation %d of %d: %w", i+1, count, streamErr)
		}
	}

	log.Info("batch finished",
		zap.Int("equations", summary.Equations),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func readCount(s expression.LexemeScanner) (int, error) {
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrBadCount, err)
		}
		return 0, fmt.Errorf("%w: empty input", ErrBadCount)
	}
	// Lexemes never carry a sign, so "-1" arrives as "-" and fails here.
	n, err := strconv.Atoi(s.Text())
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadCount, s.Text())
	}
	return n, nil
}
