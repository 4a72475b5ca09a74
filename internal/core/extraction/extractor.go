// Package extraction proposes candidate place-name spans from free text.
// Each heuristic implements Extractor; a Runner fans a query out to all of
// them and concatenates their output. Nothing here decides what a span
// means: that is left to the resolver.
package extraction

import (
	"context"
	"errors"
	"log/slog"

	"github.com/agenthands/geoparse/internal/core/model"
	"golang.org/x/sync/errgroup"
)

type Extractor interface {
	Method() model.SourceMethod
	Extract(ctx context.Context, text string) ([]model.Candidate, error)
}

type Runner struct {
	Extractors []Extractor
	Parallel   bool
	Logger     *slog.Logger
}

func NewRunner(logger *slog.Logger, parallel bool, extractors ...Extractor) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Extractors: extractors,
		Parallel:   parallel,
		Logger:     logger,
	}
}

// Run returns every extractor's candidates, in extractor order. A failing
// heuristic contributes nothing; only cancellation is reported as an error.
func (r *Runner) Run(ctx context.Context, text string) ([]model.Candidate, error) {
	results := make([][]model.Candidate, len(r.Extractors))

	run := func(i int, e Extractor) error {
		cands, err := e.Extract(ctx, text)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.Logger.Warn("extractor failed", "method", e.Method(), "error", err)
			return nil
		}
		results[i] = cands
		return nil
	}

	if r.Parallel && len(r.Extractors) > 1 {
		var g errgroup.Group
		for i, e := range r.Extractors {
			g.Go(func() error { return run(i, e) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, e := range r.Extractors {
			if err := run(i, e); err != nil {
				return nil, err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []model.Candidate
	for _, cands := range results {
		out = append(out, cands...)
	}
	return out, nil
}
