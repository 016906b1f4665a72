// Package embedding selects the embedding model the engine runs with.
//
// Model selection is polymorphism over capability: candidates are tried in
// the configured preference order (primary first), and the first one that
// can actually be constructed and reached wins. The chosen model is fixed
// for the process lifetime.
package embedding

import (
	"context"
	"fmt"

	"github.com/veldt-labs/quarry/internal/core/domain"
	"github.com/veldt-labs/quarry/internal/core/ports/driven"
	"github.com/veldt-labs/quarry/internal/logger"
)

// Candidate lazily constructs one embedding service. Construction is
// deferred so that a misconfigured candidate (for example OpenAI without an
// API key) simply falls through to the next one.
type Candidate struct {
	// Name identifies the candidate in logs ("ollama", "openai").
	Name string

	// New constructs the service.
	New func() (driven.EmbeddingService, error)
}

// Select tries each candidate in order and returns the first whose Ping
// succeeds. Candidates that fail are closed and skipped. When none is
// reachable, Select fails with domain.ErrModelUnavailable: the engine cannot
// function without an embedding model.
func Select(ctx context.Context, candidates []Candidate) (driven.EmbeddingService, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates configured", domain.ErrModelUnavailable)
	}

	for _, c := range candidates {
		svc, err := c.New()
		if err != nil {
			logger.Warn("Embedding provider %s unavailable: %v", c.Name, err)
			continue
		}

		if err := svc.Ping(ctx); err != nil {
			logger.Warn("Embedding provider %s ping failed: %v", c.Name, err)
			_ = svc.Close()
			continue
		}

		logger.Info("Using embedding model %s (%d dimensions) via %s",
			svc.ModelName(), svc.Dimensions(), c.Name)
		return svc, nil
	}

	return nil, fmt.Errorf("%w: tried %d provider(s)", domain.ErrModelUnavailable, len(candidates))
}
