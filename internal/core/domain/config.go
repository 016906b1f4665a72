package domain

import (
	"fmt"
	"math"
)

// Default engine parameters. They mirror the defaults of the reference
// corpus sizes this engine targets: tens of documents, held in memory.
const (
	DefaultMaxDocuments  = 10
	DefaultChunkSize     = 500
	DefaultChunkOverlap  = 50
	DefaultLexicalWeight = 0.4
	DefaultSemantic      = 0.6
	DefaultTopKLexical   = 50
	DefaultTopKSemantic  = 50
	DefaultSnippetLength = 250
)

// weightTolerance bounds floating point drift when checking that the fusion
// weights sum to one.
const weightTolerance = 1e-9

// EngineConfig holds the construction-time parameters of the engine.
// It is supplied once and never mutated per call.
type EngineConfig struct {
	// MaxDocuments is the corpus capacity. AddDocument fails with
	// ErrCapacityExceeded once reached.
	MaxDocuments int

	// ChunkSize is the window size in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by consecutive chunks
	// of the same document. Must satisfy 0 <= ChunkOverlap < ChunkSize.
	ChunkOverlap int

	// LexicalWeight and SemanticWeight combine the normalized scores during
	// fusion. They must sum to 1.
	LexicalWeight  float64
	SemanticWeight float64

	// TopKLexical is how many of the best lexical hits enter the candidate
	// union before fusion.
	TopKLexical int

	// TopKSemantic is how many nearest neighbours are requested from the
	// vector index before fusion.
	TopKSemantic int

	// SnippetLength is the maximum snippet display length in characters.
	SnippetLength int
}

// DefaultEngineConfig returns the default engine parameters.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxDocuments:   DefaultMaxDocuments,
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		LexicalWeight:  DefaultLexicalWeight,
		SemanticWeight: DefaultSemantic,
		TopKLexical:    DefaultTopKLexical,
		TopKSemantic:   DefaultTopKSemantic,
		SnippetLength:  DefaultSnippetLength,
	}
}

// Validate checks the configuration invariants. All violations are reported
// as ErrInvalidConfiguration.
func (c EngineConfig) Validate() error {
	if c.MaxDocuments <= 0 {
		return fmt.Errorf("%w: max documents must be positive, got %d", ErrInvalidConfiguration, c.MaxDocuments)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must satisfy 0 <= overlap < chunk size %d",
			ErrInvalidConfiguration, c.ChunkOverlap, c.ChunkSize)
	}
	if c.LexicalWeight < 0 || c.SemanticWeight < 0 {
		return fmt.Errorf("%w: fusion weights must be non-negative", ErrInvalidConfiguration)
	}
	if math.Abs(c.LexicalWeight+c.SemanticWeight-1) > weightTolerance {
		return fmt.Errorf("%w: fusion weights must sum to 1, got %g + %g",
			ErrInvalidConfiguration, c.LexicalWeight, c.SemanticWeight)
	}
	if c.TopKLexical <= 0 || c.TopKSemantic <= 0 {
		return fmt.Errorf("%w: candidate fan-out must be positive", ErrInvalidConfiguration)
	}
	if c.SnippetLength <= 0 {
		return fmt.Errorf("%w: snippet length must be positive, got %d", ErrInvalidConfiguration, c.SnippetLength)
	}
	return nil
}
