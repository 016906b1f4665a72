// Package chunker splits extracted document text into overlapping
// fixed-size windows with stable positional metadata.
package chunker

import (
	"fmt"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

// Chunker produces overlapping fixed-size chunks from document text.
// Window size and overlap are measured in characters (runes), not bytes,
// so multi-byte text never gets split mid-character.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. The overlap must satisfy 0 <= overlap < size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must satisfy 0 <= overlap < chunk size %d",
			domain.ErrInvalidConfiguration, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured window size in characters.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in characters.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk slides a window of the configured size across text, advancing by
// size-overlap characters each step. The final chunk ends at the true end of
// the text and may be shorter; it is never padded. Empty text produces no
// chunks. Offsets are byte offsets such that Content == text[Start:End].
//
// The global chunk Index is assigned by the caller; Chunk only fills the
// per-document Ordinal.
func (c *Chunker) Chunk(documentID, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	// Byte offsets of every rune start, plus the end of text, so windows can
	// be measured in characters while Start/End stay byte offsets.
	bounds := make([]int, 0, len(text)+1)
	for i := range text {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(text))
	runeLen := len(bounds) - 1

	step := c.size - c.overlap
	estimated := runeLen/step + 1
	chunks := make([]domain.Chunk, 0, estimated)

	for start, ordinal := 0, 0; start < runeLen; start, ordinal = start+step, ordinal+1 {
		end := start + c.size
		if end > runeLen {
			end = runeLen
		}

		startByte := bounds[start]
		endByte := bounds[end]

		chunks = append(chunks, domain.Chunk{
			DocumentID: documentID,
			Ordinal:    ordinal,
			Start:      startByte,
			End:        endByte,
			Content:    text[startByte:endByte],
		})
	}

	return chunks
}
