// Package plaintext normalises plain text files by collapsing whitespace.
package plaintext

import (
	"strings"
	"unicode/utf8"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

// Normaliser handles plain text documents. It is also the fallback for any
// extension nothing else claims.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text", ".log", ".csv", ".json", ".yaml", ".yml", ".toml"}
}

// Normalise collapses all whitespace runs to single spaces and trims the
// result. Newlines carry no meaning for chunking or scoring, so flattening
// them keeps chunk windows dense.
func (n *Normaliser) Normalise(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", domain.ErrInvalidInput
	}
	return strings.Join(strings.Fields(string(content)), " "), nil
}
