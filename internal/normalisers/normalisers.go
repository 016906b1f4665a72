// Package normalisers extracts clean searchable text from raw files before
// they enter the engine. Each normaliser handles one family of formats,
// selected by file extension.
package normalisers

// Normaliser converts raw file content into plain text suitable for
// chunking and indexing.
type Normaliser interface {
	// Extensions returns the file extensions this normaliser handles,
	// lower-case with the leading dot (e.g. ".md").
	Extensions() []string

	// Normalise extracts plain text from raw content.
	Normalise(content []byte) (string, error)
}

// Registry routes files to normalisers by extension.
type Registry struct {
	byExtension map[string]Normaliser
	fallback    Normaliser
}

// NewRegistry creates a registry. The fallback handles every extension no
// registered normaliser claims.
func NewRegistry(fallback Normaliser, normalisers ...Normaliser) *Registry {
	r := &Registry{
		byExtension: make(map[string]Normaliser),
		fallback:    fallback,
	}
	for _, n := range normalisers {
		for _, ext := range n.Extensions() {
			r.byExtension[ext] = n
		}
	}
	return r
}

// ForExtension returns the normaliser for the given extension (lower-case,
// with the leading dot), or the fallback.
func (r *Registry) ForExtension(ext string) Normaliser {
	if n, ok := r.byExtension[ext]; ok {
		return n
	}
	return r.fallback
}
