package plaintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

func TestNormalise_CollapsesWhitespace(t *testing.T) {
	n := New()

	got, err := n.Normalise([]byte("line one\n\n  line\ttwo   \r\nline three  "))
	require.NoError(t, err)
	assert.Equal(t, "line one line two line three", got)
}

func TestNormalise_Empty(t *testing.T) {
	n := New()

	got, err := n.Normalise([]byte("   \n\t  "))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNormalise_RejectsInvalidUTF8(t *testing.T) {
	n := New()

	_, err := n.Normalise([]byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtensions(t *testing.T) {
	assert.Contains(t, New().Extensions(), ".txt")
}
