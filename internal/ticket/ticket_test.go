package ticket

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	require.Equal(t, "a@x.com-42", Code("a@x.com", 42))
}

func TestGenerate(t *testing.T) {
	png, err := Generate(Code("a@x.com", 42))
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes: the artifact must be a real image.
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG output")
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate("a@x.com-42")
	require.NoError(t, err)
	b, err := Generate("a@x.com-42")
	require.NoError(t, err)
	require.Equal(t, a, b, "same code must yield identical bytes")
}

func TestGenerateEmptyCode(t *testing.T) {
	_, err := Generate("")
	require.ErrorIs(t, err, ErrEmptyCode)
}
