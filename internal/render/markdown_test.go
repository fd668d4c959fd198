package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToHTML(t *testing.T) {
	out, err := MarkdownToHTML("**Cosmic Note:** trust your intuition")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>Cosmic Note:</strong>")
}

func TestMarkdownToHTMLHardWraps(t *testing.T) {
	out, err := MarkdownToHTML("line one\nline two")
	require.NoError(t, err)
	assert.Contains(t, out, "<br")
}

func TestMarkdownToHTMLEmpty(t *testing.T) {
	out, err := MarkdownToHTML("")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMarkdownToHTMLList(t *testing.T) {
	out, err := MarkdownToHTML("- do yoga 🧘\n- avoid contracts")
	require.NoError(t, err)
	assert.Contains(t, out, "<li>")
	assert.Contains(t, out, "do yoga 🧘")
}
