package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, err := Render([]byte("Run ordinary **Rust** programs."), Options{})
	require.NoError(t, err)
	assert.Equal(t, "<p>Run ordinary <strong>Rust</strong> programs.</p>\n", string(out))
}

func TestRender_StripsScripts(t *testing.T) {
	out, err := Render([]byte("hi <script>alert(1)</script> [x](javascript:alert(1))"), Options{})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script")
	assert.NotContains(t, string(out), "javascript:")
}

func TestRender_ExternalLinksOpenInNewWindow(t *testing.T) {
	out, err := Render([]byte("See the [source](https://github.com/risc0/risc0)."), Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `href="https://github.com/risc0/risc0"`)
	assert.Contains(t, string(out), `target="_blank"`)
	assert.Contains(t, string(out), "noreferrer")
}
