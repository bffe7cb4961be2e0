// ABOUTME: Tests for QR challenge rendering
// ABOUTME: Covers SVG structure and terminal half-block output

package qr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSVG_ProducesWellFormedDocument(t *testing.T) {
	svg, err := SVG("https://login.example/challenge/abc123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `fill="#ffffff"`)
	assert.Contains(t, svg, `fill="#000000"`)
}

func TestSVG_DiffersPerChallenge(t *testing.T) {
	a, err := SVG("challenge-a")
	require.NoError(t, err)
	b, err := SVG("challenge-b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestWriteTerminal_EmitsSquareishBlock(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteTerminal(&buf, "challenge"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)

	// Every line covers the full module width.
	width := len([]rune(lines[0]))
	for i, line := range lines {
		assert.Equal(t, width, len([]rune(line)), "line %d has ragged width", i)
	}
	// Two module rows per line.
	assert.InDelta(t, width, 2*len(lines), 1.5)
}
