// ABOUTME: QR challenge rendering for login scan events
// ABOUTME: Produces an SVG payload for the web surface and a half-block form for terminals

package qr

import (
	"fmt"
	"io"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// moduleSize is the SVG edge length of one QR module in user units.
const moduleSize = 8

// SVG renders the challenge code as a standalone SVG document. The bitmap
// includes the quiet zone required by scanners.
func SVG(code string) (string, error) {
	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encoding qr challenge: %w", err)
	}

	bitmap := q.Bitmap()
	size := len(bitmap) * moduleSize

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`,
		size, size, size, size)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, size, size)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="#000000"/>`,
					x*moduleSize, y*moduleSize, moduleSize, moduleSize)
			}
		}
	}
	b.WriteString("</svg>")
	return b.String(), nil
}

// WriteTerminal renders the challenge code to w using half-block characters,
// two module rows per text line, for scanning straight off the console.
func WriteTerminal(w io.Writer, code string) error {
	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("encoding qr challenge: %w", err)
	}

	bitmap := q.Bitmap()
	for y := 0; y < len(bitmap); y += 2 {
		var line strings.Builder
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := false
			if y+1 < len(bitmap) {
				bottom = bitmap[y+1][x]
			}
			// Dark modules print as background (space) on a light terminal;
			// light modules print as blocks, matching qrcode-terminal output.
			switch {
			case top && bottom:
				line.WriteRune(' ')
			case top:
				line.WriteRune('▄')
			case bottom:
				line.WriteRune('▀')
			default:
				line.WriteRune('█')
			}
		}
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return fmt.Errorf("writing qr line: %w", err)
		}
	}
	return nil
}
