// ABOUTME: Embeds the operator HTML template into the binary using go:embed
// ABOUTME: Provides templateFS for loading templates at runtime

package web

import "embed"

//go:embed templates/*.html
var templateFS embed.FS
