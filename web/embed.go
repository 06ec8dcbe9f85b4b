// Package web embeds the built admin UI. The dist directory is replaced by
// the frontend build in CI; the checked-in index.html is a placeholder so
// the embed never fails.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var dist embed.FS

// Dist returns the built UI file tree.
func Dist() (fs.FS, error) {
	return fs.Sub(dist, "dist")
}
