// Package web carries the embeddable widget assets served by the proxy.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// Static returns the widget asset tree rooted at the static directory.
func Static() (fs.FS, error) {
	return fs.Sub(static, "static")
}
