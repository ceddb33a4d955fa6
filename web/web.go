// Package web holds the HTML templates and static assets served by the
// dashboard.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// Templates is rooted at templates/ and holds layouts/, partials/ and pages/.
func Templates() fs.FS {
	sub, _ := fs.Sub(files, "templates")
	return sub
}

func Static() fs.FS {
	sub, _ := fs.Sub(files, "static")
	return sub
}
