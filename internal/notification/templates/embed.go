package templates

import "embed"

// EmbeddedFS holds the embedded mail templates.
//
//go:embed files/*.tmpl
var EmbeddedFS embed.FS
