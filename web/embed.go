// Package web holds the embedded HTML templates rendered into the static site.
package web

import "embed"

// TemplateFS contains all HTML templates.
//
//go:embed templates
var TemplateFS embed.FS
