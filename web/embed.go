// Package web bundles the page templates and static assets into the binary.
package web

import "embed"

// TemplatesFS holds layout.html, partials.html and one file per page.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
