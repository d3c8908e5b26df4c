// Package web holds the single page UI served at "/".
package web

import (
	"embed"
	"html/template"
)

//go:embed index.html
var files embed.FS

// Templates parses the embedded page; it panics on a broken template.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "index.html"))
}
