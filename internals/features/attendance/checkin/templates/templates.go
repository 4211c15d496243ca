// Package templates embeds the public check-in pages.
package templates

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html
var files embed.FS

// Engine is passed to fiber.Config.Views.
func Engine() *html.Engine {
	return html.NewFileSystem(http.FS(files), ".html")
}
