package ui

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed help.md
var helpSource []byte

func (a *App) handleHelp(w http.ResponseWriter, r *http.Request) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.ToHTML(helpSource, p, renderer)

	a.render(w, "help.html", map[string]interface{}{
		"Content": template.HTML(rendered),
	})
}
