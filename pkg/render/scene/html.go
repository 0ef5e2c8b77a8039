package scene

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/matzehuels/taskweb/pkg/graph"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body { margin: 0; padding: 1rem; font-family: sans-serif; background: {{.Background}}; color: {{.Foreground}}; }
  main { max-width: {{.Width}}px; margin: 0 auto; }
</style>
</head>
<body>
<main>
{{.SVG}}
</main>
</body>
</html>
`))

// RenderHTML wraps the interactive SVG in a minimal page. Legend labels
// inherit the page foreground colour unless an option overrides them.
func RenderHTML(l graph.Layout, title string, opts ...Option) ([]byte, error) {
	return WrapHTML(RenderSVG(l, opts...), title, l.Width)
}

// WrapHTML embeds any SVG document in the page used by [RenderHTML]. An XML
// declaration before the root element is dropped.
func WrapHTML(doc []byte, title string, width float64) ([]byte, error) {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		doc = doc[i:]
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title      string
		Background template.CSS
		Foreground template.CSS
		Width      string
		SVG        template.HTML
	}{
		Title:      title,
		Background: "#1e1e1e",
		Foreground: "#f0f0f0",
		Width:      num(width),
		SVG:        template.HTML(doc),
	})
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
