package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer turns coach and analysis text, which the model writes as
// markdown, into HTML.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)
	return &Renderer{md: md}
}

func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body class="{{.Theme}}">
<main>
{{.Body}}
</main>
</body>
</html>
`))

// WritePage renders source as a standalone HTML document.
func (r *Renderer) WritePage(w io.Writer, title, theme string, source []byte) error {
	body, err := r.Render(source)
	if err != nil {
		return err
	}
	if err := pageTemplate.Execute(w, struct {
		Title string
		Theme string
		Body  template.HTML
	}{Title: title, Theme: theme, Body: template.HTML(body)}); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	return nil
}
