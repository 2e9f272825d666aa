package report

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// sectionMarker matches the bracketed section lines written by Markdown.
var sectionMarker = regexp.MustCompile(`(?m)^\[([A-Z][A-Z -]*)\]$`)

// entities neutralises markup carried in by column names and cell values.
var entities = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html><html><head><meta charset="utf-8"/><title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<style>body{font-family:Inter,ui-sans-serif,system-ui,Segoe UI,Roboto,Helvetica,Arial,Noto Sans,sans-serif;color:#111827;padding:24px;max-width:960px;margin:0 auto} h1,h2{color:#111827} .muted{color:#6b7280} table{border-collapse:collapse} td,th{border:1px solid #e5e7eb;padding:4px 8px}</style>
</head><body>{{.Body}}</body></html>
`))

// HTML converts a Markdown report into a standalone HTML document.
func HTML(md string) ([]byte, error) {
	src := sectionMarker.ReplaceAll([]byte(entities.Replace(md)), []byte("## $1\n"))
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML})
	body := markdown.ToHTML(src, p, r)

	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: "Analysis Report", Body: template.HTML(body)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
