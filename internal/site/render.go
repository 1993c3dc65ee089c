package site

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type pageData struct {
	Title      string
	Host       string
	Paragraphs []string
}

// Render produces the HTML for a binding served under host. Body text is
// split into paragraphs on blank lines and escaped.
func Render(p *model.LandingPage, host string) ([]byte, error) {
	title := p.Title
	if title == "" {
		title = p.Name
	}
	data := pageData{Title: title, Host: host}
	for _, para := range strings.Split(strings.ReplaceAll(p.Body, "\r\n", "\n"), "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			data.Paragraphs = append(data.Paragraphs, para)
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
