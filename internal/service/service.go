package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

const homeTemplate = "index.html"

//go:embed templates/*.html
var templateFS embed.FS

// Page holds the values injected into the home page.
type Page struct {
	HeaderText string
	ImageURL   string
}

// Service renders pages from a fixed Page snapshot taken at startup.
type Service struct {
	page Page
	tmpl *template.Template
}

// ParseTemplates parses the embedded template set.
func ParseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func New(page Page, tmpl *template.Template) *Service {
	return &Service{page: page, tmpl: tmpl}
}

// RenderHome returns the rendered home page.
func (s *Service) RenderHome() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, homeTemplate, s.page); err != nil {
		return nil, fmt.Errorf("render %s: %w", homeTemplate, err)
	}
	return buf.Bytes(), nil
}
