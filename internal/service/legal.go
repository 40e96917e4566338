package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goalhub/goalhub/internal/markdown"
)

type LegalPage struct {
	Title   string
	Slug    string
	Content string
}

// LegalService serves static policy pages (privacy, terms) rendered from
// markdown files under <contentDir>/legal.
type LegalService struct {
	contentDir string
}

func NewLegalService(contentDir string) *LegalService {
	return &LegalService{
		contentDir: filepath.Join(contentDir, "legal"),
	}
}

func (s *LegalService) Page(slug string) (*LegalPage, error) {
	// Reject anything that could escape the content directory.
	if slug == "" || strings.ContainsAny(slug, "./\\") {
		return nil, fmt.Errorf("page not found: %s", slug)
	}

	source, err := os.ReadFile(filepath.Join(s.contentDir, slug+".md"))
	if err != nil {
		return nil, fmt.Errorf("page not found: %s", slug)
	}

	html, meta, err := markdown.NewParser().ParseWithFrontmatter(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", slug, err)
	}

	title, _ := meta["title"].(string)
	if title == "" {
		title = cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
	}

	return &LegalPage{
		Title:   title,
		Slug:    slug,
		Content: string(html),
	}, nil
}
