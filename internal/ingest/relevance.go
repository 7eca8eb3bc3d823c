package ingest

import (
	"strings"

	"apartinvest/server/internal/models"
)

// minTitleMatch is the shortest project title matched against free text.
const minTitleMatch = 4

// Relevant reports whether text contains any of keywords, ignoring case.
// An empty keyword list matches nothing.
func Relevant(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// MatchProjects returns the slugs of the projects whose title or slug occurs in text.
func MatchProjects(text string, records []models.Property) []string {
	lower := strings.ToLower(text)
	var slugs []string
	for _, p := range records {
		title := strings.ToLower(strings.TrimSpace(p.Title))
		if len([]rune(title)) >= minTitleMatch && strings.Contains(lower, title) {
			slugs = append(slugs, p.Slug)
			continue
		}
		if strings.Contains(p.Slug, "-") && strings.Contains(lower, p.Slug) {
			slugs = append(slugs, p.Slug)
		}
	}
	return slugs
}
