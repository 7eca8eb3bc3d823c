// Package query filters, ranks and aggregates catalog snapshots. Every function is pure and
// returns zero values on empty input.
package query

import (
	"strings"

	"apartinvest/server/config"
	"apartinvest/server/internal/models"
)

// Filter narrows a catalog. All set criteria must match; string criteria are case-insensitive.
type Filter struct {
	Search    string           `form:"q"`
	Country   string           `form:"country"`
	City      string           `form:"city"`
	Format    models.Format    `form:"format"`
	Status    models.Status    `form:"status"`
	RiskLevel models.RiskLevel `form:"riskLevel"`
	MinPrice  *float64         `form:"minPrice"`
	MaxPrice  *float64         `form:"maxPrice"`
	MinArea   *float64         `form:"minArea"`
	MaxArea   *float64         `form:"maxArea"`
}

// IsEmpty reports whether f has no criteria.
func (f *Filter) IsEmpty() bool {
	return f == nil || (strings.TrimSpace(f.Search) == "" && f.Country == "" && f.City == "" &&
		f.Format == "" && f.Status == "" && f.RiskLevel == "" &&
		f.MinPrice == nil && f.MaxPrice == nil && f.MinArea == nil && f.MaxArea == nil)
}

// Matches checks if a record matches the filter criteria
func (f *Filter) Matches(p *models.Property) bool {
	if f == nil {
		return true
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.City), q) &&
			!strings.Contains(strings.ToLower(p.Country), q) {
			return false
		}
	}

	if f.Country != "" && !strings.EqualFold(strings.TrimSpace(f.Country), p.Country) {
		return false
	}
	if f.City != "" && !sameCity(f.City, p.City) {
		return false
	}
	if f.Format != "" && !strings.EqualFold(string(f.Format), string(p.Format)) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(string(f.Status), string(p.Status)) {
		return false
	}
	if f.RiskLevel != "" && !strings.EqualFold(string(f.RiskLevel), string(p.RiskLevel)) {
		return false
	}

	// Check price range
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}

	// Check area range
	if f.MinArea != nil && p.Area < *f.MinArea {
		return false
	}
	if f.MaxArea != nil && p.Area > *f.MaxArea {
		return false
	}

	return true
}

// sameCity compares city names in any case or script, so "moskva" matches "Москва".
func sameCity(want, got string) bool {
	want = strings.TrimSpace(want)
	if strings.EqualFold(want, got) {
		return true
	}
	key := config.NormalizeCity(want)
	return key != "" && key == config.NormalizeCity(got)
}

// Apply returns the records matching f in their original order.
// An empty filter returns records unchanged.
func Apply(records []models.Property, f *Filter) []models.Property {
	if f.IsEmpty() {
		return records
	}
	out := make([]models.Property, 0, len(records))
	for i := range records {
		if f.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}
