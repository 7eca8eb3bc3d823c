package query

import (
	"fmt"
	"sort"
	"strconv"

	"apartinvest/server/config"
	"apartinvest/server/internal/models"
)

// Field is a numeric record field that can be averaged.
type Field string

const (
	FieldRevPerM2Month Field = "revPerM2Month"
	FieldNOIYear       Field = "noiYear"
	FieldPaybackYears  Field = "paybackYears"
	FieldOccupancy     Field = "occupancy"
	FieldADR           Field = "adr"
	FieldPrice         Field = "price"
	FieldPricePerM2    Field = "pricePerM2"
)

// Fields lists every averageable field.
var Fields = []Field{
	FieldRevPerM2Month, FieldNOIYear, FieldPaybackYears, FieldOccupancy, FieldADR, FieldPrice, FieldPricePerM2,
}

// DefaultHistogramBounds split revPerM2Month into <1500, 1500-2000, 2000-2500, 2500-3000 and 3000+.
var DefaultHistogramBounds = []float64{1500, 2000, 2500, 3000}

// ParseField resolves a field name.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", name)
}

// Value returns the field of p. Unknown values (nil pointers) report false.
func (f Field) Value(p *models.Property) (float64, bool) {
	switch f {
	case FieldRevPerM2Month:
		return p.RevPerM2Month, true
	case FieldNOIYear:
		return p.NOIYear, true
	case FieldPaybackYears:
		return deref(p.PaybackYears)
	case FieldOccupancy:
		return p.Occupancy, true
	case FieldADR:
		return deref(p.ADR)
	case FieldPrice:
		return p.Price, true
	case FieldPricePerM2:
		return deref(p.PricePerM2)
	}
	return 0, false
}

func deref(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// MarketAverage is the mean of field over active records whose value is known and positive.
func MarketAverage(records []models.Property, field Field) float64 {
	var m mean
	for i := range records {
		if !records[i].IsActive() {
			continue
		}
		if v, ok := field.Value(&records[i]); ok {
			m.add(v)
		}
	}
	return m.value()
}

// MarketStats holds the market average of every field.
type MarketStats struct {
	ActiveCount int               `json:"activeCount"`
	Averages    map[Field]float64 `json:"averages"`
}

// Market computes MarketAverage for every field.
func Market(records []models.Property) MarketStats {
	stats := MarketStats{Averages: make(map[Field]float64, len(Fields))}
	for i := range records {
		if records[i].IsActive() {
			stats.ActiveCount++
		}
	}
	for _, f := range Fields {
		stats.Averages[f] = MarketAverage(records, f)
	}
	return stats
}

// CityStats groups active records by city. Cities are ordered by count, then by name.
// Means cover positive values only; min and max price cover positive prices.
func CityStats(records []models.Property) []models.CityStats {
	type acc struct {
		stats                       models.CityStats
		rev, noi, payback, occ, adr mean
		minPrice, maxPrice          float64
	}

	groups := make(map[string]*acc)
	var order []string
	for i := range records {
		p := &records[i]
		if !p.IsActive() {
			continue
		}
		key := config.NormalizeCity(p.City)
		g, ok := groups[key]
		if !ok {
			g = &acc{stats: models.CityStats{City: p.City}}
			groups[key] = g
			order = append(order, key)
		}
		g.stats.Count++
		g.rev.add(p.RevPerM2Month)
		g.noi.add(p.NOIYear)
		g.occ.add(p.Occupancy)
		if v, ok := deref(p.PaybackYears); ok {
			g.payback.add(v)
		}
		if v, ok := deref(p.ADR); ok {
			g.adr.add(v)
		}
		if p.Price > 0 {
			if g.minPrice == 0 || p.Price < g.minPrice {
				g.minPrice = p.Price
			}
			if p.Price > g.maxPrice {
				g.maxPrice = p.Price
			}
		}
	}

	out := make([]models.CityStats, 0, len(order))
	for _, key := range order {
		g := groups[key]
		s := g.stats
		s.AvgRevPerM2Month = g.rev.value()
		s.AvgNOIYear = g.noi.value()
		s.AvgPaybackYears = g.payback.value()
		s.AvgOccupancy = g.occ.value()
		s.AvgADR = g.adr.value()
		s.MinPrice = g.minPrice
		s.MaxPrice = g.maxPrice
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].City < out[j].City
	})
	return out
}

// Histogram counts active records with positive revPerM2Month into len(bounds)+1 buckets.
// Lower bounds are inclusive. Nil bounds use DefaultHistogramBounds.
func Histogram(records []models.Property, bounds []float64) []models.Bucket {
	if bounds == nil {
		bounds = DefaultHistogramBounds
	}
	bounds = append([]float64(nil), bounds...)
	sort.Float64s(bounds)

	buckets := make([]models.Bucket, len(bounds)+1)
	for i := range buckets {
		var lower, upper *float64
		if i > 0 {
			lower = &bounds[i-1]
		}
		if i < len(bounds) {
			upper = &bounds[i]
		}
		buckets[i] = models.Bucket{Label: bucketLabel(lower, upper), Lower: lower, Upper: upper}
	}

	for i := range records {
		p := &records[i]
		if !p.IsActive() || !p.HasYield() {
			continue
		}
		v := p.RevPerM2Month
		buckets[sort.Search(len(bounds), func(i int) bool { return bounds[i] > v })].Count++
	}
	return buckets
}

func bucketLabel(lower, upper *float64) string {
	switch {
	case lower == nil && upper == nil:
		return "all"
	case lower == nil:
		return "<" + num(*upper)
	case upper == nil:
		return num(*lower) + "+"
	}
	return num(*lower) + "-" + num(*upper)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Summarize computes the catalog-wide totals and price figures.
func Summarize(records []models.Property) models.PropertyStats {
	stats := models.PropertyStats{TotalProperties: len(records)}

	var prices []float64
	var perM2 mean
	for i := range records {
		p := &records[i]
		if p.IsActive() {
			stats.TotalActive++
		}
		if p.Price > 0 {
			prices = append(prices, p.Price)
		}
		if v, ok := deref(p.PricePerM2); ok {
			perM2.add(v)
		} else if p.Price > 0 && p.Area > 0 {
			perM2.add(p.Price / p.Area)
		}
	}

	var avg mean
	for _, v := range prices {
		avg.add(v)
	}
	stats.AveragePrice = avg.value()
	stats.MedianPrice = median(prices)
	stats.PricePerSqm = perM2.value()
	return stats
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// mean accumulates positive values.
type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	if v > 0 {
		m.sum += v
		m.count++
	}
}

func (m *mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
