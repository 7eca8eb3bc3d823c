package query

import (
	"sort"

	"apartinvest/server/internal/models"
)

// TopByYield returns up to n records by descending revPerM2Month. Ties keep catalog order.
func TopByYield(records []models.Property, n int) []models.Property {
	sorted := clone(records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RevPerM2Month > sorted[j].RevPerM2Month
	})
	return take(sorted, n)
}

// TopByStability returns up to n low-risk records by ascending payback period.
// Records with unknown payback come last. Ties keep catalog order.
func TopByStability(records []models.Property, n int) []models.Property {
	low := make([]models.Property, 0, len(records))
	for _, r := range records {
		if r.RiskLevel == models.RiskLow {
			low = append(low, r)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		a, b := low[i].PaybackYears, low[j].PaybackYears
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
	return take(low, n)
}

func clone(records []models.Property) []models.Property {
	out := make([]models.Property, len(records))
	copy(out, records)
	return out
}

func take(records []models.Property, n int) []models.Property {
	if n < 0 {
		n = 0
	}
	if n < len(records) {
		return records[:n]
	}
	return records
}
