package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"apartinvest/server/internal/models"
)

// ToPoint converts coordinates to an orb point (lng, lat order).
func ToPoint(c models.Coordinates) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// DistanceM returns the great-circle distance between a and b in whole meters.
func DistanceM(a, b models.Coordinates) float64 {
	return math.Round(geo.DistanceHaversine(ToPoint(a), ToPoint(b)))
}

// FillDistances sets DistanceM on every nearby POI that has coordinates and no reported distance.
// Nothing happens when the project itself has no coordinates.
func FillDistances(e *models.Enrichment) {
	if e == nil || e.Coordinates == nil {
		return
	}
	for i := range e.Nearby {
		poi := &e.Nearby[i]
		if poi.Coordinates == nil || poi.DistanceM != nil {
			continue
		}
		d := DistanceM(*e.Coordinates, *poi.Coordinates)
		poi.DistanceM = &d
	}
}

// FeatureCollection renders every located project as a GeoJSON point feature.
func FeatureCollection(records []models.Property) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range records {
		if p.Enrichment == nil || p.Enrichment.Coordinates == nil {
			continue
		}
		f := geojson.NewFeature(ToPoint(*p.Enrichment.Coordinates))
		f.Properties["slug"] = p.Slug
		f.Properties["title"] = p.Title
		f.Properties["city"] = p.City
		f.Properties["status"] = string(p.Status)
		f.Properties["revPerM2Month"] = p.RevPerM2Month
		fc.Append(f)
	}
	return fc
}

// Bound returns the bounding box of all located projects, or false when none are located.
func Bound(records []models.Property) (orb.Bound, bool) {
	var mp orb.MultiPoint
	for _, p := range records {
		if p.Enrichment != nil && p.Enrichment.Coordinates != nil {
			mp = append(mp, ToPoint(*p.Enrichment.Coordinates))
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}, false
	}
	return mp.Bound(), true
}
