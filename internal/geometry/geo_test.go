package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartinvest/server/internal/models"
)

func TestDistanceM(t *testing.T) {
	redSquare := models.Coordinates{Lat: 55.7539, Lng: 37.6208}
	bolshoi := models.Coordinates{Lat: 55.7601, Lng: 37.6186}

	d := DistanceM(redSquare, bolshoi)
	assert.InDelta(t, 700, d, 30)
	assert.Equal(t, 0.0, DistanceM(redSquare, redSquare))
}

func TestFillDistances(t *testing.T) {
	reported := 150.0
	e := &models.Enrichment{
		Coordinates: &models.Coordinates{Lat: 43.5855, Lng: 39.7231},
		Nearby: []models.POI{
			{Name: "Морвокзал", Coordinates: &models.Coordinates{Lat: 43.5800, Lng: 39.7200}},
			{Name: "Пляж", DistanceM: &reported},
			{Name: "Парк"},
		},
	}
	FillDistances(e)

	require.NotNil(t, e.Nearby[0].DistanceM)
	assert.Greater(t, *e.Nearby[0].DistanceM, 0.0)
	assert.Equal(t, 150.0, *e.Nearby[1].DistanceM)
	assert.Nil(t, e.Nearby[2].DistanceM)

	FillDistances(nil)
	noOrigin := &models.Enrichment{Nearby: []models.POI{{Name: "x", Coordinates: &models.Coordinates{}}}}
	FillDistances(noOrigin)
	assert.Nil(t, noOrigin.Nearby[0].DistanceM)
}

func TestFeatureCollectionAndBound(t *testing.T) {
	records := []models.Property{
		{Slug: "a", Enrichment: &models.Enrichment{Coordinates: &models.Coordinates{Lat: 55.75, Lng: 37.62}}},
		{Slug: "b"},
		{Slug: "c", Enrichment: &models.Enrichment{Coordinates: &models.Coordinates{Lat: 43.58, Lng: 39.72}}},
	}

	fc := FeatureCollection(records)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "a", fc.Features[0].Properties["slug"])
	assert.Equal(t, "c", fc.Features[1].Properties["slug"])

	b, ok := Bound(records)
	require.True(t, ok)
	assert.Equal(t, 37.62, b.Min[0])
	assert.Equal(t, 43.58, b.Min[1])
	assert.Equal(t, 39.72, b.Max[0])
	assert.Equal(t, 55.75, b.Max[1])

	_, ok = Bound(nil)
	assert.False(t, ok)
}
