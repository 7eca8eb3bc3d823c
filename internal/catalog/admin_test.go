package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartinvest/server/internal/validation"
)

func adminRequest(title string) map[string]any {
	return map[string]any{
		"title":     title,
		"country":   "Россия",
		"city":      "Сочи",
		"format":    "apartment",
		"status":    "construction",
		"price":     6_500_000,
		"area":      28,
		"riskLevel": "medium",
	}
}

func TestAdmin_AppendGeneratesUniqueSlugs(t *testing.T) {
	store, docs := newTestStore(t)
	put(t, docs, "projects", []any{record("sochi-park", "Сочи")})
	admin := NewAdmin(store, quietLogger())
	ctx := context.Background()

	first, err := admin.Append(ctx, adminRequest("Сочи Парк"))
	require.NoError(t, err)
	assert.Equal(t, "sochi-park-2", first.Slug)
	assert.Len(t, first.Seasonality, 12)
	assert.NotEmpty(t, first.Why)

	second, err := admin.Append(ctx, adminRequest("Сочи Парк"))
	require.NoError(t, err)
	assert.Equal(t, "sochi-park-3", second.Slug)

	listed, err := admin.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sochi-park-2", "sochi-park-3"}, slugs(listed))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sochi-park", "sochi-park-2", "sochi-park-3"}, slugs(snap.Records))
}

func TestAdmin_OccupancyConvertedOnce(t *testing.T) {
	store, docs := newTestStore(t)
	put(t, docs, "projects", []any{record("a", "Москва")})
	admin := NewAdmin(store, quietLogger())
	ctx := context.Background()

	req := adminRequest("Low Season")
	req["occupancy"] = 0.008
	p, err := admin.Append(ctx, req)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, p.Occupancy, 1e-9)

	overlay := record("gen", "Казань")
	overlay["occupancy"] = 0.008
	_, err = admin.ReplaceOverlay(ctx, "projects_generated", []byte(mustJSON(t, []any{overlay})))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		snap, err := store.Load(ctx)
		require.NoError(t, err)

		appended, ok := snap.Find(p.Slug)
		require.True(t, ok)
		assert.InDelta(t, 0.8, appended.Occupancy, 1e-9, "appended records are stored as percent")

		generated, ok := snap.Find("gen")
		require.True(t, ok)
		assert.InDelta(t, 0.8, generated.Occupancy, 1e-9, "overlay fractions are converted once per read")
	}
}

func TestAdmin_AppendIgnoresCallerSlug(t *testing.T) {
	store, docs := newTestStore(t)
	put(t, docs, "projects", []any{record("a", "Москва")})
	admin := NewAdmin(store, quietLogger())

	req := adminRequest("Park Siti")
	req["slug"] = "a"
	p, err := admin.Append(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "park-siti", p.Slug)
}

func TestAdmin_AppendMissingFields(t *testing.T) {
	store, docs := newTestStore(t)
	put(t, docs, "projects", []any{})
	admin := NewAdmin(store, quietLogger())

	req := adminRequest("Park")
	delete(req, "price")
	req["city"] = "  "

	_, err := admin.Append(context.Background(), req)
	var missing *validation.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"city", "price"}, missing.Fields)

	listed, err := admin.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAdmin_AppendInvalidRecord(t *testing.T) {
	store, docs := newTestStore(t)
	put(t, docs, "projects", []any{})
	admin := NewAdmin(store, quietLogger())

	req := adminRequest("Park")
	req["format"] = "castle"
	_, err := admin.Append(context.Background(), req)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"format"}, verr.Fields())
}

func TestAdmin_Delete(t *testing.T) {
	store, docs := newTestStore(t)
	put(t, docs, "projects", []any{record("canonical", "Москва")})
	admin := NewAdmin(store, quietLogger())
	ctx := context.Background()

	p, err := admin.Append(ctx, adminRequest("Park"))
	require.NoError(t, err)

	assert.ErrorIs(t, admin.Delete(ctx, "canonical"), ErrNotFound)
	require.NoError(t, admin.Delete(ctx, p.Slug))
	assert.ErrorIs(t, admin.Delete(ctx, p.Slug), ErrNotFound)

	listed, err := admin.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAdmin_ReplaceOverlay(t *testing.T) {
	store, docs := newTestStore(t)
	put(t, docs, "projects", []any{record("a", "Москва")})
	admin := NewAdmin(store, quietLogger())
	ctx := context.Background()

	payload := []byte(mustJSON(t, []any{record("g1", "Сочи"), record("g2", "Казань")}))
	n, err := admin.ReplaceOverlay(ctx, "projects_generated", payload)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "g1", "g2"}, slugs(snap.Records))

	replacement := []byte(mustJSON(t, []any{record("g3", "Сочи")}))
	_, err = admin.ReplaceOverlay(ctx, "projects_generated", replacement)
	require.NoError(t, err)

	snap, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "g3"}, slugs(snap.Records), "overlay is replaced, not merged")
}

func TestAdmin_ReplaceOverlayRejectsWholePayload(t *testing.T) {
	store, docs := newTestStore(t)
	put(t, docs, "projects", []any{record("a", "Москва")})
	put(t, docs, "projects_generated", []any{record("old", "Сочи")})
	admin := NewAdmin(store, quietLogger())
	ctx := context.Background()

	bad := record("bad", "Сочи")
	bad["riskLevel"] = "extreme"
	payload := []byte(mustJSON(t, []any{record("g1", "Сочи"), bad, 7}))

	_, err := admin.ReplaceOverlay(ctx, "projects_generated", payload)
	var oerr *OverlayError
	require.ErrorAs(t, err, &oerr)
	require.Len(t, oerr.Records, 2)
	assert.Equal(t, 1, oerr.Records[0].Index)
	assert.Equal(t, "bad", oerr.Records[0].Slug)
	assert.Equal(t, 2, oerr.Records[1].Index)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "old"}, slugs(snap.Records), "nothing written")
}

func TestAdmin_ReplaceOverlayGuards(t *testing.T) {
	store, _ := newTestStore(t)
	admin := NewAdmin(store, quietLogger())
	ctx := context.Background()

	_, err := admin.ReplaceOverlay(ctx, "projects", []byte("[]"))
	assert.ErrorIs(t, err, ErrUnknownOverlay)

	_, err = admin.ReplaceOverlay(ctx, "projects_generated", []byte(`{"a": {}}`))
	assert.ErrorIs(t, err, ErrNotArray)

	n, err := admin.ReplaceOverlay(ctx, "projects_generated", []byte("[]"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{title: "Park Siti", expected: "park-siti"},
		{title: "Сочи Парк", expected: "sochi-park"},
		{title: "  Sea -- View  ", expected: "sea-view"},
		{title: "snake_case_name", expected: "snake-case-name"},
		{title: "!!!", expected: "project"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := GenerateSlug(tt.title)
			assert.Equal(t, tt.expected, got)
			assert.True(t, validation.IsSlug(got))
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"a": true, "a-2": true}
	assert.Equal(t, "a-3", UniqueSlug("a", taken))
	assert.Equal(t, "b", UniqueSlug("b", taken))
}
