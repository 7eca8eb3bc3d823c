package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartinvest/server/internal/models"
)

func validRecord() map[string]any {
	return map[string]any{
		"slug":          "park-siti",
		"title":         "Апарт-отель Парк Сити",
		"country":       "Россия",
		"city":          "Москва",
		"format":        "apart-hotel",
		"status":        "active",
		"price":         10_000_000.0,
		"area":          40.0,
		"revPerM2Month": 2500.0,
		"noiYear":       1_200_000.0,
		"paybackYears":  8.3,
		"occupancy":     75.0,
		"adr":           4000.0,
		"riskLevel":     "low",
		"summary":       "Сервисные апартаменты у парка",
		"why":           []any{"Управляющая компания с историей"},
		"risks":         []any{"Сезонность спроса"},
		"seasonality":   []any{80.0, 85.0, 90.0, 95.0, 100.0, 110.0, 120.0, 120.0, 105.0, 95.0, 85.0, 90.0},
	}
}

func TestValidate_ValidRecord(t *testing.T) {
	p, err := Validate(validRecord())
	require.NoError(t, err)
	assert.Equal(t, "park-siti", p.Slug)
	assert.Equal(t, models.FormatApartHotel, p.Format)
	assert.Equal(t, models.StatusActive, p.Status)
	assert.Len(t, p.Seasonality, models.SeasonalityMonths)
	require.NotNil(t, p.PaybackYears)
	assert.InDelta(t, 8.3, *p.PaybackYears, 1e-9)
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	raw := validRecord()
	raw["format"] = "castle"
	raw["status"] = "sold"
	raw["riskLevel"] = "extreme"
	raw["price"] = -1.0
	raw["area"] = 0.0
	raw["seasonality"] = []any{1.0, 2.0, 3.0}

	_, err := Validate(raw)
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "park-siti", verr.Slug)
	assert.ElementsMatch(t,
		[]string{"format", "status", "riskLevel", "price", "area", "seasonality"},
		verr.Fields())
}

func TestValidate_TypeErrors(t *testing.T) {
	raw := validRecord()
	raw["price"] = "десять миллионов"
	raw["why"] = "not a list"
	raw["seasonality"] = []any{"a", 1.0}

	_, err := Validate(raw)
	var verr *Error
	require.True(t, errors.As(err, &verr))

	rules := map[string]string{}
	for _, v := range verr.Violations {
		rules[v.Field] = v.Rule
	}
	assert.Equal(t, "type", rules["price"])
	assert.Equal(t, "type", rules["why"])
	assert.Equal(t, "type", rules["seasonality"])
}

func TestValidate_MissingRequired(t *testing.T) {
	raw := validRecord()
	delete(raw, "slug")
	delete(raw, "seasonality")
	delete(raw, "price")

	_, err := Validate(raw)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"slug", "seasonality", "price"}, verr.Fields())
	for _, v := range verr.Violations {
		assert.Equal(t, "required", v.Rule)
	}
}

func TestValidate_Defaults(t *testing.T) {
	raw := validRecord()
	delete(raw, "why")
	raw["risks"] = []any{}
	raw["paybackYears"] = 0.0
	raw["adr"] = nil

	p, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, DefaultWhy, p.Why)
	assert.Equal(t, DefaultRisks, p.Risks)
	assert.Nil(t, p.PaybackYears, "zero payback means unknown")
	assert.Nil(t, p.ADR)
}

func TestValidate_OccupancyFractionConverted(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "fraction", input: 0.75, expected: 75},
		{name: "full fraction", input: 1, expected: 100},
		{name: "percent", input: 68, expected: 68},
		{name: "zero", input: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRecord()
			raw["occupancy"] = tt.input
			p, err := Validate(raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, p.Occupancy, 1e-9)
		})
	}
}

func TestValidateStored_KeepsPercent(t *testing.T) {
	raw := validRecord()
	raw["occupancy"] = 0.8

	p, err := ValidateStored(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.8, p.Occupancy, "stored records are already percentages")

	p, err = Validate(raw)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, p.Occupancy, 1e-9)
}

func TestFromFieldErrors(t *testing.T) {
	type request struct {
		Name  string `json:"name" validate:"required"`
		Phone string `json:"phone" validate:"required_without=Email"`
		Email string `json:"email" validate:"omitempty,email"`
	}
	err := validator.New().Struct(request{Email: "nope"})
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)

	missing, violations := FromFieldErrors(errs, func(fe validator.FieldError) string {
		return strings.ToLower(fe.StructField())
	})
	assert.Equal(t, []string{"name"}, missing)
	require.Len(t, violations, 1)
	assert.Equal(t, "email", violations[0].Field)
	assert.Equal(t, "must be a valid email", violations[0].Message)
}

func TestValidate_OccupancyOutOfRange(t *testing.T) {
	raw := validRecord()
	raw["occupancy"] = 140.0

	_, err := Validate(raw)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"occupancy"}, verr.Fields())
}

func TestValidate_BadSlugAndLink(t *testing.T) {
	raw := validRecord()
	raw["slug"] = "Парк Сити"
	raw["link"] = "not a url"

	_, err := Validate(raw)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"slug", "link"}, verr.Fields())
}

func TestValidate_InlineEnrichment(t *testing.T) {
	raw := validRecord()
	raw["enrichment"] = map[string]any{
		"rating":      11.0,
		"coordinates": map[string]any{"lat": 55.75, "lng": 37.61},
	}

	_, err := Validate(raw)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"enrichment.rating"}, verr.Fields())
}

func TestValidateEnrichment(t *testing.T) {
	rating := 4.7
	year := 2019
	ok := &models.Enrichment{
		Rating:       &rating,
		Coordinates:  &models.Coordinates{Lat: 43.58, Lng: 39.72},
		OpeningYear:  &year,
		Photos:       []string{"https://cdn.example.com/1.jpg"},
		BookingLinks: []models.BookingLink{{Provider: "ostrovok", URL: "https://ostrovok.ru/hotel/1"}},
	}
	assert.NoError(t, ValidateEnrichment(ok))

	bad := &models.Enrichment{
		Coordinates:  &models.Coordinates{Lat: 120, Lng: 39.72},
		Nearby:       []models.POI{{Name: ""}},
		BookingLinks: []models.BookingLink{{Provider: "x", URL: "::"}},
	}
	err := ValidateEnrichment(bad)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t,
		[]string{"coordinates.lat", "nearby[0].name", "bookingLinks[0].url"},
		verr.Fields())
}

func TestRequireFields(t *testing.T) {
	raw := map[string]any{"title": "  ", "city": "Сочи", "price": nil}

	err := RequireFields(raw, "title", "city", "price", "area")
	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"title", "price", "area"}, missing.Fields)

	assert.NoError(t, RequireFields(raw, "city"))
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("park-siti-2"))
	assert.False(t, IsSlug("park--siti"))
	assert.False(t, IsSlug("-park"))
	assert.False(t, IsSlug("Park"))
	assert.False(t, IsSlug(""))
}
