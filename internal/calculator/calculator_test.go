package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartinvest/server/internal/models"
)

func TestCompute_ReferenceScenario(t *testing.T) {
	m, err := Compute(Input{
		Price:              10_000_000,
		AreaM2:             40,
		AnnualYieldPercent: 12,
		OccupancyPercent:   75,
		Tier:               models.TierCapital,
	})
	require.NoError(t, err)

	assert.Equal(t, 1_200_000.0, m.AnnualRevenue)
	assert.Equal(t, 100_000.0, m.MonthlyRevenue)
	assert.Equal(t, 2500.0, m.RevPerM2Month)
	assert.Equal(t, 1_200_000.0, m.NOIYear)
	require.NotNil(t, m.PaybackYears)
	assert.Equal(t, 8.3, *m.PaybackYears)
	require.NotNil(t, m.ADR)
	assert.Equal(t, 4000.0, *m.ADR)
}

func TestCompute_Deterministic(t *testing.T) {
	inputs := []Input{
		{Price: 10_000_000, AreaM2: 40, AnnualYieldPercent: 12, OccupancyPercent: 75, Tier: models.TierCapital},
		{Price: 7_350_000, AreaM2: 23.5, AnnualYieldPercent: 9.7, OccupancyPercent: 63, Tier: models.TierSecondary},
		{Price: 4_100_000, AreaM2: 18, AnnualYieldPercent: 0, OccupancyPercent: 0, Tier: models.TierOther},
	}
	for _, in := range inputs {
		first, err := Compute(in)
		require.NoError(t, err)
		second, err := Compute(in)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestCompute_TierMultipliers(t *testing.T) {
	tests := []struct {
		tier     models.CityTier
		expected float64
	}{
		{tier: models.TierCapital, expected: 4000},
		{tier: models.TierSecondary, expected: 3333},
		{tier: models.TierOther, expected: 2833},
		{tier: "unknown", expected: 2833},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			m, err := Compute(Input{Price: 10_000_000, AreaM2: 40, AnnualYieldPercent: 12, OccupancyPercent: 75, Tier: tt.tier})
			require.NoError(t, err)
			require.NotNil(t, m.ADR)
			assert.Equal(t, tt.expected, *m.ADR)
		})
	}
}

func TestCompute_UnknownFigures(t *testing.T) {
	m, err := Compute(Input{Price: 5_000_000, AreaM2: 30, AnnualYieldPercent: 0, OccupancyPercent: 0})
	require.NoError(t, err)
	assert.Zero(t, m.NOIYear)
	assert.Nil(t, m.PaybackYears, "payback is unknown when NOI is not positive")
	assert.Nil(t, m.ADR, "daily rate is unknown without occupancy")

	m, err = Compute(Input{Price: 5_000_000, AreaM2: 30, AnnualYieldPercent: math.NaN(), OccupancyPercent: 70})
	require.NoError(t, err)
	assert.Nil(t, m.PaybackYears)
}

func TestCompute_RejectsInvalidPrimaryInputs(t *testing.T) {
	_, err := Compute(Input{Price: 0, AreaM2: 40})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = Compute(Input{Price: -5, AreaM2: 40})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = Compute(Input{Price: 1_000_000, AreaM2: 0})
	assert.ErrorIs(t, err, ErrInvalidArea)

	_, err = Compute(Input{Price: 1_000_000, AreaM2: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInvalidArea)
}

func TestPayback(t *testing.T) {
	assert.Nil(t, Payback(1_000_000, 0))
	assert.Nil(t, Payback(1_000_000, -10))
	p := Payback(9_000_000, 1_000_000)
	require.NotNil(t, p)
	assert.Equal(t, 9.0, *p)
}

func TestFill(t *testing.T) {
	yield := 12.0
	p := &models.Property{
		Price:        10_000_000,
		Area:         40,
		YieldPercent: &yield,
		Occupancy:    75,
	}
	Fill(p, models.TierCapital)

	assert.Equal(t, 2500.0, p.RevPerM2Month)
	assert.Equal(t, 1_200_000.0, p.NOIYear)
	require.NotNil(t, p.PaybackYears)
	assert.Equal(t, 8.3, *p.PaybackYears)
	require.NotNil(t, p.ADR)
	assert.Equal(t, 4000.0, *p.ADR)
	require.NotNil(t, p.PricePerM2)
	assert.Equal(t, 250_000.0, *p.PricePerM2)
}

func TestFill_KeepsReportedFigures(t *testing.T) {
	yield := 12.0
	payback := 7.5
	p := &models.Property{
		Price:         10_000_000,
		Area:          40,
		YieldPercent:  &yield,
		RevPerM2Month: 3100,
		PaybackYears:  &payback,
	}
	Fill(p, models.TierSecondary)

	assert.Equal(t, 3100.0, p.RevPerM2Month)
	assert.Equal(t, 1_200_000.0, p.NOIYear)
	assert.Equal(t, 7.5, *p.PaybackYears)
	assert.Nil(t, p.ADR, "no occupancy, no daily rate")
}

func TestFill_WithoutYieldLeavesMetricsUnknown(t *testing.T) {
	p := &models.Property{Price: 6_000_000, Area: 25, Occupancy: 80}
	Fill(p, models.TierOther)

	assert.Zero(t, p.RevPerM2Month)
	assert.Zero(t, p.NOIYear)
	assert.Nil(t, p.PaybackYears)
	assert.Nil(t, p.ADR)
}

func TestFill_PaybackUnknownWithoutNOI(t *testing.T) {
	tests := []struct {
		name string
		p    models.Property
	}{
		{name: "reported payback, no yield", p: models.Property{Price: 10_000_000, Area: 40}},
		{name: "reported payback, zero yield", p: models.Property{Price: 10_000_000, Area: 40, YieldPercent: new(float64)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payback := 7.5
			p := tt.p
			p.PaybackYears = &payback
			Fill(&p, models.TierCapital)

			assert.Zero(t, p.NOIYear)
			assert.Nil(t, p.PaybackYears)
		})
	}
}
