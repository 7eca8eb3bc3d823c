// Package calculator derives comparable investment metrics from the primary inputs of a project.
//
// All functions are pure: identical inputs always produce identical outputs.
package calculator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"apartinvest/server/internal/models"
)

var (
	ErrInvalidPrice = errors.New("price must be a positive number")
	ErrInvalidArea  = errors.New("area must be a positive number")
)

// TierMultipliers scale the derived daily rate by city demand level.
var TierMultipliers = map[models.CityTier]float64{
	models.TierCapital:   1.2,
	models.TierSecondary: 1.0,
	models.TierOther:     0.85,
}

const daysPerMonth = 30

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	month   = decimal.NewFromInt(daysPerMonth)
)

// Input holds the primary figures of a unit. Percentages are in [0, 100].
type Input struct {
	Price              float64         `json:"price"`
	AreaM2             float64         `json:"areaM2"`
	AnnualYieldPercent float64         `json:"annualYieldPercent"`
	OccupancyPercent   float64         `json:"occupancyPercent"`
	Tier               models.CityTier `json:"cityTier"`
}

// Metrics are the derived figures. Nil PaybackYears or ADR means "unknown".
type Metrics struct {
	AnnualRevenue  float64  `json:"annualRevenue"`
	MonthlyRevenue float64  `json:"monthlyRevenue"`
	RevPerM2Month  float64  `json:"revPerM2Month"`
	NOIYear        float64  `json:"noiYear"`
	PaybackYears   *float64 `json:"paybackYears"`
	ADR            *float64 `json:"adr"`
}

// Multiplier returns the daily-rate multiplier of a tier. Unknown tiers count as "other".
func Multiplier(tier models.CityTier) float64 {
	if m, ok := TierMultipliers[tier]; ok {
		return m
	}
	return TierMultipliers[models.TierOther]
}

// Compute derives the investment metrics of in.
// Non-positive price or area is rejected; other invalid inputs degrade to unknown or zero figures.
func Compute(in Input) (Metrics, error) {
	if !positive(in.Price) {
		return Metrics{}, ErrInvalidPrice
	}
	if !positive(in.AreaM2) {
		return Metrics{}, ErrInvalidArea
	}

	yield := in.AnnualYieldPercent
	if !finite(yield) || yield < 0 {
		yield = 0
	}

	price := decimal.NewFromFloat(in.Price)
	annual := price.Mul(decimal.NewFromFloat(yield)).Div(hundred)
	monthly := annual.Div(twelve)
	rev := monthly.Div(decimal.NewFromFloat(in.AreaM2)).Round(0)
	noi := annual.Round(0)

	m := Metrics{
		AnnualRevenue:  annual.Round(0).InexactFloat64(),
		MonthlyRevenue: monthly.Round(0).InexactFloat64(),
		RevPerM2Month:  rev.InexactFloat64(),
		NOIYear:        noi.InexactFloat64(),
	}
	m.PaybackYears = Payback(in.Price, m.NOIYear)
	m.ADR = DailyRate(m.RevPerM2Month, in.OccupancyPercent, in.Tier)
	return m, nil
}

// Payback returns price/noi rounded to one decimal, or nil when noi is not positive.
func Payback(price, noi float64) *float64 {
	if !positive(noi) || !positive(price) {
		return nil
	}
	v := decimal.NewFromFloat(price).Div(decimal.NewFromFloat(noi)).Round(1).InexactFloat64()
	return &v
}

// DailyRate returns the average daily rate derived from monthly revenue per m², or nil when
// occupancy is not positive.
func DailyRate(revPerM2Month, occupancyPercent float64, tier models.CityTier) *float64 {
	if !positive(occupancyPercent) || !finite(revPerM2Month) || revPerM2Month < 0 {
		return nil
	}
	occupiedDays := decimal.NewFromFloat(occupancyPercent).Div(hundred).Mul(month)
	v := decimal.NewFromFloat(revPerM2Month).
		Mul(month).
		Div(occupiedDays).
		Mul(decimal.NewFromFloat(Multiplier(tier))).
		Round(0).
		InexactFloat64()
	return &v
}

// PricePerM2 returns price/area rounded to an integer, or nil for invalid inputs.
func PricePerM2(price, area float64) *float64 {
	if !positive(price) || !positive(area) {
		return nil
	}
	v := decimal.NewFromFloat(price).Div(decimal.NewFromFloat(area)).Round(0).InexactFloat64()
	return &v
}

// Fill derives the metrics a record does not report. Reported positive figures are kept,
// except a payback reported without a positive NOI, which becomes unknown.
func Fill(p *models.Property, tier models.CityTier) {
	if p.PricePerM2 == nil {
		p.PricePerM2 = PricePerM2(p.Price, p.Area)
	}

	if p.YieldPercent != nil {
		m, err := Compute(Input{
			Price:              p.Price,
			AreaM2:             p.Area,
			AnnualYieldPercent: *p.YieldPercent,
			OccupancyPercent:   p.Occupancy,
			Tier:               tier,
		})
		if err == nil {
			if !positive(p.RevPerM2Month) {
				p.RevPerM2Month = m.RevPerM2Month
			}
			if !positive(p.NOIYear) {
				p.NOIYear = m.NOIYear
			}
		}
	}

	// Payback is unknown without a positive NOI, whatever the source reported.
	if !positive(p.NOIYear) {
		p.PaybackYears = nil
	} else if p.PaybackYears == nil {
		p.PaybackYears = Payback(p.Price, p.NOIYear)
	}
	if p.ADR == nil {
		p.ADR = DailyRate(p.RevPerM2Month, p.Occupancy, tier)
	}
	if p.ADR != nil && *p.ADR == 0 {
		p.ADR = nil
	}
}

func positive(v float64) bool {
	return finite(v) && v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
