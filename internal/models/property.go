package models

// Format is the kind of investable unit.
type Format string

const (
	FormatApartment  Format = "apartment"
	FormatHotel      Format = "hotel"
	FormatHostel     Format = "hostel"
	FormatApartHotel Format = "apart-hotel"
	FormatGuesthouse Format = "guesthouse"
)

// Status is the lifecycle stage of a project.
type Status string

const (
	StatusActive       Status = "active"
	StatusPlanning     Status = "planning"
	StatusConstruction Status = "construction"
	StatusCompleted    Status = "completed"
)

// RiskLevel is the editorial risk grade of a project.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SeasonalityMonths is the number of entries in a seasonality profile.
const SeasonalityMonths = 12

// Property is one investable unit of the catalog.
//
// Zero RevPerM2Month and NOIYear mean "unknown". PaybackYears and ADR are nil when unknown.
// Occupancy is always a percentage in [0, 100].
type Property struct {
	Slug    string `json:"slug" validate:"required,slug"`
	Title   string `json:"title" validate:"required"`
	Country string `json:"country" validate:"required"`
	City    string `json:"city" validate:"required"`

	Format    Format    `json:"format" validate:"required,oneof=apartment hotel hostel apart-hotel guesthouse"`
	Status    Status    `json:"status" validate:"required,oneof=active planning construction completed"`
	RiskLevel RiskLevel `json:"riskLevel" validate:"required,oneof=low medium high"`

	Price        float64  `json:"price" validate:"finite,gte=0"`
	Area         float64  `json:"area" validate:"finite,gt=0"`
	YieldPercent *float64 `json:"yieldPercent,omitempty" validate:"omitempty,finite,gte=0,lte=100"`

	RevPerM2Month float64  `json:"revPerM2Month" validate:"finite,gte=0"`
	NOIYear       float64  `json:"noiYear" validate:"finite,gte=0"`
	PaybackYears  *float64 `json:"paybackYears" validate:"omitempty,finite,gt=0"`
	Occupancy     float64  `json:"occupancy" validate:"finite,gte=0,lte=100"`
	ADR           *float64 `json:"adr" validate:"omitempty,finite,gte=0"`

	Summary     string    `json:"summary"`
	Why         []string  `json:"why" validate:"min=1,dive,required"`
	Risks       []string  `json:"risks" validate:"min=1,dive,required"`
	Seasonality []float64 `json:"seasonality" validate:"len=12,dive,finite,gte=0"`

	Developer      string   `json:"developer,omitempty"`
	CompletionDate string   `json:"completionDate,omitempty"`
	PricePerM2     *float64 `json:"pricePerM2,omitempty" validate:"omitempty,finite,gte=0"`
	Link           string   `json:"link,omitempty" validate:"omitempty,url"`

	Enrichment *Enrichment `json:"enrichment,omitempty" validate:"-"`
}

// IsActive reports whether the project is currently operating.
func (p *Property) IsActive() bool {
	return p.Status == StatusActive
}

// HasYield reports whether the monthly revenue per m² is known.
func (p *Property) HasYield() bool {
	return p.RevPerM2Month > 0
}

// PropertyStats is the catalog-wide summary.
type PropertyStats struct {
	TotalProperties int     `json:"totalProperties"`
	TotalActive     int     `json:"totalActive"`
	AveragePrice    float64 `json:"averagePrice"`
	MedianPrice     float64 `json:"medianPrice"`
	PricePerSqm     float64 `json:"pricePerSqm"`
}

// CityStats aggregates active projects of one city.
type CityStats struct {
	City             string  `json:"city"`
	Count            int     `json:"count"`
	AvgRevPerM2Month float64 `json:"avgRevPerM2Month"`
	AvgNOIYear       float64 `json:"avgNoiYear"`
	AvgPaybackYears  float64 `json:"avgPaybackYears"`
	AvgOccupancy     float64 `json:"avgOccupancy"`
	AvgADR           float64 `json:"avgAdr"`
	MinPrice         float64 `json:"minPrice"`
	MaxPrice         float64 `json:"maxPrice"`
}

// Bucket is one histogram bin. Lower is inclusive and Upper exclusive; nil means unbounded.
type Bucket struct {
	Label string   `json:"label"`
	Lower *float64 `json:"lower"`
	Upper *float64 `json:"upper"`
	Count int      `json:"count"`
}
