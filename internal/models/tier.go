package models

// CityTier groups cities by demand level for the daily-rate multiplier.
type CityTier string

const (
	TierCapital   CityTier = "capital"
	TierSecondary CityTier = "secondary"
	TierOther     CityTier = "other"
)
