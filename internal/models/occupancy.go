package models

// OccupancyPercent converts an occupancy value received at an input boundary to a percentage.
// Values in (0, 1] are fractions and are scaled to percent; everything else is already a percentage.
func OccupancyPercent(v float64) float64 {
	if v > 0 && v <= 1 {
		return v * 100
	}
	return v
}

// OccupancyFraction converts a stored percentage to a fraction in [0, 1].
func OccupancyFraction(percent float64) float64 {
	return percent / 100
}
