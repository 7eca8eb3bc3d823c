package config

import (
	"sync"

	"github.com/gosimple/slug"

	"apartinvest/server/internal/models"
)

// City represents a city configuration
type City struct {
	Name string          `json:"name"`
	Tier models.CityTier `json:"tier"`
}

// SupportedCities is the built-in tier table. Cities not listed are "other".
var SupportedCities = []City{
	{Name: "Москва", Tier: models.TierCapital},
	{Name: "Санкт-Петербург", Tier: models.TierCapital},
	{Name: "Сочи", Tier: models.TierSecondary},
	{Name: "Казань", Tier: models.TierSecondary},
	{Name: "Екатеринбург", Tier: models.TierSecondary},
	{Name: "Новосибирск", Tier: models.TierSecondary},
	{Name: "Калининград", Tier: models.TierSecondary},
	{Name: "Нижний Новгород", Tier: models.TierSecondary},
	{Name: "Краснодар", Tier: models.TierSecondary},
	{Name: "Алтай", Tier: models.TierSecondary},
}

var (
	citiesLock sync.RWMutex
	cities     = SupportedCities
	tierByCity = buildTierIndex(SupportedCities)
)

func buildTierIndex(list []City) map[string]models.CityTier {
	index := make(map[string]models.CityTier, len(list))
	for _, c := range list {
		index[NormalizeCity(c.Name)] = c.Tier
	}
	return index
}

// SetCities replaces the tier table.
func SetCities(list []City) {
	list = append([]City(nil), list...)
	index := buildTierIndex(list)

	citiesLock.Lock()
	defer citiesLock.Unlock()
	cities = list
	tierByCity = index
}

// Cities returns a copy of the tier table.
func Cities() []City {
	citiesLock.RLock()
	defer citiesLock.RUnlock()
	return append([]City(nil), cities...)
}

// NormalizeCity transliterates and lowercases a city name into a comparable key,
// e.g. "Санкт-Петербург" becomes "sankt-peterburg".
func NormalizeCity(name string) string {
	return slug.Make(name)
}

// GetCityNames returns a list of supported city names
func GetCityNames() []string {
	list := Cities()
	names := make([]string, len(list))
	for i, city := range list {
		names[i] = city.Name
	}
	return names
}

// TierForCity returns the demand tier of a city, matching names in any script or case.
func TierForCity(name string) models.CityTier {
	key := NormalizeCity(name)

	citiesLock.RLock()
	defer citiesLock.RUnlock()
	if tier, ok := tierByCity[key]; ok {
		return tier
	}
	return models.TierOther
}
