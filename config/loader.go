package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"apartinvest/server/internal/models"
)

// CitiesConfig is the layout of the optional city tier file.
type CitiesConfig struct {
	Cities []City `json:"cities"`
}

// LoadCities replaces the tier table with the cities listed in the JSON file at path.
// The built-in table stays in effect when loading fails.
func LoadCities(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read cities file: %w", err)
	}

	var cfg CitiesConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse cities file: %w", err)
	}

	for _, c := range cfg.Cities {
		if c.Name == "" {
			return fmt.Errorf("cities file %s: city without a name", path)
		}
		switch c.Tier {
		case models.TierCapital, models.TierSecondary, models.TierOther:
		default:
			return fmt.Errorf("cities file %s: unknown tier %q for %s", path, c.Tier, c.Name)
		}
	}

	SetCities(cfg.Cities)
	return nil
}
