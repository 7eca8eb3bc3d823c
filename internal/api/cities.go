package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apartinvest/server/config"
	"apartinvest/server/internal/calculator"
	"apartinvest/server/internal/models"
)

type cityResponse struct {
	Name       string          `json:"name"`
	Tier       models.CityTier `json:"tier"`
	Multiplier float64         `json:"multiplier"`
}

// ListCities returns the cities with a known demand tier and their daily-rate multipliers.
func (h *Handler) ListCities(c *gin.Context) {
	list := config.Cities()
	cities := make([]cityResponse, 0, len(list))
	for _, city := range list {
		cities = append(cities, cityResponse{
			Name:       city.Name,
			Tier:       city.Tier,
			Multiplier: calculator.Multiplier(city.Tier),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"cities":      cities,
		"defaultTier": models.TierOther,
	})
}
