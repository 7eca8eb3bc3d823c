package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"apartinvest/server/config"
	"apartinvest/server/internal/calculator"
	"apartinvest/server/internal/models"
	"apartinvest/server/internal/query"
)

// MarketStats returns every market average, or only the one named by ?field=.
func (h *Handler) MarketStats(c *gin.Context) {
	var field query.Field
	if name := c.Query("field"); name != "" {
		f, err := query.ParseField(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		field = f
	}

	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	records := query.Apply(snap.Records, f)

	if field != "" {
		c.JSON(http.StatusOK, gin.H{"field": field, "average": query.MarketAverage(records, field)})
		return
	}
	c.JSON(http.StatusOK, query.Market(records))
}

func (h *Handler) CityStats(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, query.CityStats(query.Apply(snap.Records, f)))
}

// Histogram buckets revPerM2Month. Custom bounds come as ?bounds=1000,2000,3000.
func (h *Handler) Histogram(c *gin.Context) {
	bounds, err := parseBounds(c.Query("bounds"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, query.Histogram(query.Apply(snap.Records, f), bounds))
}

func (h *Handler) Summary(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, query.Summarize(query.Apply(snap.Records, f)))
}

var (
	errBoundsFormat = errors.New("bounds must be a comma separated list of numbers")
	errBoundsOrder  = errors.New("bounds must be strictly increasing")
)

func parseBounds(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	bounds := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errBoundsFormat
		}
		if n := len(bounds); n > 0 && v <= bounds[n-1] {
			return nil, errBoundsOrder
		}
		bounds = append(bounds, v)
	}
	return bounds, nil
}

// CalculatorRequest is the body of POST /api/calculator. Occupancy may be a fraction or a percentage.
// The tier is taken from cityTier, or derived from city when absent.
type CalculatorRequest struct {
	Price              float64         `json:"price"`
	AreaM2             float64         `json:"areaM2"`
	AnnualYieldPercent float64         `json:"annualYieldPercent"`
	Occupancy          float64         `json:"occupancy"`
	CityTier           models.CityTier `json:"cityTier" binding:"omitempty,oneof=capital secondary other"`
	City               string          `json:"city"`
}

func (h *Handler) Calculate(c *gin.Context) {
	var req CalculatorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tier := req.CityTier
	if tier == "" {
		tier = config.TierForCity(req.City)
	}

	metrics, err := calculator.Compute(calculator.Input{
		Price:              req.Price,
		AreaM2:             req.AreaM2,
		AnnualYieldPercent: req.AnnualYieldPercent,
		OccupancyPercent:   models.OccupancyPercent(req.Occupancy),
		Tier:               tier,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cityTier": tier, "metrics": metrics})
}
