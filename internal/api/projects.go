package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"apartinvest/server/internal/geometry"
	"apartinvest/server/internal/query"
)

const defaultTopN = 10

func (h *Handler) bindFilter(c *gin.Context) (*query.Filter, bool) {
	var f query.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.logger.WithError(err).Debug("Invalid filter")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter parameters"})
		return nil, false
	}
	return &f, true
}

// ListProjects returns the merged catalog narrowed by the query filter.
func (h *Handler) ListProjects(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, query.Apply(snap.Records, f))
}

func (h *Handler) GetProject(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	p, found := snap.Find(c.Param("slug"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// TopProjects ranks by yield (default) or stability.
func (h *Handler) TopProjects(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", strconv.Itoa(defaultTopN)))
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a non-negative integer"})
		return
	}

	by := c.DefaultQuery("by", "yield")
	if by != "yield" && by != "stability" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "by must be yield or stability"})
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

	records := query.Apply(snap.Records, f)
	if by == "stability" {
		c.JSON(http.StatusOK, query.TopByStability(records, n))
		return
	}
	c.JSON(http.StatusOK, query.TopByYield(records, n))
}

// ProjectsMap returns located projects as a GeoJSON feature collection.
func (h *Handler) ProjectsMap(c *gin.Context) {
	f, ok := h.bindFilter(c)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, geometry.FeatureCollection(query.Apply(snap.Records, f)))
}
