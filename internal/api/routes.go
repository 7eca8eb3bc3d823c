package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"apartinvest/server/internal/observability"
)

// SetupRoutes registers the HTTP surface. /metrics is served only when reg is set.
func SetupRoutes(router *gin.Engine, handler *Handler, reg *prometheus.Registry) {
	router.Use(RequestLogger(handler.logger), Metrics())

	router.GET("/healthz", handler.Health)
	if reg != nil {
		router.GET("/metrics", gin.WrapH(observability.MetricsHandler(reg)))
	}

	admin := RequireToken(AdminTokenHeader, handler.deps.AdminToken, handler.logger)
	ingest := RequireToken(IngestTokenHeader, handler.deps.IngestToken, handler.logger)

	api := router.Group("/api")
	{
		api.GET("/projects", handler.ListProjects)
		api.GET("/projects/top", handler.TopProjects)
		api.GET("/projects/map", handler.ProjectsMap)
		api.GET("/projects/:slug", handler.GetProject)
		api.GET("/projects/:slug/notes", handler.ListNotes)
		api.POST("/projects/:slug/notes", admin, handler.CreateNote)
		api.GET("/projects/:slug/mentions", handler.ListMentions)

		api.GET("/stats/market", handler.MarketStats)
		api.GET("/stats/cities", handler.CityStats)
		api.GET("/stats/histogram", handler.Histogram)
		api.GET("/stats/summary", handler.Summary)

		api.GET("/cities", handler.ListCities)
		api.POST("/calculator", handler.Calculate)
		api.GET("/news", handler.ListNews)
		api.POST("/leads", handler.CreateLead)
	}

	adminGroup := api.Group("/admin", admin)
	{
		adminGroup.GET("/projects", handler.ListExtras)
		adminGroup.POST("/projects", handler.CreateProject)
		adminGroup.DELETE("/projects/:slug", handler.DeleteProject)

		adminGroup.POST("/news", handler.CreateArticle)
		adminGroup.DELETE("/news/:id", handler.DeleteArticle)
		adminGroup.GET("/news/candidates", handler.ListCandidates)
		adminGroup.GET("/leads", handler.ListLeads)

		adminGroup.GET("/telegram", handler.GetTelegramConfig)
		adminGroup.PUT("/telegram", handler.UpdateTelegramConfig)
		adminGroup.POST("/telegram/test", handler.TestTelegramConfig)
	}

	ingestGroup := api.Group("/ingest", ingest)
	{
		ingestGroup.PUT("/overlays/:name", handler.ReplaceOverlay)
		ingestGroup.POST("/run", handler.RunIngest)
	}
}
