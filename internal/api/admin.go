package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"apartinvest/server/internal/models"
)

// maxOverlayBytes bounds a bulk overlay upload.
const maxOverlayBytes = 16 << 20

// ListExtras returns the admin-added records as stored.
func (h *Handler) ListExtras(c *gin.Context) {
	records, err := h.deps.Admin.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list projects")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil || raw == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return
	}

	p, err := h.deps.Admin.Append(c.Request.Context(), raw)
	if err != nil {
		h.respondError(c, err, "Failed to create project")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.deps.Admin.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		h.respondError(c, err, "Failed to delete project")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceOverlay swaps a generated overlay source for the uploaded array.
func (h *Handler) ReplaceOverlay(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxOverlayBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	n, err := h.deps.Admin.ReplaceOverlay(c.Request.Context(), c.Param("name"), body)
	if err != nil {
		h.respondError(c, err, "Failed to replace overlay")
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": c.Param("name"), "records": n})
}

// RunIngest performs one ingestion pass synchronously.
func (h *Handler) RunIngest(c *gin.Context) {
	if h.deps.Runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingestion is not configured"})
		return
	}

	report, err := h.deps.Runner.Run(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to run ingestion")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetTelegramConfig returns the current Telegram configuration
func (h *Handler) GetTelegramConfig(c *gin.Context) {
	if h.deps.Telegram == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Telegram is not available"})
		return
	}

	config := h.deps.Telegram.Config()
	if config == nil {
		c.JSON(http.StatusOK, models.TelegramConfig{})
		return
	}

	// Don't send the full bot token back to the client
	c.JSON(http.StatusOK, config.Masked())
}

// UpdateTelegramConfig checks the new credentials with a test message, then saves and applies them.
func (h *Handler) UpdateTelegramConfig(c *gin.Context) {
	if h.deps.Telegram == nil || h.deps.TelegramConfig == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Telegram is not available"})
		return
	}

	var request models.TelegramConfigRequest
	if !h.bindJSON(c, &request) {
		return
	}

	if len(request.BotToken) < 20 || !strings.Contains(request.BotToken, ":") {
		h.logger.Error("Invalid bot token format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bot token format. Please check your bot token from @BotFather"})
		return
	}

	config := &models.TelegramConfig{
		IsEnabled: request.IsEnabled,
		BotToken:  request.BotToken,
		ChatID:    request.ChatID,
	}
	if current := h.deps.Telegram.Config(); current != nil {
		config.APIBase = current.APIBase
	}

	testMessage := "🔔 Тестовое уведомление\n\nЕсли вы видите это сообщение, уведомления о заявках настроены."
	if err := h.deps.Telegram.SendWith(c.Request.Context(), config, testMessage); err != nil {
		h.logger.WithError(err).Error("Failed to send test message")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.deps.TelegramConfig.Save(c.Request.Context(), config); err != nil {
		h.logger.WithError(err).Error("Failed to update Telegram config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration"})
		return
	}
	h.deps.Telegram.UpdateConfig(config)

	c.JSON(http.StatusOK, gin.H{"message": "Telegram configuration updated successfully"})
}

// TestTelegramConfig sends a sample lead notification with the current settings.
func (h *Handler) TestTelegramConfig(c *gin.Context) {
	if h.deps.Telegram == nil || !h.deps.Telegram.Enabled() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Telegram is not configured or is disabled"})
		return
	}

	budget := 12_000_000.0
	sampleLead := &models.Lead{
		Name:    "Тестовая заявка",
		Phone:   "+7 900 000-00-00",
		Budget:  &budget,
		Message: "Проверка уведомлений",
		Source:  "admin",
	}
	yield := 11.0
	sampleProject := &models.Property{
		Title:         "Апарт-отель у моря",
		City:          "Сочи",
		Price:         9_500_000,
		YieldPercent:  &yield,
		RevPerM2Month: 2900,
		Occupancy:     78,
	}

	if err := h.deps.Telegram.NotifyLead(c.Request.Context(), sampleLead, sampleProject); err != nil {
		h.logger.WithError(err).Error("Failed to send test notification")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent successfully"})
}
