package api

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"apartinvest/server/internal/catalog"
	"apartinvest/server/internal/ingest"
	"apartinvest/server/internal/journal"
	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/queue"
	"apartinvest/server/internal/telegram"
	"apartinvest/server/internal/validation"
)

// IngestRunner runs one ingestion pass.
type IngestRunner interface {
	Run(ctx context.Context) (ingest.Report, error)
}

// Deps are the services behind the HTTP surface. Runner, Leads and the Telegram fields are optional.
type Deps struct {
	Catalog        *catalog.Store
	Admin          *catalog.Admin
	Journal        *journal.Journal
	Runner         IngestRunner
	Leads          *queue.LeadQueue
	Telegram       *telegram.Service
	TelegramConfig *telegram.ConfigStore

	AdminToken  string
	IngestToken string
}

type Handler struct {
	deps   Deps
	logger *logrus.Logger
}

func NewHandler(deps Deps, logger *logrus.Logger) *Handler {
	return &Handler{
		deps:   deps,
		logger: logging.OrDefault(logger),
	}
}

// snapshot loads the catalog and answers 503 itself when the canonical source is unavailable.
func (h *Handler) snapshot(c *gin.Context) (*catalog.Snapshot, bool) {
	snap, err := h.deps.Catalog.Load(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to load catalog")
		return nil, false
	}
	return snap, true
}

// respondError maps domain errors to status codes. Unexpected errors are logged and hidden.
func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	var (
		missing *validation.MissingFieldsError
		invalid *validation.Error
		overlay *catalog.OverlayError
	)

	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "missing": missing.Fields})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "violations": invalid.Violations})
	case errors.As(err, &overlay):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "records": overlay.Records})
	case errors.Is(err, catalog.ErrNotArray):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, journal.ErrNotFound), errors.Is(err, catalog.ErrUnknownOverlay):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrSourceUnavailable):
		h.logger.WithError(err).Error(msg)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog is temporarily unavailable"})
	default:
		h.logger.WithError(err).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// bindJSON decodes the body into obj and answers 400 itself when it cannot. Binding rule failures
// are reported per field in the same shape as catalog validation errors.
func (h *Handler) bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		h.logger.WithError(err).Debug("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}

	missing, violations := validation.FromFieldErrors(fieldErrs, jsonFieldName(obj))
	body := gin.H{"error": "Invalid request body"}
	if len(missing) > 0 {
		body["missing"] = missing
	}
	if len(violations) > 0 {
		body["violations"] = violations
	}
	c.JSON(http.StatusBadRequest, body)
	return false
}

// jsonFieldName resolves a failed struct field to its json name on obj's type.
func jsonFieldName(obj any) func(validator.FieldError) string {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return func(fe validator.FieldError) string {
		if t.Kind() != reflect.Struct {
			return fe.Field()
		}
		f, ok := t.FieldByName(fe.StructField())
		if !ok {
			return fe.Field()
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fe.Field()
		}
		return name
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
