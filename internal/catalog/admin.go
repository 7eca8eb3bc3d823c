package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/models"
	"apartinvest/server/internal/storage"
	"apartinvest/server/internal/validation"
)

var (
	ErrUnknownOverlay = errors.New("unknown overlay source")
	ErrNotArray       = errors.New("overlay payload must be a JSON array")
)

// AppendRequiredFields must be present on every admin-submitted record.
var AppendRequiredFields = []string{"title", "country", "city", "format", "status", "price", "area", "riskLevel"}

// fallbackSlug is used when a title transliterates to nothing.
const fallbackSlug = "project"

// RecordError lists the violations of one record of a bulk payload.
type RecordError struct {
	Index      int                    `json:"index"`
	Slug       string                 `json:"slug,omitempty"`
	Violations []validation.Violation `json:"violations"`
}

// OverlayError rejects a whole overlay payload. Nothing is written when it is returned.
type OverlayError struct {
	Records []RecordError `json:"records"`
}

func (e *OverlayError) Error() string {
	return fmt.Sprintf("overlay rejected: %d invalid records", len(e.Records))
}

// Admin performs the authenticated catalog mutations. Callers check the shared secret first.
type Admin struct {
	store  *Store
	logger *logrus.Logger
}

func NewAdmin(store *Store, logger *logrus.Logger) *Admin {
	return &Admin{store: store, logger: logging.OrDefault(logger)}
}

// Append validates raw, assigns it a fresh slug derived from its title and appends it to the extras source.
// A slug supplied by the caller is ignored.
func (a *Admin) Append(ctx context.Context, raw map[string]any) (*models.Property, error) {
	if err := validation.RequireFields(raw, AppendRequiredFields...); err != nil {
		return nil, err
	}

	snap, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := a.readExtras(ctx)
	if err != nil {
		return nil, err
	}

	taken := snap.Slugs()
	for _, e := range entries {
		taken[entrySlug(e)] = true
	}

	record := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		record[k] = v
	}
	title, _ := raw["title"].(string)
	record["slug"] = UniqueSlug(GenerateSlug(title), taken)
	if _, ok := record["seasonality"]; !ok {
		record["seasonality"] = flatSeasonality()
	}

	p, err := validation.Validate(record)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	entries = append(entries, data)
	if err := storage.WriteJSON(ctx, a.store.docs, a.store.sources.Extras, entries); err != nil {
		return nil, fmt.Errorf("failed to save extras: %w", err)
	}

	a.logger.WithField("slug", p.Slug).Info("Appended project")
	return p, nil
}

// Delete removes the extras record with slug. Records of other sources cannot be deleted.
func (a *Admin) Delete(ctx context.Context, slug string) error {
	entries, err := a.readExtras(ctx)
	if err != nil {
		return err
	}

	kept := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		if entrySlug(e) != slug {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return ErrNotFound
	}

	if err := storage.WriteJSON(ctx, a.store.docs, a.store.sources.Extras, kept); err != nil {
		return fmt.Errorf("failed to save extras: %w", err)
	}
	a.logger.WithField("slug", slug).Info("Deleted project")
	return nil
}

// List returns the decodable extras records as stored.
func (a *Admin) List(ctx context.Context) ([]models.Property, error) {
	entries, err := a.readExtras(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]models.Property, 0, len(entries))
	for _, e := range entries {
		var p models.Property
		if err := json.Unmarshal(e, &p); err != nil {
			continue
		}
		records = append(records, p)
	}
	return records, nil
}

// ReplaceOverlay validates every record of payload and replaces the named overlay with it wholesale.
// Any invalid record rejects the whole payload with *OverlayError.
func (a *Admin) ReplaceOverlay(ctx context.Context, name string, payload []byte) (int, error) {
	if !a.isOverlay(name) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOverlay, name)
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return 0, ErrNotArray
	}
	records, err := decodeSource(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotArray, err)
	}

	var invalid []RecordError
	for i, r := range records {
		fields, err := r.fields()
		if err != nil {
			invalid = append(invalid, RecordError{Index: i, Violations: []validation.Violation{{Rule: "type", Message: err.Error()}}})
			continue
		}
		if _, err := validation.Validate(fields); err != nil {
			re := RecordError{Index: i}
			var verr *validation.Error
			if errors.As(err, &verr) {
				re.Slug = verr.Slug
				re.Violations = verr.Violations
			}
			invalid = append(invalid, re)
		}
	}
	if len(invalid) > 0 {
		return 0, &OverlayError{Records: invalid}
	}

	if err := a.store.docs.Replace(ctx, name, trimmed); err != nil {
		return 0, fmt.Errorf("failed to replace overlay %s: %w", name, err)
	}
	a.logger.WithFields(logrus.Fields{"overlay": name, "records": len(records)}).Info("Replaced overlay")
	return len(records), nil
}

func (a *Admin) isOverlay(name string) bool {
	for _, o := range a.store.sources.Overlays {
		if o == name {
			return true
		}
	}
	return false
}

func (a *Admin) readExtras(ctx context.Context) ([]json.RawMessage, error) {
	var entries []json.RawMessage
	err := storage.ReadJSON(ctx, a.store.docs, a.store.sources.Extras, &entries)
	if errors.Is(err, storage.ErrNotFound) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read extras: %w", err)
	}
	return entries, nil
}

func entrySlug(data json.RawMessage) string {
	var e struct {
		Slug string `json:"slug"`
	}
	_ = json.Unmarshal(data, &e)
	return e.Slug
}

var dashes = regexp.MustCompile(`-+`)

// GenerateSlug transliterates title into a URL-safe slug, e.g. "Сочи Парк" becomes "sochi-park".
func GenerateSlug(title string) string {
	s := slug.Make(title)
	s = strings.ReplaceAll(s, "_", "-")
	s = dashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallbackSlug
	}
	return s
}

// UniqueSlug returns base, or base-2, base-3, ... for the first candidate not in taken.
func UniqueSlug(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func flatSeasonality() []any {
	s := make([]any, models.SeasonalityMonths)
	for i := range s {
		s[i] = 1.0
	}
	return s
}
