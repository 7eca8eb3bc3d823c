// Package catalog merges the canonical project source, generated overlays and admin extras into one
// validated snapshot per request.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"apartinvest/server/config"
	"apartinvest/server/internal/calculator"
	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/models"
	"apartinvest/server/internal/observability"
	"apartinvest/server/internal/storage"
	"apartinvest/server/internal/validation"
)

var (
	// ErrSourceUnavailable means the canonical source is missing or corrupt. Loads fail hard on it.
	ErrSourceUnavailable = errors.New("canonical catalog source unavailable")
	ErrNotFound          = errors.New("project not found")
)

// Sources names the documents a catalog is merged from, in precedence order.
type Sources struct {
	Canonical   string
	Overlays    []string
	Extras      string
	Enrichments []string
}

// Rejection records why a candidate record was skipped.
type Rejection struct {
	Source     string                 `json:"source"`
	Index      int                    `json:"index"`
	Slug       string                 `json:"slug,omitempty"`
	Reason     string                 `json:"reason"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

// Snapshot is the merged catalog of one request.
type Snapshot struct {
	Records            []models.Property `json:"records"`
	Rejected           []Rejection       `json:"rejected"`
	Duplicates         int               `json:"duplicates"`
	DroppedEnrichments int               `json:"droppedEnrichments"`
	LoadedAt           time.Time         `json:"loadedAt"`
}

// Find returns the record with slug.
func (s *Snapshot) Find(slug string) (*models.Property, bool) {
	for i := range s.Records {
		if s.Records[i].Slug == slug {
			return &s.Records[i], true
		}
	}
	return nil, false
}

// Slugs returns the set of slugs in the snapshot.
func (s *Snapshot) Slugs() map[string]bool {
	set := make(map[string]bool, len(s.Records))
	for _, r := range s.Records {
		set[r.Slug] = true
	}
	return set
}

// TierFunc resolves the demand tier of a city.
type TierFunc func(city string) models.CityTier

// Store loads catalog snapshots. It keeps no state between loads.
type Store struct {
	docs    storage.Store
	sources Sources
	tierOf  TierFunc
	logger  *logrus.Logger
}

func NewStore(docs storage.Store, sources Sources, tierOf TierFunc, logger *logrus.Logger) *Store {
	if tierOf == nil {
		tierOf = config.TierForCity
	}
	return &Store{
		docs:    docs,
		sources: sources,
		tierOf:  tierOf,
		logger:  logging.OrDefault(logger),
	}
}

func (s *Store) Sources() Sources {
	return s.sources
}

// Load merges canonical, overlays and extras. The first record seen for a slug wins;
// invalid records are skipped and reported in the snapshot.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	canonical, err := s.readSource(ctx, s.sources.Canonical)
	if err != nil {
		observability.ObserveSourceError(s.sources.Canonical)
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, s.sources.Canonical, err)
	}

	snap := &Snapshot{Records: []models.Property{}, Rejected: []Rejection{}, LoadedAt: time.Now().UTC()}
	seen := make(map[string]bool)
	s.merge(snap, seen, s.sources.Canonical, canonical)

	optional := append(append([]string(nil), s.sources.Overlays...), s.sources.Extras)
	for _, name := range optional {
		if name == "" {
			continue
		}
		s.merge(snap, seen, name, s.readOptional(ctx, name))
	}

	s.applyEnrichments(ctx, snap)

	for i := range snap.Records {
		p := &snap.Records[i]
		calculator.Fill(p, s.tierOf(p.City))
	}

	observability.ObserveCatalog(len(snap.Records), len(snap.Rejected), snap.Duplicates)
	if len(snap.Rejected) > 0 || snap.Duplicates > 0 {
		s.logger.WithFields(logrus.Fields{
			"records":    len(snap.Records),
			"rejected":   len(snap.Rejected),
			"duplicates": snap.Duplicates,
		}).Info("Catalog loaded with skipped records")
	}
	return snap, nil
}

// readOptional degrades a missing or corrupt overlay to an empty contribution.
func (s *Store) readOptional(ctx context.Context, name string) []rawRecord {
	records, err := s.readSource(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			observability.ObserveSourceError(name)
			s.logger.WithError(err).WithField("source", name).Warn("Ignoring unreadable overlay source")
		}
		return nil
	}
	return records
}

func (s *Store) readSource(ctx context.Context, name string) ([]rawRecord, error) {
	data, err := s.docs.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	return decodeSource(data)
}

func (s *Store) merge(snap *Snapshot, seen map[string]bool, source string, records []rawRecord) {
	// Extras are written by Admin.Append after conversion; rescaling them again would turn 0.8% into 80%.
	validate := validation.Validate
	if source == s.sources.Extras {
		validate = validation.ValidateStored
	}
	for i, r := range records {
		fields, err := r.fields()
		if err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{Source: source, Index: i, Slug: r.key, Reason: err.Error()})
			continue
		}

		p, err := validate(fields)
		if err != nil {
			rej := Rejection{Source: source, Index: i, Reason: err.Error()}
			var verr *validation.Error
			if errors.As(err, &verr) {
				rej.Slug = verr.Slug
				rej.Violations = verr.Violations
			}
			snap.Rejected = append(snap.Rejected, rej)
			s.logger.WithFields(logrus.Fields{"source": source, "index": i}).WithError(err).Debug("Skipping invalid record")
			continue
		}

		if seen[p.Slug] {
			snap.Duplicates++
			continue
		}
		seen[p.Slug] = true
		snap.Records = append(snap.Records, *p)
	}
}
