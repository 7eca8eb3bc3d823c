package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"apartinvest/server/internal/geometry"
	"apartinvest/server/internal/models"
	"apartinvest/server/internal/observability"
	"apartinvest/server/internal/storage"
	"apartinvest/server/internal/validation"
)

// applyEnrichments merges every enrichment overlay onto the records by slug.
// Entries that fail validation are dropped on their own; the record stays.
func (s *Store) applyEnrichments(ctx context.Context, snap *Snapshot) {
	index := make(map[string]int, len(snap.Records))
	for i, r := range snap.Records {
		index[r.Slug] = i
	}

	for _, name := range s.sources.Enrichments {
		entries, malformed := s.readEnrichments(ctx, name)
		snap.DroppedEnrichments += malformed
		for _, entry := range entries {
			i, ok := index[entry.slug]
			if !ok {
				continue
			}
			if err := validation.ValidateEnrichment(entry.enrichment); err != nil {
				snap.DroppedEnrichments++
				s.logger.WithFields(logrus.Fields{"source": name, "slug": entry.slug}).WithError(err).Warn("Dropping invalid enrichment")
				continue
			}
			p := &snap.Records[i]
			if p.Enrichment == nil {
				p.Enrichment = &models.Enrichment{}
			}
			p.Enrichment.Merge(entry.enrichment)
		}
	}

	for i := range snap.Records {
		geometry.FillDistances(snap.Records[i].Enrichment)
	}
}

type enrichmentEntry struct {
	slug       string
	enrichment *models.Enrichment
}

// readEnrichments returns the decodable entries of an enrichment source and the number of entries
// that could not be decoded or carry no slug.
func (s *Store) readEnrichments(ctx context.Context, name string) ([]enrichmentEntry, int) {
	data, err := s.docs.Read(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			observability.ObserveSourceError(name)
			s.logger.WithError(err).WithField("source", name).Warn("Ignoring unreadable enrichment source")
		}
		return nil, 0
	}

	raws, err := decodeSource(data)
	if err != nil {
		observability.ObserveSourceError(name)
		s.logger.WithError(err).WithField("source", name).Warn("Ignoring corrupt enrichment source")
		return nil, 0
	}

	entries := make([]enrichmentEntry, 0, len(raws))
	malformed := 0
	for _, r := range raws {
		var e struct {
			Slug string `json:"slug"`
			models.Enrichment
		}
		if err := json.Unmarshal(r.data, &e); err != nil {
			malformed++
			s.logger.WithError(err).WithField("source", name).Warn("Skipping malformed enrichment entry")
			continue
		}
		slug := e.Slug
		if slug == "" {
			slug = r.key
		}
		if slug == "" {
			malformed++
			continue
		}
		enrichment := e.Enrichment
		entries = append(entries, enrichmentEntry{slug: slug, enrichment: &enrichment})
	}
	return entries, malformed
}
