package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"apartinvest/server/internal/catalog"
	"apartinvest/server/internal/journal"
	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/models"
)

// SnapshotLoader provides the current catalog for matching channel posts to projects.
type SnapshotLoader interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
}

// Sources lists what a run fetches and how candidates are filtered.
type Sources struct {
	FeedURLs []string
	Channels []string
	Keywords []string
}

// Report summarizes one ingestion run.
type Report struct {
	StartedAt      time.Time     `json:"startedAt"`
	Duration       time.Duration `json:"duration"`
	FeedItems      int           `json:"feedItems"`
	ChannelPosts   int           `json:"channelPosts"`
	NewCandidates  int           `json:"newCandidates"`
	NewMentions    int           `json:"newMentions"`
	CatalogSkipped bool          `json:"catalogSkipped"`
}

// Runner writes relevant feed items and channel posts to the candidate side logs.
type Runner struct {
	feeds    *FeedFetcher
	channels *ChannelFetcher
	catalog  SnapshotLoader
	journal  *journal.Journal
	sources  Sources
	logger   *logrus.Logger
	mu       sync.Mutex
}

func NewRunner(feeds *FeedFetcher, channels *ChannelFetcher, catalog SnapshotLoader, j *journal.Journal, sources Sources, logger *logrus.Logger) *Runner {
	return &Runner{
		feeds:    feeds,
		channels: channels,
		catalog:  catalog,
		journal:  j,
		sources:  sources,
		logger:   logging.OrDefault(logger),
	}
}

// Run performs one ingestion pass. Runs never overlap. Fetch failures only shrink the result;
// an error is returned only when the side logs cannot be written.
func (r *Runner) Run(ctx context.Context) (report Report, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report = Report{StartedAt: time.Now().UTC()}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	items := r.feeds.FetchAll(ctx, r.sources.FeedURLs)
	report.FeedItems = len(items)

	candidates := make([]models.Article, 0, len(items))
	for _, a := range items {
		if Relevant(a.Title+" "+a.Description, r.sources.Keywords) {
			candidates = append(candidates, a)
		}
	}

	posts := r.channels.FetchAll(ctx, r.sources.Channels)
	report.ChannelPosts = len(posts)

	var records []models.Property
	snap, err := r.catalog.Load(ctx)
	if err != nil {
		report.CatalogSkipped = true
		r.logger.WithError(err).Warn("Catalog unavailable, channel posts are not matched to projects")
	} else {
		records = snap.Records
	}

	bySlug := make(map[string][]models.Mention)
	var slugOrder []string
	for _, p := range posts {
		slugs := MatchProjects(p.Text, records)
		for _, slug := range slugs {
			if _, ok := bySlug[slug]; !ok {
				slugOrder = append(slugOrder, slug)
			}
			bySlug[slug] = append(bySlug[slug], p)
		}
		if len(slugs) == 0 && Relevant(p.Text, r.sources.Keywords) {
			candidates = append(candidates, models.Article{
				Title:       headline(p.Text),
				Description: p.Text,
				URL:         p.URL,
				Source:      "t.me/" + p.Channel,
				PublishedAt: p.Date,
			})
		}
	}

	added, err := r.journal.AddCandidates(ctx, candidates)
	if err != nil {
		return report, fmt.Errorf("failed to save news candidates: %w", err)
	}
	report.NewCandidates = len(added)

	for _, slug := range slugOrder {
		mentions, err := r.journal.AddMentions(ctx, slug, bySlug[slug])
		if err != nil {
			return report, fmt.Errorf("failed to save mentions of %s: %w", slug, err)
		}
		report.NewMentions += len(mentions)
	}

	r.logger.WithFields(logrus.Fields{
		"feed_items":     report.FeedItems,
		"channel_posts":  report.ChannelPosts,
		"new_candidates": report.NewCandidates,
		"new_mentions":   report.NewMentions,
	}).Info("Ingestion run completed")
	return report, nil
}

// headline is the first line of a post, cut to 120 characters.
func headline(text string) string {
	line := text
	for i, r := range text {
		if r == '\n' {
			line = text[:i]
			break
		}
	}
	runes := []rune(line)
	if len(runes) > 120 {
		return string(runes[:120]) + "…"
	}
	return line
}
