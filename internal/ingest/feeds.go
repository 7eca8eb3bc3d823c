package ingest

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"apartinvest/server/internal/models"
	"apartinvest/server/internal/observability"
)

// FeedFetcher reads RSS and Atom feeds into article candidates.
type FeedFetcher struct {
	getter httpGetter
}

func NewFeedFetcher(client *http.Client, limiter *rate.Limiter, timeout time.Duration, logger *logrus.Logger) *FeedFetcher {
	return &FeedFetcher{getter: newGetter("feed", client, limiter, timeout, logger)}
}

// Fetch returns the items of the feed at feedURL, or an empty list on any failure.
func (f *FeedFetcher) Fetch(ctx context.Context, feedURL string) []models.Article {
	log := f.getter.logger.WithField("feed", feedURL)

	body, err := f.getter.get(ctx, feedURL)
	if err != nil {
		observability.ObserveSourceError("feed")
		log.WithError(err).Warn("Feed fetch failed")
		return []models.Article{}
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		observability.ObserveSourceError("feed")
		log.WithError(err).Warn("Feed parse failed")
		return []models.Article{}
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = hostOf(feedURL)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}
		a := models.Article{
			Title:       title,
			Description: plainText(item.Description),
			URL:         item.Link,
			Source:      source,
		}
		switch {
		case item.PublishedParsed != nil:
			a.PublishedAt = item.PublishedParsed.UTC()
		case item.UpdatedParsed != nil:
			a.PublishedAt = item.UpdatedParsed.UTC()
		}
		articles = append(articles, a)
	}
	log.WithField("items", len(articles)).Debug("Feed fetched")
	return articles
}

// FetchAll fetches feeds concurrently and concatenates the results in the order of urls.
func (f *FeedFetcher) FetchAll(ctx context.Context, urls []string) []models.Article {
	results := make([][]models.Article, len(urls))

	var g errgroup.Group
	g.SetLimit(maxParallelism)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = f.Fetch(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	var all []models.Article
	for _, r := range results {
		all = append(all, r...)
	}
	if all == nil {
		all = []models.Article{}
	}
	return all
}

// plainText strips markup from a feed description.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}
