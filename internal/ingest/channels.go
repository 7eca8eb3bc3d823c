package ingest

import (
	"bytes"
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"apartinvest/server/internal/models"
	"apartinvest/server/internal/observability"
)

// DefaultChannelBase is the public web preview of Telegram channels.
const DefaultChannelBase = "https://t.me/s/"

var channelName = regexp.MustCompile(`^[A-Za-z0-9_]{3,64}$`)

// ChannelFetcher scrapes the public web preview of a Telegram channel.
type ChannelFetcher struct {
	getter httpGetter
	base   string
}

func NewChannelFetcher(client *http.Client, limiter *rate.Limiter, timeout time.Duration, logger *logrus.Logger) *ChannelFetcher {
	return &ChannelFetcher{
		getter: newGetter("telegram_channel", client, limiter, timeout, logger),
		base:   DefaultChannelBase,
	}
}

// WithBase points the fetcher at another preview host, e.g. a test server.
func (c *ChannelFetcher) WithBase(base string) *ChannelFetcher {
	c.base = strings.TrimRight(base, "/") + "/"
	return c
}

// Fetch returns the text posts of channel, newest last as on the page, or an empty list on any failure.
func (c *ChannelFetcher) Fetch(ctx context.Context, channel string) []models.Mention {
	channel = strings.TrimPrefix(strings.TrimSpace(channel), "@")
	log := c.getter.logger.WithField("channel", channel)
	if !channelName.MatchString(channel) {
		log.Warn("Skipping invalid channel name")
		return []models.Mention{}
	}

	body, err := c.getter.get(ctx, c.base+channel)
	if err != nil {
		observability.ObserveSourceError("telegram_channel")
		log.WithError(err).Warn("Channel fetch failed")
		return []models.Mention{}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		observability.ObserveSourceError("telegram_channel")
		log.WithError(err).Warn("Channel page parse failed")
		return []models.Mention{}
	}

	posts := make([]models.Mention, 0)
	doc.Find(".tgme_widget_message").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Find(".tgme_widget_message_text").First().Text())
		if text == "" {
			return
		}
		m := models.Mention{Channel: channel, Text: text}
		if post, ok := s.Attr("data-post"); ok && post != "" {
			m.URL = "https://t.me/" + post
		}
		if dt, ok := s.Find("time[datetime]").First().Attr("datetime"); ok {
			if ts, err := time.Parse(time.RFC3339, dt); err == nil {
				m.Date = ts.UTC()
			}
		}
		posts = append(posts, m)
	})

	log.WithField("posts", len(posts)).Debug("Channel fetched")
	return posts
}

// FetchAll fetches channels concurrently and concatenates the results in the order of channels.
func (c *ChannelFetcher) FetchAll(ctx context.Context, channels []string) []models.Mention {
	results := make([][]models.Mention, len(channels))

	var g errgroup.Group
	g.SetLimit(maxParallelism)
	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			results[i] = c.Fetch(ctx, ch)
			return nil
		})
	}
	_ = g.Wait()

	all := []models.Mention{}
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}
