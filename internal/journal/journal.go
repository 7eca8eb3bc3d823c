package journal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"apartinvest/server/internal/models"
	"apartinvest/server/internal/storage"
)

// Document names.
const (
	NewsDoc       = "news"
	CandidatesDoc = "news_candidates"
	LeadsDoc      = "leads"
	notesPrefix   = "notes/"
	mentionPrefix = "mentions/"
)

var ErrNotFound = errors.New("entry not found")

// Journal serializes writes of this process to the content logs.
type Journal struct {
	docs storage.Store
	mu   sync.Mutex
	now  func() time.Time
}

func New(docs storage.Store) *Journal {
	return &Journal{docs: docs, now: func() time.Time { return time.Now().UTC() }}
}

func (j *Journal) news() *Log[models.Article] { return newLog[models.Article](j.docs, NewsDoc, &j.mu) }
func (j *Journal) candidates() *Log[models.Article] { return newLog[models.Article](j.docs, CandidatesDoc, &j.mu) }
func (j *Journal) leads() *Log[models.Lead] { return newLog[models.Lead](j.docs, LeadsDoc, &j.mu) }

func (j *Journal) notes(slug string) *Log[models.Note] {
	return newLog[models.Note](j.docs, notesPrefix+slug, &j.mu)
}

func (j *Journal) mentions(slug string) *Log[models.Mention] {
	return newLog[models.Mention](j.docs, mentionPrefix+slug, &j.mu)
}

// AddArticle publishes an editorial article.
func (j *Journal) AddArticle(ctx context.Context, a models.Article) (models.Article, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = j.now()
	if a.PublishedAt.IsZero() {
		a.PublishedAt = a.CreatedAt
	}
	if _, err := j.news().Append(ctx, nil, a); err != nil {
		return models.Article{}, err
	}
	return a, nil
}

func (j *Journal) ListArticles(ctx context.Context) ([]models.Article, error) {
	return j.news().List(ctx)
}

// DeleteArticle removes the article with id or returns ErrNotFound.
func (j *Journal) DeleteArticle(ctx context.Context, id string) error {
	n, err := j.news().Remove(ctx, func(a models.Article) bool { return a.ID == id })
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddCandidates stores feed candidates for review, skipping URLs already present.
func (j *Journal) AddCandidates(ctx context.Context, items []models.Article) ([]models.Article, error) {
	now := j.now()
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].CreatedAt = now
	}
	return j.candidates().Append(ctx, func(existing []models.Article, a models.Article) bool {
		for _, e := range existing {
			if sameURL(e.URL, a.URL) {
				return true
			}
		}
		return false
	}, items...)
}

func (j *Journal) ListCandidates(ctx context.Context) ([]models.Article, error) {
	return j.candidates().List(ctx)
}

// AddNote attaches a research note to a project.
func (j *Journal) AddNote(ctx context.Context, n models.Note) (models.Note, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = j.now()
	if _, err := j.notes(n.ProjectSlug).Append(ctx, nil, n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

func (j *Journal) ListNotes(ctx context.Context, slug string) ([]models.Note, error) {
	return j.notes(slug).List(ctx)
}

// AddMentions stores channel posts about a project, skipping URLs already present.
func (j *Journal) AddMentions(ctx context.Context, slug string, items []models.Mention) ([]models.Mention, error) {
	now := j.now()
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].ProjectSlug = slug
		items[i].CreatedAt = now
	}
	return j.mentions(slug).Append(ctx, func(existing []models.Mention, m models.Mention) bool {
		for _, e := range existing {
			if sameURL(e.URL, m.URL) {
				return true
			}
		}
		return false
	}, items...)
}

func (j *Journal) ListMentions(ctx context.Context, slug string) ([]models.Mention, error) {
	return j.mentions(slug).List(ctx)
}

// AddLead records a lead and returns it with its id.
func (j *Journal) AddLead(ctx context.Context, l models.Lead) (models.Lead, error) {
	l.ID = uuid.NewString()
	l.CreatedAt = j.now()
	if _, err := j.leads().Append(ctx, nil, l); err != nil {
		return models.Lead{}, err
	}
	return l, nil
}

func (j *Journal) ListLeads(ctx context.Context) ([]models.Lead, error) {
	return j.leads().List(ctx)
}

func sameURL(a, b string) bool {
	return a != "" && strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
