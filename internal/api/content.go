package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"apartinvest/server/internal/models"
	"apartinvest/server/internal/validation"
)

type ArticleRequest struct {
	Title       string     `json:"title" binding:"required,max=500"`
	Description string     `json:"description" binding:"max=10000"`
	URL         string     `json:"url" binding:"omitempty,url"`
	Source      string     `json:"source" binding:"max=200"`
	PublishedAt *time.Time `json:"publishedAt"`
}

type NoteRequest struct {
	Author string `json:"author" binding:"max=200"`
	Text   string `json:"text" binding:"required,max=10000"`
}

// ListNews returns editorial articles, newest first.
func (h *Handler) ListNews(c *gin.Context) {
	articles, err := h.deps.Journal.ListArticles(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get news")
		return
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	c.JSON(http.StatusOK, articles)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req ArticleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	article := models.Article{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Source:      req.Source,
	}
	if req.PublishedAt != nil {
		article.PublishedAt = req.PublishedAt.UTC()
	}

	saved, err := h.deps.Journal.AddArticle(c.Request.Context(), article)
	if err != nil {
		h.respondError(c, err, "Failed to save article")
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	if err := h.deps.Journal.DeleteArticle(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete article")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCandidates returns feed items awaiting editorial review.
func (h *Handler) ListCandidates(c *gin.Context) {
	items, err := h.deps.Journal.ListCandidates(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get news candidates")
		return
	}
	c.JSON(http.StatusOK, items)
}

// knownProject answers 404 itself when slug names no catalog record.
func (h *Handler) knownProject(c *gin.Context) (string, bool) {
	slug := c.Param("slug")
	if !validation.IsSlug(slug) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return "", false
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return "", false
	}
	if _, found := snap.Find(slug); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return "", false
	}
	return slug, true
}

func (h *Handler) ListNotes(c *gin.Context) {
	slug, ok := h.knownProject(c)
	if !ok {
		return
	}
	notes, err := h.deps.Journal.ListNotes(c.Request.Context(), slug)
	if err != nil {
		h.respondError(c, err, "Failed to get notes")
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *Handler) CreateNote(c *gin.Context) {
	var req NoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	slug, ok := h.knownProject(c)
	if !ok {
		return
	}

	note, err := h.deps.Journal.AddNote(c.Request.Context(), models.Note{
		ProjectSlug: slug,
		Author:      req.Author,
		Text:        req.Text,
	})
	if err != nil {
		h.respondError(c, err, "Failed to save note")
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *Handler) ListMentions(c *gin.Context) {
	slug, ok := h.knownProject(c)
	if !ok {
		return
	}
	mentions, err := h.deps.Journal.ListMentions(c.Request.Context(), slug)
	if err != nil {
		h.respondError(c, err, "Failed to get mentions")
		return
	}
	c.JSON(http.StatusOK, mentions)
}

// CreateLead stores a contact request and queues the operator notification.
// A notification that cannot be queued never fails the request.
func (h *Handler) CreateLead(c *gin.Context) {
	var lead models.Lead
	if !h.bindJSON(c, &lead) {
		return
	}

	saved, err := h.deps.Journal.AddLead(c.Request.Context(), lead)
	if err != nil {
		h.respondError(c, err, "Failed to save lead")
		return
	}

	if h.deps.Leads != nil {
		if err := h.deps.Leads.Push(&saved); err != nil {
			h.logger.WithError(err).WithField("lead", saved.ID).Warn("Failed to queue lead notification")
		}
	}

	c.JSON(http.StatusCreated, gin.H{"id": saved.ID, "createdAt": saved.CreatedAt})
}

func (h *Handler) ListLeads(c *gin.Context) {
	leads, err := h.deps.Journal.ListLeads(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to get leads")
		return
	}
	c.JSON(http.StatusOK, leads)
}
