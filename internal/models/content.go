package models

import "time"

// Article is an editorial news item or a feed candidate awaiting review.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Note is a research note attached to a project.
type Note struct {
	ID          string    `json:"id"`
	ProjectSlug string    `json:"projectSlug"`
	Author      string    `json:"author,omitempty"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Mention is a public channel post that references a project.
type Mention struct {
	ID          string    `json:"id"`
	ProjectSlug string    `json:"projectSlug,omitempty"`
	Channel     string    `json:"channel"`
	Text        string    `json:"text"`
	URL         string    `json:"url"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Lead is a contact request left on the site.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" binding:"required,max=200"`
	Phone       string    `json:"phone" binding:"required_without=Email,omitempty,max=40"`
	Email       string    `json:"email" binding:"required_without=Phone,omitempty,email"`
	ProjectSlug string    `json:"projectSlug,omitempty" binding:"omitempty,max=200"`
	Budget      *float64  `json:"budget,omitempty" binding:"omitempty,gte=0"`
	Message     string    `json:"message,omitempty" binding:"max=4000"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
