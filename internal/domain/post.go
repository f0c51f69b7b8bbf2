package domain

import "time"

type PostStatus string

const (
	PostStatusPending PostStatus = "pending"
	PostStatusPosted  PostStatus = "posted"
	PostStatusFailed  PostStatus = "failed"
)

const DefaultNiche = "technology"

// Post is a unit of aggregated content eligible for cross-platform publication.
type Post struct {
	ID               string
	Title            string
	Content          string
	ProcessedContent string // empty until AI processed
	OriginalURL      string
	Source           string
	Platforms        []Platform
	Status           PostStatus
	AIProcessed      bool
	ThreadData       []string
	Niche            string
	Similarity       *float64
	CreatedAt        time.Time
	PostedAt         *time.Time
}

// PublishableContent returns the rewritten content when present.
func (p *Post) PublishableContent() string {
	if p.ProcessedContent != "" {
		return p.ProcessedContent
	}
	return p.Content
}

// PostUpdate carries the mutable fields of a post. Nil fields are left untouched.
type PostUpdate struct {
	ProcessedContent *string
	AIProcessed      *bool
	Status           *PostStatus
	PostedAt         *time.Time
	ThreadData       []string
}

// RawItem is a normalized entry fetched from a content source.
type RawItem struct {
	Title       string
	Body        string
	Link        string
	PublishedAt time.Time
	SourceName  string
	Similarity  float64
}
