// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects — Resource, Source, Vote, Recommendation and
// the profile/vector types derived from them — along with their validation rules and
// domain-specific errors.
package entity

import (
	"fmt"
	"time"
)

// Kind discriminates the shape of a Resource's kind-specific metadata.
type Kind string

const (
	KindPaper           Kind = "paper"
	KindVideo           Kind = "video"
	KindBlogPost        Kind = "blog_post"
	KindSocialMediaPost Kind = "social_media_post"
)

// Valid reports whether k is one of the known resource kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPaper, KindVideo, KindBlogPost, KindSocialMediaPost:
		return true
	default:
		return false
	}
}

// Resource represents a single learning resource discovered by the ingestion pipeline.
// Kind-specific attributes live in the Metadata field and are only meaningful for the
// matching Kind.
type Resource struct {
	ID          int64
	SourceID    int64
	Kind        Kind
	Title       string
	URL         string
	Description string
	PublishedAt time.Time
	CreatedAt   time.Time
	Metadata    ResourceMetadata
}

// ResourceMetadata holds the optional, kind-specific fields a Resource may carry. Only the
// fields relevant to Kind are populated; the rest are left at their zero value.
type ResourceMetadata struct {
	// Paper
	Venue   string `json:"venue,omitempty"`
	Authors string `json:"authors,omitempty"`

	// Video
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Platform        string `json:"platform,omitempty"`

	// BlogPost
	Author string `json:"author,omitempty"`

	// SocialMediaPost
	SocialPlatform string `json:"social_platform,omitempty"`
	Handle         string `json:"handle,omitempty"`
}

// EmbeddingText returns the text the Embedding Client and LLM Extraction Client should treat
// as the resource's semantic content: title and description joined by a single space.
func (r *Resource) EmbeddingText() string {
	if r.Description == "" {
		return r.Title
	}
	return r.Title + " " + r.Description
}

// Validate enforces the invariants the Ingestion Job must satisfy before calling
// ResourceRepository.Add: a non-empty title, a safe non-empty URL, and a known kind.
func (r *Resource) Validate() error {
	if r.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if err := ValidateURL(r.URL); err != nil {
		return err
	}
	if !r.Kind.Valid() {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", r.Kind)}
	}
	return nil
}
