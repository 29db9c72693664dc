package entity

import "time"

// VoteType is the direction of a user's feedback on a Resource.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Vote records a single user's feedback on a resource. Votes are managed outside the worker
// (by the HTTP API); the worker only reads them to build profiles and score recommendations.
type Vote struct {
	ID         int64
	UserID     int64
	ResourceID int64
	VoteType   VoteType
	CreatedAt  time.Time
}

// VoteWithResource pairs a Vote with the Resource it targets, avoiding a per-vote resource
// lookup when building a user's profile or computing vote-sentiment scores.
type VoteWithResource struct {
	Vote     Vote
	Resource Resource
}
