package repository

import "context"

// UserRepository provides read access to the user table. Users are created outside the
// worker; the Feed Generation Job only needs to enumerate them.
type UserRepository interface {
	ListIDs(ctx context.Context) ([]int64, error)
}
