package entity

// UserProfile is the per-user signal the Recommendation Engine scores candidates against.
// It is rebuilt from scratch on every feed generation run rather than persisted incrementally.
type UserProfile struct {
	UserID int64

	// Embedding is the mean, L2-normalized embedding of the user's upvoted resources. Nil when
	// the user has no upvotes.
	Embedding []float32

	// SourcePreference maps source ID to a min-max normalized preference in [0, 1], derived
	// from the user's vote history on resources from that source.
	SourcePreference map[int64]float64

	TotalInteractions int
}

// VectorDocument is the unit of storage and retrieval in the Vector Index: a resource's
// embedding plus the attributes needed to filter a search without a join back to the
// Resource Store.
type VectorDocument struct {
	ResourceID  int64
	Embedding   []float32
	Kind        Kind
	SourceID    int64
	PublishedAt int64 // unix seconds, for range filtering without a time.Time round trip
}

// ScoredID is a single Vector Index search hit.
type ScoredID struct {
	ResourceID int64
	Similarity float64
}
