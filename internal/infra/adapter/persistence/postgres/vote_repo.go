package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/repository"
)

type VoteRepo struct{ db *sql.DB }

func NewVoteRepo(db *sql.DB) repository.VoteRepository {
	return &VoteRepo{db: db}
}

func (repo *VoteRepo) GetByUser(ctx context.Context, userID int64) ([]entity.VoteWithResource, error) {
	const query = `
SELECT v.id, v.user_id, v.resource_id, v.vote_type, v.created_at,
       r.id, r.source_id, r.kind, r.title, r.url, r.description, r.published_at, r.created_at, r.metadata
FROM votes v
INNER JOIN resources r ON r.id = v.resource_id
WHERE v.user_id = $1
ORDER BY v.created_at DESC`

	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("GetByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.VoteWithResource, 0, 64)
	for rows.Next() {
		var vwr entity.VoteWithResource
		var metadataJSON []byte
		if err := rows.Scan(
			&vwr.Vote.ID, &vwr.Vote.UserID, &vwr.Vote.ResourceID, &vwr.Vote.VoteType, &vwr.Vote.CreatedAt,
			&vwr.Resource.ID, &vwr.Resource.SourceID, &vwr.Resource.Kind, &vwr.Resource.Title,
			&vwr.Resource.URL, &vwr.Resource.Description, &vwr.Resource.PublishedAt,
			&vwr.Resource.CreatedAt, &metadataJSON,
		); err != nil {
			return nil, fmt.Errorf("GetByUser: Scan: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &vwr.Resource.Metadata); err != nil {
				return nil, fmt.Errorf("GetByUser: unmarshal metadata: %w", err)
			}
		}
		result = append(result, vwr)
	}
	return result, rows.Err()
}
