package result

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/mvalderrama/ecoquiz/internal/database"
)

// Repository handles result persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create records a score for a user. The creation timestamp is assigned by
// the database.
func (r *Repository) Create(ctx context.Context, userID int64, juego string, score int) (*Result, error) {
	dbResult := &database.Result{
		UserID: userID,
		Juego:  juego,
		Score:  score,
	}

	_, err := r.db.NewInsert().
		Model(dbResult).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create result: %w", err)
	}

	return mapDBResultToModel(dbResult), nil
}

// ListByUser returns all results for a user, most recent first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*Result, error) {
	var dbResults []*database.Result
	err := r.db.NewSelect().
		Model(&dbResults).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]*Result, 0, len(dbResults))
	for _, dbr := range dbResults {
		results = append(results, mapDBResultToModel(dbr))
	}

	return results, nil
}

// mapDBResultToModel converts database model to domain model
func mapDBResultToModel(dbr *database.Result) *Result {
	return &Result{
		ID:        dbr.ID,
		UserID:    dbr.UserID,
		Juego:     dbr.Juego,
		Score:     dbr.Score,
		CreatedAt: dbr.CreatedAt,
	}
}
