package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// InitSchema creates the users and results tables on first run.
// There is no migration mechanism; the schema is fixed.
func InitSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*Result)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id")`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}

	return nil
}
