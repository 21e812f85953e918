package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the database model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Nombre       string `bun:"nombre,notnull"`
	Apellido     string `bun:"apellido,notnull"`
	Email        string `bun:"email,notnull,unique"`
	PasswordHash string `bun:"password_hash,notnull"`
}

// Result is the database model for the results table.
// The owning user reference is mandatory: no code path ever records an
// anonymous score.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    int64     `bun:"user_id,notnull"`
	Juego     string    `bun:"juego,notnull"`
	Score     int       `bun:"score,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
