package result

import "time"

// Result is one recorded quiz outcome for a user. Immutable once created.
type Result struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Juego     string    `json:"juego"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
