package user

// User is the domain model for a registered player.
type User struct {
	ID           int64  `json:"id"`
	Nombre       string `json:"nombre"`
	Apellido     string `json:"apellido"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose password hash
}
