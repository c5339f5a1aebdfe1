package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// User is the authenticated caller as reconstructed from JWT claims.
// There is no user table; identity exists only to namespace favorites.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
