package domain

// SessionSeed is the minimal identity material handed to the external
// session/token issuer after a successful login. The credential service
// produces it; it never mints tokens itself.
type SessionSeed struct {
	UserID     string
	AccountID  string
	Role       Role
	RememberMe bool
}
