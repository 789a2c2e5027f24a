package domain

import "time"

// Account is a login/password credential record owned by exactly one user.
// The stored password is never plaintext; it is sealed by the credential
// cipher and bound to the login.
type Account struct {
	ID                string
	UserID            string // owning user; empty means unassigned
	Login             string // unique across all accounts
	EncryptedPassword string
	Disabled          bool
	Properties        map[string]any // free-form, persisted as JSON
	LastModified      time.Time      // bumped on every password change
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AccountSummary is the listing shape exposed to callers: identity only,
// never the stored secret.
type AccountSummary struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

// AccountExport is the privileged cross-module export shape with the
// decrypted password attached.
type AccountExport struct {
	ID       string `json:"id"`
	Login    string `json:"login"`
	Password string `json:"password"`
}
