package domain

import "time"

// User is the minimal owning-user record the service keeps about the host
// system's user entity. Accounts reference users by ID; the public ID is the
// externally visible identifier (derived from the login at registration).
type User struct {
	ID        string
	PublicID  string
	TenantID  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
