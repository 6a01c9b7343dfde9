package users

import "time"

// RoleRef is a role membership carried on a user record.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User represents a user account for management.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Roles     []RoleRef `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// HasRole reports whether the user carries the given role id.
func (u User) HasRole(roleID int64) bool {
	for _, ref := range u.Roles {
		if ref.ID == roleID {
			return true
		}
	}
	return false
}
