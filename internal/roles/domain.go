package roles

// Role is a role definition plus its derived member count. UsersCount is
// computed from the fetched user list on every reload, never persisted.
type Role struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	UsersCount int    `json:"users_count"`
}
