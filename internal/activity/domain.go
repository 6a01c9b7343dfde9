package activity

import "time"

// UserRole is one role attached to a user snapshot.
type UserRole struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserSnapshot is the profile embedded in a record when the backend resolved it.
type UserSnapshot struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Roles []UserRole `json:"roles"`
}

// Record is one logged backend request/session event. All timestamp fields
// are optional; the backend owns the record lifecycle and this side only
// reads full snapshots.
type Record struct {
	ID              int64         `json:"id"`
	IPAddress       string        `json:"ip_address"`
	Country         string        `json:"country"`
	City            string        `json:"city"`
	Method          string        `json:"method"`
	Routes          []string      `json:"routes"`
	CreatedAt       *time.Time    `json:"created_at,omitempty"`
	LastSeenAt      *time.Time    `json:"last_seen_at,omitempty"`
	LoginAt         *time.Time    `json:"login_at,omitempty"`
	LogoutAt        *time.Time    `json:"logout_at,omitempty"`
	SessionDuration int64         `json:"session_duration"`
	ActiveTime      int64         `json:"active_time"`
	UserAgent       string        `json:"user_agent"`
	UserID          int64         `json:"user_id,omitempty"`
	User            *UserSnapshot `json:"user,omitempty"`
}

// Snapshot is the last fetched record list plus fetch metadata.
type Snapshot struct {
	Records   []Record  `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
}
