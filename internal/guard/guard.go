// Package guard decides whether the cached user profile may enter a route.
// It never touches the network or mutates storage; any parse failure is
// treated exactly like a missing session.
package guard

import (
	"encoding/json"
	"errors"
	"strings"
)

// Role is one role claim inside the cached profile.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Profile is the locally cached identity of the signed-in user.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// ErrInvalidProfile marks a blob that is missing or fails to parse.
var ErrInvalidProfile = errors.New("guard: invalid profile")

// Parse decodes the opaque profile blob. Empty or malformed blobs fail.
func Parse(blob string) (*Profile, error) {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" {
		return nil, ErrInvalidProfile
	}
	var profile Profile
	if err := json.Unmarshal([]byte(trimmed), &profile); err != nil {
		return nil, ErrInvalidProfile
	}
	if profile.ID == 0 {
		return nil, ErrInvalidProfile
	}
	return &profile, nil
}

// HasAnyRole reports whether the profile's role names intersect the permitted
// set, case-insensitively.
func (p *Profile) HasAnyRole(permitted []string) bool {
	if p == nil {
		return false
	}
	set := make(map[string]struct{}, len(p.Roles))
	for _, role := range p.Roles {
		name := strings.TrimSpace(strings.ToLower(role.Name))
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	for _, want := range permitted {
		if _, ok := set[strings.TrimSpace(strings.ToLower(want))]; ok {
			return true
		}
	}
	return false
}

// Decide is the single allow/deny decision: allow iff the blob parses and the
// role-name sets intersect. Everything ambiguous denies.
func Decide(blob string, permitted []string) bool {
	profile, err := Parse(blob)
	if err != nil {
		return false
	}
	return profile.HasAnyRole(permitted)
}

// HomePath maps the profile's primary role to its dashboard route.
func (p *Profile) HomePath() string {
	switch {
	case p.HasAnyRole([]string{"admin"}):
		return "/admin"
	case p.HasAnyRole([]string{"accountant"}):
		return "/accountant"
	case p.HasAnyRole([]string{"doctor"}):
		return "/doctor"
	default:
		return "/login"
	}
}
