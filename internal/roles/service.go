package roles

import (
	"context"

	"github.com/mediboard/mediboard/internal/users"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	CreateRole(ctx context.Context, name string) (*Role, error)
	DeleteRole(ctx context.Context, id int64) error
}

// UsersPort supplies the user list used to derive member counts.
type UsersPort interface {
	ListUsers(ctx context.Context) ([]users.User, error)
}

// Service handles role business logic.
type Service struct {
	repo  RepositoryPort
	users UsersPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, usersPort UsersPort) *Service {
	return &Service{repo: repo, users: usersPort}
}

// ListRoles returns all roles with UsersCount filled in from the current
// user list. A failed user fetch leaves every count at zero rather than
// failing the listing.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	list, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.users.ListUsers(ctx)
	if err != nil {
		return list, nil
	}
	for i := range list {
		list[i].UsersCount = countMembers(members, list[i].ID)
	}
	return list, nil
}

// CreateRole registers a new role upstream.
func (s *Service) CreateRole(ctx context.Context, name string) (*Role, error) {
	return s.repo.CreateRole(ctx, name)
}

// DeleteRole removes a role upstream.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

func countMembers(members []users.User, roleID int64) int {
	count := 0
	for _, member := range members {
		if member.HasRole(roleID) {
			count++
		}
	}
	return count
}
