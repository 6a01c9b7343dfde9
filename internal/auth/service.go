// Package auth handles sign-in and sign-out against the upstream API.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/remote"
	"github.com/mediboard/mediboard/internal/shared"
)

// RemotePort is the slice of the upstream client auth depends on.
type RemotePort interface {
	Login(ctx context.Context, identifier string) (*remote.Credentials, error)
	Logout(ctx context.Context) error
}

// Service performs login and logout, caching credentials in the session.
type Service struct {
	remote   RemotePort
	sessions *shared.SessionManager
	logger   *slog.Logger
}

// NewService constructs the auth service.
func NewService(remotePort RemotePort, sessions *shared.SessionManager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remotePort, sessions: sessions, logger: logger}
}

// Login authenticates the identifier upstream and stores the returned token
// and profile blob in the session. The blob must parse before it is cached so
// a later guard check never sees credentials it cannot read.
func (s *Service) Login(ctx context.Context, sess *shared.Session, identifier string) (*guard.Profile, error) {
	creds, err := s.remote.Login(ctx, identifier)
	if err != nil {
		return nil, err
	}

	blob := string(creds.Profile)
	profile, err := guard.Parse(blob)
	if err != nil {
		s.logger.Warn("login returned unusable profile", slog.Any("error", err))
		return nil, fmt.Errorf("auth: unusable profile: %w", shared.ErrRemoteFailure)
	}

	sess.SetCredentials(creds.Token, blob)
	return profile, nil
}

// Logout revokes the token upstream on a best-effort basis and always clears
// the local session.
func (s *Service) Logout(ctx context.Context, sess *shared.Session) {
	if sess.Authenticated() {
		if err := s.remote.Logout(ctx); err != nil {
			s.logger.Warn("upstream logout failed", slog.Any("error", err))
		}
	}
	sess.ClearCredentials()
	s.sessions.Destroy(sess)
}
