package app

import (
	"context"
	"log"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
	"github.com/louisbranch/radiocontrol/internal/platform/requestctx"
	"github.com/louisbranch/radiocontrol/internal/services/radio/auth"
	"github.com/louisbranch/radiocontrol/internal/services/radio/storage"
)

// Login verifies credentials and persists the session.
func (s *Service) Login(ctx context.Context, username, password string) (session auth.Session, err error) {
	ctx, span := s.start(ctx, "Login")
	defer func() { finish(span, err) }()

	session, err = s.authz.Login(username, password)
	if err != nil {
		return auth.Session{}, err
	}
	if err := s.sessions.Save(session); err != nil {
		return auth.Session{}, err
	}
	ctx = requestctx.WithActor(ctx, session.Actor())
	s.notify(ctx, storage.ActionLogin, storage.EntitySystem, "Inicio de sesión: "+session.Username, map[string]string{
		"role": string(session.Role),
	})
	return session, nil
}

// Logout clears the persisted session. It returns the session that was
// closed, or a zero session when none was valid.
func (s *Service) Logout(ctx context.Context) (session auth.Session, err error) {
	ctx, span := s.start(ctx, "Logout")
	defer func() { finish(span, err) }()

	session, loadErr := s.sessions.Load()
	if err := s.sessions.Clear(); err != nil {
		return auth.Session{}, err
	}
	if loadErr != nil {
		if apperrors.CodeOf(loadErr) != apperrors.CodeAuthSessionMissing {
			log.Printf("logout discarded session: %v", loadErr)
		}
		return auth.Session{}, nil
	}
	ctx = requestctx.WithActor(ctx, session.Actor())
	s.notify(ctx, storage.ActionLogout, storage.EntitySystem, "Cierre de sesión: "+session.Username, nil)
	return session, nil
}

// Authenticate loads the persisted session and attaches it to ctx.
func (s *Service) Authenticate(ctx context.Context) (context.Context, auth.Session, error) {
	session, err := s.sessions.Load()
	if err != nil {
		return ctx, auth.Session{}, err
	}
	return requestctx.WithActor(ctx, session.Actor()), session, nil
}

// Permissions returns what the acting session may do.
func (s *Service) Permissions(ctx context.Context) (auth.PermissionSet, error) {
	session, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	return s.authz.Permissions(session.Role), nil
}
