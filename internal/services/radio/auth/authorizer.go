package auth

import (
	"crypto/subtle"
	"strings"
	"time"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
	"github.com/louisbranch/radiocontrol/internal/platform/requestctx"
)

// Session is an authenticated user.
type Session struct {
	Username string
	Role     Role
	LoginAt  time.Time
}

// Actor returns the session identity for request context propagation.
func (s Session) Actor() requestctx.Actor {
	return requestctx.Actor{Username: s.Username, Role: string(s.Role)}
}

// Authorizer checks credentials and permissions against a Config.
type Authorizer struct {
	cfg Config
	now func() time.Time
}

// NewAuthorizer builds an Authorizer. A nil clock uses time.Now.
func NewAuthorizer(cfg Config, now func() time.Time) *Authorizer {
	if now == nil {
		now = time.Now
	}
	return &Authorizer{cfg: cfg, now: now}
}

// Login verifies username and password and opens a session.
func (a *Authorizer) Login(username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	user, ok := a.cfg.Users[username]
	// Unknown users still run one comparison.
	expected := user.Password
	if !ok {
		expected = password + "\x00"
	}
	match := subtle.ConstantTimeCompare([]byte(expected), []byte(password)) == 1
	if !ok || !match || !user.Role.Valid() {
		return Session{}, apperrors.New(apperrors.CodeAuthInvalidCredentials, "invalid credentials")
	}
	return Session{
		Username: username,
		Role:     user.Role,
		LoginAt:  a.now().UTC().Truncate(time.Second),
	}, nil
}

// Permissions returns the permissions granted to role.
func (a *Authorizer) Permissions(role Role) PermissionSet {
	set, ok := a.cfg.Roles[role]
	if !ok {
		return PermissionSet{}
	}
	return set
}

// Can reports whether session holds perm.
func (a *Authorizer) Can(session Session, perm Permission) bool {
	return a.Permissions(session.Role).Has(perm)
}

// Require fails with AUTH_PERMISSION_DENIED unless session holds perm.
func (a *Authorizer) Require(session Session, perm Permission) error {
	if session.Username == "" {
		return apperrors.New(apperrors.CodeAuthSessionMissing, "no active session")
	}
	if a.Can(session, perm) {
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeAuthPermissionDenied,
		"permission denied: "+string(perm),
		map[string]string{"user": session.Username, "permission": string(perm)},
	)
}
