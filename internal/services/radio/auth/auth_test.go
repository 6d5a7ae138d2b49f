package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
)

var loginAt = time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC)

func TestDefaultConfigPermissions(t *testing.T) {
	t.Parallel()

	authz := NewAuthorizer(DefaultConfig("pw"), nil)
	tests := []struct {
		role Role
		want []Permission
	}{
		{role: RoleAdmin, want: Permissions},
		{role: RoleOperator, want: []Permission{PermissionAdd, PermissionReview, PermissionExport}},
		{role: RoleViewer, want: []Permission{PermissionExport}},
	}
	for _, tc := range tests {
		got := authz.Permissions(tc.role).List()
		if len(got) != len(tc.want) {
			t.Fatalf("%s permissions = %v, want %v", tc.role, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s permissions = %v, want %v", tc.role, got, tc.want)
			}
		}
	}
	if got := authz.Permissions(Role("guest")).List(); len(got) != 0 {
		t.Fatalf("unknown role permissions = %v, want none", got)
	}
}

func TestDefaultConfigFallsBackToDefaultPassword(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig("  ")
	if cfg.Users["ver"].Password != DefaultPassword {
		t.Fatalf("password = %q, want default", cfg.Users["ver"].Password)
	}
	if got := cfg.Usernames(); len(got) != 3 || got[0] != "administrador" || got[2] != "ver" {
		t.Fatalf("usernames = %v", got)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	authz := NewAuthorizer(DefaultConfig("pw"), func() time.Time { return loginAt.Add(500 * time.Millisecond) })

	session, err := authz.Login(" cusac ", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Username != "cusac" || session.Role != RoleOperator || !session.LoginAt.Equal(loginAt) {
		t.Fatalf("session = %+v", session)
	}
	if actor := session.Actor(); actor.Username != "cusac" || actor.Role != "operator" {
		t.Fatalf("actor = %+v", actor)
	}

	for _, creds := range [][2]string{{"cusac", "wrong"}, {"nadie", "pw"}, {"", ""}} {
		_, err := authz.Login(creds[0], creds[1])
		if apperrors.CodeOf(err) != apperrors.CodeAuthInvalidCredentials {
			t.Fatalf("login %v error = %v, want invalid credentials", creds, err)
		}
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	authz := NewAuthorizer(DefaultConfig("pw"), nil)
	viewer := Session{Username: "ver", Role: RoleViewer}

	if err := authz.Require(viewer, PermissionExport); err != nil {
		t.Fatalf("viewer export: %v", err)
	}
	err := authz.Require(viewer, PermissionImport)
	if apperrors.CodeOf(err) != apperrors.CodeAuthPermissionDenied {
		t.Fatalf("viewer import error = %v, want permission denied", err)
	}
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Metadata["permission"] != "import" || domainErr.Metadata["user"] != "ver" {
		t.Fatalf("metadata = %+v", domainErr)
	}
	if err := authz.Require(Session{}, PermissionExport); apperrors.CodeOf(err) != apperrors.CodeAuthSessionMissing {
		t.Fatalf("empty session error = %v, want session missing", err)
	}
}

func newManager(t *testing.T, dir string, now time.Time) *SessionManager {
	t.Helper()

	manager, err := NewSessionManager(SessionConfig{
		Path: filepath.Join(dir, "session.jwt"),
		TTL:  time.Hour,
		Now:  func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}
	return manager
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manager := newManager(t, dir, loginAt.Add(10*time.Minute))

	if _, err := manager.Load(); apperrors.CodeOf(err) != apperrors.CodeAuthSessionMissing {
		t.Fatalf("load before save error = %v, want session missing", err)
	}

	session := Session{Username: "administrador", Role: RoleAdmin, LoginAt: loginAt}
	if err := manager.Save(session); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(manager.Path())
	if err != nil {
		t.Fatalf("stat session: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("session mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := manager.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Username != session.Username || got.Role != session.Role || !got.LoginAt.Equal(session.LoginAt) {
		t.Fatalf("session = %+v, want %+v", got, session)
	}

	if err := manager.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := manager.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if _, err := manager.Load(); apperrors.CodeOf(err) != apperrors.CodeAuthSessionMissing {
		t.Fatalf("load after clear error = %v, want session missing", err)
	}
}

func TestSessionExpires(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := newManager(t, dir, loginAt).Save(Session{Username: "ver", Role: RoleViewer, LoginAt: loginAt}); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := newManager(t, dir, loginAt.Add(time.Hour)).Load()
	if apperrors.CodeOf(err) != apperrors.CodeAuthSessionExpired {
		t.Fatalf("load error = %v, want session expired", err)
	}
}

func TestSessionSecretIsPersisted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := newManager(t, dir, loginAt)
	if err := first.Save(Session{Username: "ver", Role: RoleViewer, LoginAt: loginAt}); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "session.jwt.key"))
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("key mode = %v, want 0600", info.Mode().Perm())
	}

	if _, err := newManager(t, dir, loginAt).Load(); err != nil {
		t.Fatalf("load with persisted key: %v", err)
	}
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "session.jwt")
	signer, err := NewSessionManager(SessionConfig{Path: path, Secret: "one", Now: func() time.Time { return loginAt }})
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	if err := signer.Save(Session{Username: "administrador", Role: RoleAdmin, LoginAt: loginAt}); err != nil {
		t.Fatalf("save: %v", err)
	}
	verifier, err := NewSessionManager(SessionConfig{Path: path, Secret: "two", Now: func() time.Time { return loginAt }})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	if _, err := verifier.Load(); apperrors.CodeOf(err) != apperrors.CodeAuthSessionMissing {
		t.Fatalf("load error = %v, want session missing", err)
	}
}

func TestSaveRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	manager := newManager(t, t.TempDir(), loginAt)
	if err := manager.Save(Session{Username: "x", Role: Role("root")}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
