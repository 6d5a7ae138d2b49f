package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/radiocontrol/internal/platform/errors"
)

const (
	// DefaultSessionTTL bounds how long a saved session stays valid.
	DefaultSessionTTL = 12 * time.Hour

	secretBytes = 32
	issuer      = "radiocontrol"
)

// SessionConfig configures a SessionManager.
type SessionConfig struct {
	// Path is the file holding the signed session token.
	Path string
	// Secret is the HS256 key. When empty, a key is read from SecretPath or
	// generated there on first use.
	Secret string
	// SecretPath defaults to Path with a ".key" suffix.
	SecretPath string
	TTL        time.Duration
	Now        func() time.Time
}

// sessionClaims is the internal claims type used for JWT signing and parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// SessionManager saves, loads and clears the signed CLI session.
type SessionManager struct {
	path   string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager resolves the signing key and returns a manager.
func NewSessionManager(cfg SessionConfig) (*SessionManager, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("session path is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	secret := []byte(strings.TrimSpace(cfg.Secret))
	if len(secret) == 0 {
		secretPath := strings.TrimSpace(cfg.SecretPath)
		if secretPath == "" {
			secretPath = path + ".key"
		}
		loaded, err := loadOrCreateSecret(secretPath)
		if err != nil {
			return nil, err
		}
		secret = loaded
	}

	return &SessionManager{
		path:   path,
		secret: secret,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// Path returns the session file location.
func (m *SessionManager) Path() string {
	return m.path
}

// Save signs session and writes it to the session file.
func (m *SessionManager) Save(session Session) error {
	if session.Username == "" || !session.Role.Valid() {
		return errors.New("session requires a username and a known role")
	}
	issuedAt := session.LoginAt
	if issuedAt.IsZero() {
		issuedAt = m.now()
	}
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   session.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
		Role: string(session.Role),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(m.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load reads and verifies the saved session.
func (m *SessionManager) Load() (Session, error) {
	raw, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, apperrors.New(apperrors.CodeAuthSessionMissing, "no saved session")
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return Session{}, apperrors.New(apperrors.CodeAuthSessionMissing, "session file is empty")
	}

	var parsed sessionClaims
	_, err = jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Session{}, mapJWTError(err)
	}

	if parsed.Issuer != issuer || parsed.Subject == "" || !Role(parsed.Role).Valid() {
		return Session{}, apperrors.New(apperrors.CodeAuthSessionMissing, "session claims are invalid")
	}
	if parsed.ExpiresAt == nil {
		return Session{}, apperrors.New(apperrors.CodeAuthSessionMissing, "session exp is required")
	}
	if !parsed.ExpiresAt.Time.After(m.now()) {
		return Session{}, apperrors.New(apperrors.CodeAuthSessionExpired, "session is expired")
	}

	session := Session{Username: parsed.Subject, Role: Role(parsed.Role)}
	if parsed.IssuedAt != nil {
		session.LoginAt = parsed.IssuedAt.Time.UTC()
	}
	return session, nil
}

// Clear removes the saved session. Clearing a missing session is not an error.
func (m *SessionManager) Clear() error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.Wrap(apperrors.CodeAuthSessionMissing, "session signature is invalid", err)
	}
	return apperrors.Wrap(apperrors.CodeAuthSessionMissing, "session is invalid", err)
}

func loadOrCreateSecret(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		secret := strings.TrimSpace(string(raw))
		if secret == "" {
			return nil, fmt.Errorf("session key %s is empty", path)
		}
		return []byte(secret), nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read session key: %w", err)
	}

	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write session key: %w", err)
	}
	return []byte(secret), nil
}
