package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrExpiredSession = errors.New("session has expired")
)

const sessionCookieName = "ecoquiz_session"

// Session is the authenticated state carried across requests: who the user
// is plus a random id for log correlation.
type Session struct {
	UserID    int64
	UserName  string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager issues and verifies session tokens.
// Uses PASETO v4.local (symmetric encryption with XChaCha20-Poly1305), so
// the cookie value is both tamper-evident and opaque to the client.
type Manager struct {
	symmetricKey paseto.V4SymmetricKey
	duration     time.Duration
	isProduction bool
}

func NewManager(symmetricKey []byte, duration time.Duration, isProduction bool) (*Manager, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &Manager{
		symmetricKey: key,
		duration:     duration,
		isProduction: isProduction,
	}, nil
}

// Issue creates a new session token for the given user
func (m *Manager) Issue(userID int64, userName string) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(m.duration))
	token.SetString("user_id", strconv.FormatInt(userID, 10))
	token.SetString("user_name", userName)
	token.SetString("session_id", uuid.NewString())

	return token.V4Encrypt(m.symmetricKey, nil), nil
}

// Verify validates a session token and returns the session state.
// Tampered, malformed, and expired tokens all fail verification.
func (m *Manager) Verify(tokenStr string) (*Session, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(m.symmetricKey, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; distinguish expired from invalid
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredSession
		}
		return nil, ErrInvalidSession
	}

	userIDStr, err := token.GetString("user_id")
	if err != nil {
		return nil, ErrInvalidSession
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return nil, ErrInvalidSession
	}

	userName, err := token.GetString("user_name")
	if err != nil {
		return nil, ErrInvalidSession
	}

	sessionID, err := token.GetString("session_id")
	if err != nil {
		return nil, ErrInvalidSession
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidSession
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidSession
	}

	return &Session{
		UserID:    userID,
		UserName:  userName,
		SessionID: sessionID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// SetCookie writes the session token as a browser-session cookie
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest extracts and verifies the session from the request cookie.
// A missing cookie is an anonymous request, reported as ErrInvalidSession.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, ErrInvalidSession
	}
	return m.Verify(cookie.Value)
}
