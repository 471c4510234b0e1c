package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/kpi-engine/kpi"
)

// =============================================================================
// SESSIONS
// =============================================================================

// SessionManager issues and checks bearer tokens. Sessions live in memory:
// a restart logs everyone out. The client contract treats any 401 as a
// forced re-login, never a retry.
type SessionManager struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]session
	now      func() time.Time
}

type session struct {
	user      kpi.User
	expiresAt time.Time
}

func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		ttl:      ttl,
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

// Issue creates a token for the user.
func (m *SessionManager) Issue(u kpi.User) string {
	token := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = session{user: u, expiresAt: m.now().Add(m.ttl)}
	return token
}

// Resolve returns the user behind a token. Expired tokens are removed and
// report ErrAuthExpired, indistinguishable from never-issued ones.
func (m *SessionManager) Resolve(token string) (kpi.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return kpi.User{}, kpi.ErrAuthExpired
	}
	if m.now().After(s.expiresAt) {
		delete(m.sessions, token)
		return kpi.User{}, kpi.ErrAuthExpired
	}
	return s.user, nil
}

// Revoke drops a token (logout).
func (m *SessionManager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type contextKey string

const userContextKey contextKey = "user"

// userFrom returns the authenticated user stored by RequireAuth.
func userFrom(ctx context.Context) kpi.User {
	u, _ := ctx.Value(userContextKey).(kpi.User)
	return u
}

// RequireAuth checks the bearer token and stores the user in the request
// context. Missing, invalid, and expired tokens all answer 401.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		user, err := h.Sessions.Resolve(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Session expired", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

// RequireManagement allows only management users through. Must run inside
// RequireAuth.
func (h *Handler) RequireManagement(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r.Context()).IsManagement() {
			writeError(w, http.StatusForbidden, "Management role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// =============================================================================
// LOGIN / LOGOUT HANDLERS
// =============================================================================

// Login authenticates credentials and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token: h.Sessions.Issue(user),
		User:  UserDTO{Name: user.Name, Email: user.Email, Role: user.Role},
	})
}

// Logout revokes the caller's token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Revoke(bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
