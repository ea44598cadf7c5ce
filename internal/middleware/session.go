package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
	"github.com/yusufkecer/bmi-tracker/internal/service"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	claimsKey  contextKey = "session_claims"
)

var ErrTokenRevoked = errors.New("session token has been revoked")

// SessionClaims identify the active user of a client session.
type SessionClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionTokens issues and verifies signed session tokens and remembers
// tokens revoked by logout until they expire.
type SessionTokens struct {
	secret  []byte
	ttl     time.Duration
	revoked sync.Map
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl}
}

// Issue returns a token that activates userID on subsequent requests.
func (st *SessionTokens) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(st.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(st.secret)
}

// Parse validates tokenStr and returns its claims.
func (st *SessionTokens) Parse(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return st.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if _, ok := st.revoked.Load(claims.ID); ok {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke invalidates the token identified by claims.
func (st *SessionTokens) Revoke(claims *SessionClaims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expires := time.Now().Add(st.ttl)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	st.revoked.Store(claims.ID, expires)
	st.pruneRevoked()
}

func (st *SessionTokens) pruneRevoked() {
	now := time.Now()
	st.revoked.Range(func(k, v any) bool {
		if exp, ok := v.(time.Time); ok && now.After(exp) {
			st.revoked.Delete(k)
		}
		return true
	})
}

// UserLoader rehydrates the user named by a session token.
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// SessionMiddleware attaches a service.Session to every request. Requests
// without a bearer token get an empty session; a bad token is rejected.
func SessionMiddleware(tokens *SessionTokens, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := service.NewSession()
			ctx := context.WithValue(r.Context(), sessionKey, sess)

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if tokenStr == header {
				writeError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "session user no longer exists")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to load session")
				return
			}

			sess.Activate(user)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the request's session, or an empty one.
func SessionFromContext(ctx context.Context) *service.Session {
	if sess, ok := ctx.Value(sessionKey).(*service.Session); ok {
		return sess
	}
	return service.NewSession()
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*SessionClaims)
	return claims, ok
}
