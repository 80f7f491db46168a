package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey string

const sessionIDKey ctxKey = "session_id"

const (
	SessionCookie = "pagewise_session"
	sessionTTL    = 7 * 24 * time.Hour
)

// Sessions issues and verifies the signed session token. Browsers carry it
// in a cookie; API clients may send it as a bearer token instead.
type Sessions struct {
	secret []byte
	logger *logrus.Logger
	now    func() time.Time
}

func NewSessions(secret string, logger *logrus.Logger) *Sessions {
	return &Sessions{secret: []byte(secret), logger: logger, now: time.Now}
}

// Middleware attaches a session id to the request context, starting a new
// session when the request carries no valid token.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.parse(tokenFromRequest(r))
		if err != nil {
			sid = uuid.NewString()
			token, err := s.Issue(sid)
			if err != nil {
				s.logger.WithError(err).Error("failed to sign session token")
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
				Expires:  s.now().Add(sessionTTL),
			})
		}

		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
	})
}

// Issue signs a token for the given session id.
func (s *Sessions) Issue(sid string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": s.now().Add(sessionTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Sessions) parse(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", errors.New("no session token")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid session token: %w", err)
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("invalid session claims")
	}
	return sid, nil
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

// SessionID returns the id attached by Middleware.
func SessionID(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}
