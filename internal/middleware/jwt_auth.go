package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/yopdevs/platform/backend/internal/models"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "yop_session"

// Context keys set by AuthMiddleware.
const (
	ContextUserID  = "userID"
	ContextEmail   = "email"
	ContextProfile = "profile"
)

// SessionIssuer signs and parses the local session tokens issued after a
// Firebase login.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer creates an issuer signing with secret (HS256).
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (s *SessionIssuer) TTL() time.Duration { return s.ttl }

// Issue returns a signed token for userID and its expiry.
func (s *SessionIssuer) Issue(userID, email string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := &models.SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expires, nil
}

// Parse validates a session token and returns its claims.
func (s *SessionIssuer) Parse(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// AuthMiddleware authenticates a request with a session token taken from the
// Authorization header, the session cookie or the token query parameter
// (browsers cannot set headers on WebSocket upgrades). Tokens that are not
// sessions are tried as Firebase ID tokens when verifier is set.
func AuthMiddleware(sessions *SessionIssuer, verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := extractToken(c)
			if err != nil {
				return err
			}

			if claims, err := sessions.Parse(tokenString); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextEmail, claims.Email)
				return next(c)
			}

			if verifier == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
			}
			uid, email, err := VerifyIDToken(c.Request().Context(), verifier, tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
			}
			c.Set(ContextUserID, uid)
			c.Set(ContextEmail, email)
			return next(c)
		}
	}
}

func extractToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	if token := c.QueryParam("token"); token != "" {
		return token, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
}

// CurrentUserID returns the authenticated user id.
func CurrentUserID(c echo.Context) string {
	id, _ := c.Get(ContextUserID).(string)
	return id
}

// CurrentEmail returns the authenticated user's email when known.
func CurrentEmail(c echo.Context) string {
	email, _ := c.Get(ContextEmail).(string)
	return email
}
