// Package middleware provides HTTP middleware for the API.
//
// Go Pattern: Middleware in Gin is a gin.HandlerFunc that calls c.Next() to
// continue the chain, or c.Abort() to stop processing.
//
// jwt.go issues and validates session tokens. A takeoff session has no user
// account behind it — the JWT minted at session creation IS the capability to
// use that session, so losing the token means losing the working set when the
// session expires. Tokens are HS256-signed and carry only the session ID.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Babaeti777/takeoff-api/internal/models"
	"github.com/Babaeti777/takeoff-api/internal/takeoff"
)

const sessionContextKey = "takeoff_session"

// tokenLifetime is deliberately longer than the session idle TTL — the
// session store, not the token, decides when a working set is gone.
const tokenLifetime = 72 * time.Hour

// SessionClaims extends standard JWT claims with the takeoff session ID.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a new JWT for a takeoff session.
func GenerateSessionToken(sessionID, secret string) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates and parses a session token string.
func ParseSessionToken(tokenString, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// SessionAuth returns middleware that resolves the Bearer token to a live
// session. A valid token whose session has been evicted still fails — the
// working set is gone and the client must start a new session.
func SessionAuth(store *takeoff.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing or invalid Authorization header. Use 'Bearer <token>' from POST /api/v1/sessions",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := ParseSessionToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired session token",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		session, ok := store.Get(claims.SessionID)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "session_expired",
				Message: "Session no longer exists; create a new one via POST /api/v1/sessions",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// GetSession retrieves the authenticated session from the request context.
// Call this in handlers after SessionAuth has run.
func GetSession(c *gin.Context) *takeoff.Session {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}
	session, ok := val.(*takeoff.Session)
	if !ok {
		return nil
	}
	return session
}
