package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	appauth "github.com/beachhead-labs/beachhead-backend/internal/auth"
	"github.com/beachhead-labs/beachhead-backend/internal/logging"
)

// TokenVerifier is the part of *auth.Client the middleware needs.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and extracts user info
func FirebaseAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			return
		}

		decodedToken, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logging.NewLogger(c.Request.Context()).LogWarnf("VerifyIDToken", "rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			return
		}

		c.Set(appauth.CtxFirebaseUID, decodedToken.UID)

		// email is optional on Firebase tokens, and only trusted once verified
		if email, ok := decodedToken.Claims["email"].(string); ok {
			if verified, _ := decodedToken.Claims["email_verified"].(bool); verified {
				c.Set(appauth.CtxEmail, email)
			} else {
				logging.NewLogger(c.Request.Context()).
					LogWarnf("FirebaseAuthMiddleware", "uid=%s email %q not verified", decodedToken.UID, email)
			}
		}

		c.Next()
	}
}

// RequireAdmin lets through only callers whose email claim is in the
// allow-list. It must run after FirebaseAuthMiddleware.
func RequireAdmin(adminEmails []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		email := appauth.UserEmail(c)
		if _, ok := allowed[email]; !ok || email == "" {
			logging.NewLogger(c.Request.Context()).
				LogWarnf("RequireAdmin", "denied uid=%s email=%q", appauth.UserFirebaseUID(c), email)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "admin access required"})
			return
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
