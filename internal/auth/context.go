package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
)

// UserFirebaseUID extracts the Firebase UID from the Gin context
// This is set by FirebaseAuthMiddleware
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// UserEmail returns the email claim, lower-cased, or "". FirebaseAuthMiddleware
// only stores it when the token marks it verified.
func UserEmail(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.GetString(CtxEmail)))
}
