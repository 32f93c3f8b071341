package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aerosimlabs/simgate/pkg/helpers"
	"github.com/aerosimlabs/simgate/pkg/response"
)

const (
	CtxClaimsKey = "claims"
	CtxUserIDKey = "userID"
)

// BearerAuth validates the Authorization header and injects the token
// claims into the Gin context. Missing header, bad signature and expiry all
// end in the same 401.
func BearerAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			response.AbortFail(c, http.StatusUnauthorized, "Missing authorization header.")
			return
		}
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			response.AbortFail(c, http.StatusUnauthorized, "Invalid token.")
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, "Invalid token.")
			return
		}
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.ID)
		c.Next()
	}
}
