package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/madadhq/invoice-financing/internal/application/service"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
)

const principalKey = "principal"

// Authenticate verifies the bearer token and stores the principal in
// the request context
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		principal, err := authService.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid token",
			})
			return
		}

		c.Set(principalKey, *principal)
		c.Next()
	}
}

// Authorize allows only the listed roles past
func Authorize(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		principal, ok := principalFrom(c)
		if !ok || !allowed[principal.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "access denied",
			})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (entity.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return entity.Principal{}, false
	}
	principal, ok := value.(entity.Principal)
	return principal, ok
}
