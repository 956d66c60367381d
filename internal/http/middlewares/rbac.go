package middlewares

import (
	"net/http"

	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if role != required {
			abort(c, http.StatusForbidden, "forbidden", string(required)+" role required")
			return
		}
		c.Next()
	}
}
