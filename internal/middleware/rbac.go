package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

// RequireRoles lets a request through only when the authenticated role is listed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Writers may change the timetable and workload data.
func Writers() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleScheduler)
}

// Readers covers every authenticated role.
func Readers() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleScheduler, models.RoleViewer)
}
