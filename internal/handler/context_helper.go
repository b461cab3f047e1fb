package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-timetable-api/internal/middleware"
	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
	"github.com/noah-isme/college-timetable-api/pkg/response"
)

// currentActor returns the authenticated caller or writes a 401 and reports false.
func currentActor(c *gin.Context) (*models.JWTClaims, bool) {
	if value, exists := c.Get(middleware.ContextUserKey); exists {
		if claims, ok := value.(*models.JWTClaims); ok && claims.UserID != "" {
			return claims, true
		}
	}
	response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
	return nil, false
}
