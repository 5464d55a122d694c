package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError maps err to its status and the standard error body.
// Error detail is only included in debug (development) mode.
func respondError(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	if appErr.Kind == models.KindServer {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
	}
	c.JSON(appErr.Kind.Status(), models.NewAPIError(appErr, gin.IsDebugging()))
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, &models.AppError{Kind: models.KindValidation, Message: "Invalid request body", Err: err})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, models.NewValidationError("Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the id set by the auth middleware
func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserID)
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(middleware.ContextUserRole) == models.RoleAdmin
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "food-ordering-api",
	})
}
