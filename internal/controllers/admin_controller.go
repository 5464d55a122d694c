package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	users services.UserService
	admin services.AdminService
}

func NewAdminController(users services.UserService, admin services.AdminService) *AdminController {
	return &AdminController{users: users, admin: admin}
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/users [get]
func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, users)
}

// GetPlatformStats godoc
// @Summary Platform counts
// @Description Number of users, restaurants, menu items and orders
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/stats [get]
func (ac *AdminController) GetPlatformStats(c *gin.Context) {
	stats, err := ac.admin.PlatformStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}
