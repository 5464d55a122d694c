package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type AuthController struct {
	userService services.UserService
	tokens      *auth.TokenIssuer
}

func NewAuthController(userService services.UserService, tokens *auth.TokenIssuer) *AuthController {
	return &AuthController{
		userService: userService,
		tokens:      tokens,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Description Create an account and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param user body registerRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.APIError "Missing fields or email already registered"
// @Router /api/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.userService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	ac.respondWithToken(c, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} models.APIError "Invalid credentials"
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		log.WithField("email", req.Email).Info("Failed login attempt")
		respondError(c, err)
		return
	}

	ac.respondWithToken(c, http.StatusOK, user)
}

// Me godoc
// @Summary Current user
// @Description Return the authenticated user's profile
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.userService.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update name, phone or address of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Param profile body updateProfileRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/me [put]
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := ac.userService.UpdateProfile(c.Request.Context(), currentUserID(c), services.ProfileUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

func (ac *AuthController) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := ac.tokens.Issue(user)
	if err != nil {
		respondError(c, models.NewServerError(err))
		return
	}
	c.JSON(status, AuthResponse{Success: true, Token: token, User: user})
}
