package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Gin context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUser     = "user"
	ContextClientID = "clientID"
)

// UserLookup resolves the user embedded in a token
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// JWTAuth validates bearer tokens issued at login/registration or by the
// OAuth2 token endpoint, then loads the user they belong to.
// A token whose user no longer exists is rejected.
func JWTAuth(jwtSecret []byte, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// RFC 6750: Extract Bearer token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, models.NewAuthenticationError("Authorization token required"))
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortWithError(c, models.NewAuthenticationError("Authorization header must use Bearer scheme"))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			abortWithError(c, models.NewAuthenticationError("Bearer token is empty"))
			return
		}

		claims, err := parseAndValidateJWT(tokenString, jwtSecret)
		if err != nil {
			abortWithError(c, &models.AppError{Kind: models.KindAuthentication, Message: "Invalid or expired token", Err: err})
			return
		}

		userID, err := extractUserID(claims)
		if err != nil {
			abortWithError(c, &models.AppError{Kind: models.KindAuthentication, Message: "Invalid token", Err: err})
			return
		}
		if _, err := extractRole(claims); err != nil {
			abortWithError(c, &models.AppError{Kind: models.KindAuthentication, Message: "Invalid token", Err: err})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				abortWithError(c, models.NewAuthenticationError("User not found"))
				return
			}
			abortWithError(c, models.AsAppError(err))
			return
		}

		c.Set(ContextUserID, user.ID)
		// the stored role wins over the claim
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, user)
		if aud := audience(claims); aud != "" {
			c.Set(ContextClientID, aud)
		}

		c.Next()
	}
}

// CurrentUser returns the user attached by JWTAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// abortWithError writes the standard error body
func abortWithError(c *gin.Context, appErr *models.AppError) {
	c.AbortWithStatusJSON(appErr.Kind.Status(), models.NewAPIError(appErr, gin.IsDebugging()))
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC so the algorithm header cannot be swapped
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}

	return claims, nil
}

// parseAndValidateJWT parses the JWT and performs strict validation
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("token has no expiry")
	}
	if exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("invalid nbf claim: %w", err)
	}
	if nbf != nil && nbf.After(now) {
		return nil, fmt.Errorf("token not yet valid")
	}

	// Tokens issued in the future are rejected
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// extractUserID reads the "uid" claim, either a numeric string or a JSON number
func extractUserID(claims jwt.MapClaims) (uint, error) {
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsedID, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", uid)
		}
		if parsedID == 0 {
			return 0, fmt.Errorf("invalid user identifier: cannot be zero")
		}
		return uint(parsedID), nil
	}

	// JSON numbers are parsed as float64
	if uid, ok := claims["uid"].(float64); ok {
		if uid <= 0 {
			return 0, fmt.Errorf("invalid uid claim: must be positive, got: %f", uid)
		}
		return uint(uid), nil
	}

	return 0, fmt.Errorf("token missing required 'uid' claim")
}

// extractRole checks the role claim. All tokens must carry one.
func extractRole(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", fmt.Errorf("token missing required 'role' claim")
	}

	switch role {
	case models.RoleAdmin, models.RoleUser:
		return role, nil
	}
	return "", fmt.Errorf("invalid role '%s'. Allowed roles: admin, user", role)
}

func audience(claims jwt.MapClaims) string {
	if aud, ok := claims["aud"].(string); ok {
		return aud
	}
	if audArray, ok := claims["aud"].([]interface{}); ok && len(audArray) > 0 {
		if first, ok := audArray[0].(string); ok {
			return first
		}
	}
	return ""
}
