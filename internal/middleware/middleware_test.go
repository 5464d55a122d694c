package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret-key-32-characters")

type fakeUsers map[uint]*models.User

func (f fakeUsers) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, models.NewNotFoundError("User not found")
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func validClaims(uid interface{}, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"uid":  uid,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func setupRouter(users fakeUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	protected := router.Group("/", JWTAuth(testSecret, users))
	protected.GET("/me", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		role, _ := c.Get(ContextUserRole)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "role": role})
	})
	protected.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func doRequest(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	users := fakeUsers{
		1: {ID: 1, Name: "Alice", Role: models.RoleUser},
		2: {ID: 2, Name: "Root", Role: models.RoleAdmin},
	}
	router := setupRouter(users)

	expired := validClaims("1", models.RoleUser)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	future := validClaims("1", models.RoleUser)
	future["iat"] = time.Now().Add(time.Hour).Unix()

	noExp := validClaims("1", models.RoleUser)
	delete(noExp, "exp")

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("1", models.RoleUser)).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	tests := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{"valid string uid", "Bearer " + signToken(t, validClaims("1", models.RoleUser)), http.StatusOK},
		{"valid numeric uid", "Bearer " + signToken(t, validClaims(float64(2), models.RoleAdmin)), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong signing key", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, expired), http.StatusUnauthorized},
		{"issued in future", "Bearer " + signToken(t, future), http.StatusUnauthorized},
		{"no expiry", "Bearer " + signToken(t, noExp), http.StatusUnauthorized},
		{"missing uid", "Bearer " + signToken(t, jwt.MapClaims{"role": "user", "exp": time.Now().Add(time.Hour).Unix()}), http.StatusUnauthorized},
		{"zero uid", "Bearer " + signToken(t, validClaims("0", models.RoleUser)), http.StatusUnauthorized},
		{"unknown role", "Bearer " + signToken(t, validClaims("1", "superuser")), http.StatusUnauthorized},
		{"deleted user", "Bearer " + signToken(t, validClaims("99", models.RoleUser)), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "/me", tt.authorization)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusUnauthorized {
				var body models.APIError
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.False(t, body.Success)
				assert.NotEmpty(t, body.Message)
				assert.Equal(t, string(models.KindAuthentication), body.Code)
			}
		})
	}
}

func TestJWTAuth_RejectsNoneAlgorithm(t *testing.T) {
	router := setupRouter(fakeUsers{1: {ID: 1, Role: models.RoleUser}})

	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("1", models.RoleAdmin))
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	w := doRequest(router, "/me", "Bearer "+unsigned)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_StoredRoleWins(t *testing.T) {
	router := setupRouter(fakeUsers{1: {ID: 1, Role: models.RoleUser}})

	// token claims admin but the stored user is not
	w := doRequest(router, "/admin", "Bearer "+signToken(t, validClaims("1", models.RoleAdmin)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole(t *testing.T) {
	users := fakeUsers{
		1: {ID: 1, Role: models.RoleUser},
		2: {ID: 2, Role: models.RoleAdmin},
	}
	router := setupRouter(users)

	w := doRequest(router, "/admin", "Bearer "+signToken(t, validClaims("1", models.RoleUser)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body models.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(models.KindAuthorization), body.Code)

	w = doRequest(router, "/admin", "Bearer "+signToken(t, validClaims("2", models.RoleAdmin)))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(router, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) {
		c.Set(ContextUserID, uint(7))
		c.Status(http.StatusTeapot)
	})

	doRequest(router, "/ping", "")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/ping", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(7), entry["user_id"])
	assert.Equal(t, "warning", entry["level"])
}
