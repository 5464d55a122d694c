package controllers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUsersAndStats(t *testing.T) {
	app := setupTestApp(t)
	_, user := app.createUser("alice@example.com", models.RoleUser)
	_, admin := app.createUser("admin@example.com", models.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, app.request(http.MethodGet, "/api/admin/users", user, nil).Code)

	w := app.request(http.MethodGet, "/api/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dataResponse[[]models.User]](t, w).Data, 2)
	assert.NotContains(t, w.Body.String(), "password")

	w = app.request(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[dataResponse[services.PlatformStats]](t, w).Data
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(1), stats.Restaurants)
	assert.Equal(t, int64(2), stats.MenuItems)
}

func TestClientCredentialsFlow(t *testing.T) {
	app := setupTestApp(t)
	admin, adminToken := app.createUser("admin@example.com", models.RoleAdmin)

	w := app.request(http.MethodPost, "/api/clients", adminToken, gin.H{"name": "Kitchen display"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, w)
	clientID, _ := created["client_id"].(string)
	secret, _ := created["client_secret"].(string)
	require.NotEmpty(t, clientID)
	require.NotEmpty(t, secret)

	var stored models.OAuthClient
	require.NoError(t, app.db.First(&stored, "id = ?", clientID).Error)
	assert.NotEqual(t, secret, stored.Secret)
	assert.Equal(t, admin.ID, stored.UserID)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", secret)
	req, err := http.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token := decode[map[string]interface{}](t, rec)
	accessToken, _ := token["access_token"].(string)
	require.NotEmpty(t, accessToken)

	// the client acts as its owner
	w = app.request(http.MethodGet, "/api/orders/stats", accessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.request(http.MethodGet, "/api/clients", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dataResponse[[]models.OAuthClient]](t, w).Data, 1)
	assert.NotContains(t, w.Body.String(), secret)

	assert.Equal(t, http.StatusNoContent, app.request(http.MethodDelete, "/api/clients/"+clientID, adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.request(http.MethodDelete, "/api/clients/"+clientID, adminToken, nil).Code)
}
