package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/food-ordering-api/internal/database"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-jwt-secret-key-32-characters"

type testApp struct {
	t          *testing.T
	db         *gorm.DB
	router     *gin.Engine
	tokens     *auth.TokenIssuer
	restaurant *models.Restaurant
	itemA      *models.MenuItem
	itemB      *models.MenuItem
}

func setupTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	tokens := auth.NewTokenIssuer(testSecret, 168*time.Hour)
	router := SetupRouter(RouterConfig{
		JWTSecret:   []byte(testSecret),
		Tokens:      tokens,
		OAuth:       auth.NewOAuthService(db, testSecret),
		Users:       services.NewUserService(db),
		Restaurants: services.NewRestaurantService(db, nil),
		MenuItems:   services.NewMenuItemService(db, nil),
		Orders:      services.NewOrderService(db, nil),
		Clients:     services.NewClientService(db),
		Admin:       services.NewAdminService(db),
	})

	app := &testApp{t: t, db: db, router: router, tokens: tokens}

	app.restaurant = &models.Restaurant{Name: "R", Category: "pizza"}
	require.NoError(t, db.Create(app.restaurant).Error)
	app.itemA = app.createMenuItem("A", "9.00", true)
	app.itemB = app.createMenuItem("B", "5.00", false)
	return app
}

func (a *testApp) createMenuItem(name, price string, available bool) *models.MenuItem {
	item := &models.MenuItem{
		RestaurantID: a.restaurant.ID,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		IsAvailable:  available,
	}
	require.NoError(a.t, a.db.Create(item).Error)
	return item
}

// createUser stores a user and returns a bearer token for it
func (a *testApp) createUser(email, role string) (*models.User, string) {
	user := &models.User{Name: email, Email: email, Role: role}
	require.NoError(a.t, user.SetPassword("password123"))
	require.NoError(a.t, a.db.Create(user).Error)
	token, err := a.tokens.Issue(user)
	require.NoError(a.t, err)
	return user, token
}

func (a *testApp) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) count(model interface{}) int64 {
	var n int64
	require.NoError(a.t, a.db.Model(model).Count(&n).Error)
	return n
}

// dataResponse decodes {success, data} bodies
type dataResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.APIError {
	return decode[models.APIError](t, w)
}
