package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/franciscosanchezn/food-ordering-api/internal/database"
	"github.com/franciscosanchezn/food-ordering-api/internal/events"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// fixture is restaurant R with A (9.00, available) and B (5.00, unavailable)
type fixture struct {
	customer   *models.User
	other      *models.User
	admin      *models.User
	restaurant *models.Restaurant
	itemA      *models.MenuItem
	itemB      *models.MenuItem
	elsewhere  *models.MenuItem
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	f := fixture{
		customer: createUser(t, db, "alice@example.com", models.RoleUser),
		other:    createUser(t, db, "bob@example.com", models.RoleUser),
		admin:    createUser(t, db, "admin@example.com", models.RoleAdmin),
	}

	f.restaurant = &models.Restaurant{Name: "R", Category: "pizza"}
	require.NoError(t, db.Create(f.restaurant).Error)
	f.itemA = createMenuItem(t, db, f.restaurant.ID, "A", "9.00", true)
	f.itemB = createMenuItem(t, db, f.restaurant.ID, "B", "5.00", false)

	otherRestaurant := &models.Restaurant{Name: "Elsewhere", Category: "sushi"}
	require.NoError(t, db.Create(otherRestaurant).Error)
	f.elsewhere = createMenuItem(t, db, otherRestaurant.ID, "Roll", "7.50", true)
	return f
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	user := &models.User{Name: email, Email: email, Phone: "555-0100", Role: role}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createMenuItem(t *testing.T, db *gorm.DB, restaurantID uint, name, price string, available bool) *models.MenuItem {
	item := &models.MenuItem{
		RestaurantID: restaurantID,
		Name:         name,
		Description:  name + " description",
		Price:        decimal.RequireFromString(price),
		IsAvailable:  available,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errBusDown = errors.New("bus down")
