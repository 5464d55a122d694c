package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *gorm.DB {
	db, err := OpenStore(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestServer(t *testing.T, mux *http.ServeMux) *APIClient {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL, NewMemoryTokenStore())
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.APIError{Success: false, Message: message})
}

// collect drains ch, failing the test if it is not closed in time
func collect[T any](t *testing.T, ch <-chan Result[T]) []Result[T] {
	t.Helper()
	var results []Result[T]
	timeout := time.After(5 * time.Second)
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				return results
			}
			results = append(results, r)
		case <-timeout:
			t.Fatal("channel was not closed")
			return nil
		}
	}
}

func restaurant(id uint, name, category string, rating float64) models.Restaurant {
	return models.Restaurant{ID: id, Name: name, Category: category, Rating: rating, DeliveryFee: decimal.RequireFromString("1.50")}
}

func menuItem(id, restaurantID uint, name, price string, available bool) models.MenuItem {
	return models.MenuItem{
		ID:           id,
		RestaurantID: restaurantID,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		IsAvailable:  available,
	}
}

func seedRestaurants(t *testing.T, db *gorm.DB, restaurants ...models.Restaurant) {
	for _, r := range restaurants {
		row := newRestaurantRow(r, time.Now())
		require.NoError(t, db.Create(&row).Error)
	}
}
