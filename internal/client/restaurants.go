package client

import (
	"context"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RestaurantRepository serves restaurants and menus cache first
type RestaurantRepository struct {
	db     *gorm.DB
	api    *APIClient
	logger log.FieldLogger
	now    func() time.Time
}

func NewRestaurantRepository(db *gorm.DB, api *APIClient) *RestaurantRepository {
	return &RestaurantRepository{
		db:     db,
		api:    api,
		logger: log.WithField("repository", "restaurants"),
		now:    time.Now,
	}
}

// Restaurants lists restaurants, optionally of one category
func (r *RestaurantRepository) Restaurants(ctx context.Context, category string) <-chan Result[[]models.Restaurant] {
	return cacheThenNetwork(ctx, r.logger,
		func(ctx context.Context) ([]models.Restaurant, bool, error) {
			var rows []restaurantRow
			query := r.db.WithContext(ctx).Order("rating DESC, name ASC")
			if category != "" {
				query = query.Where("category = ?", category)
			}
			if err := query.Find(&rows).Error; err != nil {
				return nil, false, err
			}
			restaurants := make([]models.Restaurant, 0, len(rows))
			for _, row := range rows {
				restaurants = append(restaurants, row.model())
			}
			return restaurants, len(restaurants) > 0, nil
		},
		func(ctx context.Context) ([]models.Restaurant, error) {
			return r.api.Restaurants(ctx, category)
		},
		func(ctx context.Context, restaurants []models.Restaurant) error {
			return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				stale := tx.Where("1 = 1")
				if category != "" {
					stale = tx.Where("category = ?", category)
				}
				if err := stale.Delete(&restaurantRow{}).Error; err != nil {
					return err
				}
				if len(restaurants) == 0 {
					return nil
				}
				syncedAt := r.now()
				rows := make([]restaurantRow, 0, len(restaurants))
				for _, restaurant := range restaurants {
					rows = append(rows, newRestaurantRow(restaurant, syncedAt))
				}
				return tx.Save(&rows).Error
			})
		},
	)
}

// Menu lists the menu of one restaurant
func (r *RestaurantRepository) Menu(ctx context.Context, restaurantID uint) <-chan Result[[]models.MenuItem] {
	return cacheThenNetwork(ctx, r.logger.WithField("restaurant_id", restaurantID),
		func(ctx context.Context) ([]models.MenuItem, bool, error) {
			var rows []menuItemRow
			if err := r.db.WithContext(ctx).
				Where("restaurant_id = ?", restaurantID).
				Order("category ASC, name ASC").
				Find(&rows).Error; err != nil {
				return nil, false, err
			}
			items := make([]models.MenuItem, 0, len(rows))
			for _, row := range rows {
				items = append(items, row.model())
			}
			return items, len(items) > 0, nil
		},
		func(ctx context.Context) ([]models.MenuItem, error) {
			return r.api.Menu(ctx, restaurantID)
		},
		func(ctx context.Context, items []models.MenuItem) error {
			return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("restaurant_id = ?", restaurantID).Delete(&menuItemRow{}).Error; err != nil {
					return err
				}
				if len(items) == 0 {
					return nil
				}
				syncedAt := r.now()
				rows := make([]menuItemRow, 0, len(items))
				for _, item := range items {
					rows = append(rows, newMenuItemRow(item, syncedAt))
				}
				return tx.Save(&rows).Error
			})
		},
	)
}
