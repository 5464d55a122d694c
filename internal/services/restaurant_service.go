package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RestaurantFilter narrows the public restaurant list
type RestaurantFilter struct {
	Category string
	Search   string
}

// RestaurantInput carries every editable restaurant field
type RestaurantInput struct {
	Name           string
	Description    string
	Address        string
	Phone          string
	Category       string
	ImageURL       string
	OpeningHours   string
	DeliveryFee    decimal.Decimal
	MinOrderAmount decimal.Decimal
	Rating         float64
}

func (in RestaurantInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return models.NewValidationError("Restaurant name is required")
	}
	if in.DeliveryFee.IsNegative() || in.MinOrderAmount.IsNegative() {
		return models.NewValidationError("Fees cannot be negative")
	}
	if in.Rating < 0 || in.Rating > 5 {
		return models.NewValidationError("Rating must be between 0 and 5")
	}
	return nil
}

func (in RestaurantInput) apply(r *models.Restaurant) {
	r.Name = strings.TrimSpace(in.Name)
	r.Description = in.Description
	r.Address = in.Address
	r.Phone = in.Phone
	r.Category = in.Category
	r.ImageURL = in.ImageURL
	r.OpeningHours = in.OpeningHours
	r.DeliveryFee = in.DeliveryFee
	r.MinOrderAmount = in.MinOrderAmount
	r.Rating = in.Rating
}

type RestaurantService interface {
	ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error)
	// GetRestaurant returns the restaurant with its full menu
	GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, error)
	CreateRestaurant(ctx context.Context, input RestaurantInput) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id uint, input RestaurantInput) (*models.Restaurant, error)
	// DeleteRestaurant removes a restaurant and its menu. Restaurants with orders are kept.
	DeleteRestaurant(ctx context.Context, id uint) error
}

type restaurantService struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewRestaurantService(db *gorm.DB, c cache.Cache) RestaurantService {
	if c == nil {
		c = cache.Nop{}
	}
	return &restaurantService{db: db, cache: c}
}

func (s *restaurantService) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.ToLower(strings.TrimSpace(filter.Search))

	key := cache.RestaurantsKey(filter.Category, filter.Search)
	var restaurants []models.Restaurant
	if cacheGet(ctx, s.cache, key, &restaurants) {
		return restaurants, nil
	}

	query := s.db.WithContext(ctx).Model(&models.Restaurant{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if err := query.Order("rating DESC, name ASC").Find(&restaurants).Error; err != nil {
		return nil, models.NewServerError(err)
	}

	cacheSet(ctx, s.cache, key, restaurants)
	return restaurants, nil
}

func (s *restaurantService) GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if cacheGet(ctx, s.cache, cache.RestaurantKey(id), &restaurant) {
		return &restaurant, nil
	}

	err := s.db.WithContext(ctx).
		Preload("MenuItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("category ASC, name ASC")
		}).
		First(&restaurant, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Restaurant not found")
	}

	cacheSet(ctx, s.cache, cache.RestaurantKey(id), restaurant)
	return &restaurant, nil
}

func (s *restaurantService) CreateRestaurant(ctx context.Context, input RestaurantInput) (*models.Restaurant, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var restaurant models.Restaurant
	input.apply(&restaurant)
	if err := s.db.WithContext(ctx).Create(&restaurant).Error; err != nil {
		return nil, models.NewServerError(err)
	}

	cacheDelete(ctx, s.cache, cache.RestaurantsPattern)
	return &restaurant, nil
}

func (s *restaurantService) UpdateRestaurant(ctx context.Context, id uint, input RestaurantInput) (*models.Restaurant, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, id).Error; err != nil {
		return nil, notFoundOr(err, "Restaurant not found")
	}

	input.apply(&restaurant)
	if err := s.db.WithContext(ctx).Save(&restaurant).Error; err != nil {
		return nil, models.NewServerError(err)
	}

	s.invalidate(ctx, id)
	return &restaurant, nil
}

func (s *restaurantService) DeleteRestaurant(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, id).Error; err != nil {
			return notFoundOr(err, "Restaurant not found")
		}

		var orders int64
		if err := tx.Model(&models.Order{}).Where("restaurant_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return models.NewConflictError("Restaurant has orders and cannot be deleted")
		}

		if err := tx.Where("restaurant_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&restaurant).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewServerError(err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *restaurantService) invalidate(ctx context.Context, id uint) {
	keys := append([]string{cache.RestaurantsPattern, cache.RestaurantKey(id)}, cache.MenuKeys(id)...)
	cacheDelete(ctx, s.cache, keys...)
}

// Cache failures never fail a request, the database is the source of truth

func cacheGet(ctx context.Context, c cache.Cache, key string, dest interface{}) bool {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.WithError(err).WithField("key", key).Warn("Catalog cache read failed")
	}
	return false
}

func cacheSet(ctx context.Context, c cache.Cache, key string, value interface{}) {
	if err := c.Set(ctx, key, value); err != nil {
		log.WithError(err).WithField("key", key).Warn("Catalog cache write failed")
	}
}

func cacheDelete(ctx context.Context, c cache.Cache, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		log.WithError(err).WithField("keys", keys).Warn("Catalog cache invalidation failed")
	}
}
