package services

import (
	"context"
	"strings"

	"github.com/franciscosanchezn/food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuItemInput carries every editable menu item field.
// IsAvailable defaults to true when nil.
type MenuItemInput struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Category     string
	ImageURL     string
	IsVegetarian bool
	IsAvailable  *bool
}

func (in MenuItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return models.NewValidationError("Menu item name is required")
	}
	if !in.Price.IsPositive() {
		return models.NewValidationError("Price must be greater than zero")
	}
	return nil
}

func (in MenuItemInput) apply(item *models.MenuItem) {
	item.Name = strings.TrimSpace(in.Name)
	item.Description = in.Description
	item.Price = in.Price.Round(2)
	item.Category = in.Category
	item.ImageURL = in.ImageURL
	item.IsVegetarian = in.IsVegetarian
	item.IsAvailable = in.IsAvailable == nil || *in.IsAvailable
}

type MenuItemService interface {
	// ListMenu returns the menu of a restaurant, optionally only available items
	ListMenu(ctx context.Context, restaurantID uint, availableOnly bool) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, restaurantID uint, input MenuItemInput) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uint, input MenuItemInput) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uint) error
}

type menuItemService struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewMenuItemService(db *gorm.DB, c cache.Cache) MenuItemService {
	if c == nil {
		c = cache.Nop{}
	}
	return &menuItemService{db: db, cache: c}
}

func (s *menuItemService) ListMenu(ctx context.Context, restaurantID uint, availableOnly bool) ([]models.MenuItem, error) {
	key := cache.MenuKey(restaurantID, availableOnly)
	var items []models.MenuItem
	if cacheGet(ctx, s.cache, key, &items) {
		return items, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Restaurant{}).Where("id = ?", restaurantID).Count(&count).Error; err != nil {
		return nil, models.NewServerError(err)
	}
	if count == 0 {
		return nil, models.NewNotFoundError("Restaurant not found")
	}

	query := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if availableOnly {
		query = query.Where("is_available = ?", true)
	}
	if err := query.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, models.NewServerError(err)
	}

	cacheSet(ctx, s.cache, key, items)
	return items, nil
}

func (s *menuItemService) GetMenuItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err, "Menu item not found")
	}
	return &item, nil
}

func (s *menuItemService) CreateMenuItem(ctx context.Context, restaurantID uint, input MenuItemInput) (*models.MenuItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).Select("id").First(&restaurant, restaurantID).Error; err != nil {
		return nil, notFoundOr(err, "Restaurant not found")
	}

	item := models.MenuItem{RestaurantID: restaurantID}
	input.apply(&item)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, models.NewServerError(err)
	}

	s.invalidate(ctx, restaurantID)
	return &item, nil
}

func (s *menuItemService) UpdateMenuItem(ctx context.Context, id uint, input MenuItemInput) (*models.MenuItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}

	// Existing order lines keep their price snapshot; only new orders see the new price
	input.apply(item)
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, models.NewServerError(err)
	}

	s.invalidate(ctx, item.RestaurantID)
	return item, nil
}

func (s *menuItemService) DeleteMenuItem(ctx context.Context, id uint) error {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return err
	}

	var lines int64
	if err := s.db.WithContext(ctx).Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&lines).Error; err != nil {
		return models.NewServerError(err)
	}
	if lines > 0 {
		return models.NewConflictError("Menu item appears in orders, mark it unavailable instead")
	}

	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return models.NewServerError(err)
	}

	s.invalidate(ctx, item.RestaurantID)
	return nil
}

func (s *menuItemService) invalidate(ctx context.Context, restaurantID uint) {
	keys := append(cache.MenuKeys(restaurantID), cache.RestaurantKey(restaurantID))
	cacheDelete(ctx, s.cache, keys...)
}
