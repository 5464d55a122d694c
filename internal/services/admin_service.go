package services

import (
	"context"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"gorm.io/gorm"
)

// PlatformStats are the row counts shown on the admin dashboard
type PlatformStats struct {
	Users       int64 `json:"users"`
	Restaurants int64 `json:"restaurants"`
	MenuItems   int64 `json:"menu_items"`
	Orders      int64 `json:"orders"`
}

type AdminService interface {
	PlatformStats(ctx context.Context) (*PlatformStats, error)
}

type adminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) AdminService {
	return &adminService{db: db}
}

func (s *adminService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &stats.Users},
		{&models.Restaurant{}, &stats.Restaurants},
		{&models.MenuItem{}, &stats.MenuItems},
		{&models.Order{}, &stats.Orders},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Count(c.dest).Error; err != nil {
			return nil, models.NewServerError(err)
		}
	}
	return stats, nil
}
