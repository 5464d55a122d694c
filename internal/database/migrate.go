package database

import (
	"fmt"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models returns every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	}
}

// Migrate creates or updates the schema for all models
func Migrate(db *gorm.DB) error {
	log.Info("Running schema migration")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts a demo catalog when the restaurants table is empty
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Database already seeded with initial data")
		return nil
	}

	log.Info("Database is empty, seeding initial data")
	restaurants := []models.Restaurant{
		{
			Name:           "Napoli Express",
			Description:    "Wood-fired pizza",
			Address:        "12 Via Roma",
			Category:       "pizza",
			OpeningHours:   "11:00-23:00",
			DeliveryFee:    decimal.RequireFromString("2.50"),
			MinOrderAmount: decimal.RequireFromString("10.00"),
			Rating:         4.6,
			MenuItems: []models.MenuItem{
				{Name: "Margherita", Price: decimal.RequireFromString("10.99"), Category: "pizza", IsVegetarian: true, IsAvailable: true},
				{Name: "Pepperoni", Price: decimal.RequireFromString("12.99"), Category: "pizza", IsAvailable: true},
				{Name: "Tiramisu", Price: decimal.RequireFromString("5.50"), Category: "dessert", IsVegetarian: true, IsAvailable: true},
			},
		},
		{
			Name:           "Green Bowl",
			Description:    "Salads and bowls",
			Address:        "4 Market Street",
			Category:       "healthy",
			OpeningHours:   "09:00-21:00",
			DeliveryFee:    decimal.RequireFromString("1.90"),
			MinOrderAmount: decimal.RequireFromString("8.00"),
			Rating:         4.3,
			MenuItems: []models.MenuItem{
				{Name: "Falafel Bowl", Price: decimal.RequireFromString("9.00"), Category: "bowl", IsVegetarian: true, IsAvailable: true},
				{Name: "Chicken Caesar", Price: decimal.RequireFromString("11.50"), Category: "salad", IsAvailable: true},
			},
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i := range restaurants {
			if err := tx.Create(&restaurants[i]).Error; err != nil {
				return err
			}
		}
		log.WithField("restaurants", len(restaurants)).Info("Database seeded successfully")
		return nil
	})
}
