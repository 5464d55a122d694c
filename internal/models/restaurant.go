package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go out as JSON numbers, the mobile client parses them as doubles
	decimal.MarshalJSONWithoutQuotes = true
}

// Restaurant represents a restaurant and its public profile
type Restaurant struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"not null"`
	Description    string          `json:"description"`
	Address        string          `json:"address"`
	Phone          string          `json:"phone"`
	Category       string          `json:"category" gorm:"index"`
	ImageURL       string          `json:"image_url"`
	OpeningHours   string          `json:"opening_hours"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(10,2);not null;default:0"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount" gorm:"type:decimal(10,2);not null;default:0"`
	Rating         float64         `json:"rating" gorm:"default:0"`
	MenuItems      []MenuItem      `json:"menu_items,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MenuItem is a dish offered by a restaurant. IsAvailable gates ordering.
type MenuItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	RestaurantID uint            `json:"restaurant_id" gorm:"not null;index"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category     string          `json:"category"`
	ImageURL     string          `json:"image_url"`
	IsVegetarian bool            `json:"is_vegetarian" gorm:"not null;default:false"`
	IsAvailable  bool            `json:"is_available" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
