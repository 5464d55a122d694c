package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenStore opens the on-device SQLite cache at path and migrates it.
// Use ":memory:" for a throwaway store.
func OpenStore(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&restaurantRow{}, &menuItemRow{}, &orderRow{}, &CartItem{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return db, nil
}

type restaurantRow struct {
	ID             uint `gorm:"primaryKey;autoIncrement:false"`
	Name           string
	Description    string
	Address        string
	Phone          string
	Category       string `gorm:"index"`
	ImageURL       string
	OpeningHours   string
	DeliveryFee    decimal.Decimal `gorm:"type:decimal(10,2)"`
	MinOrderAmount decimal.Decimal `gorm:"type:decimal(10,2)"`
	Rating         float64
	SyncedAt       time.Time
}

func (restaurantRow) TableName() string { return "restaurants" }

func newRestaurantRow(r models.Restaurant, syncedAt time.Time) restaurantRow {
	return restaurantRow{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Address:        r.Address,
		Phone:          r.Phone,
		Category:       r.Category,
		ImageURL:       r.ImageURL,
		OpeningHours:   r.OpeningHours,
		DeliveryFee:    r.DeliveryFee,
		MinOrderAmount: r.MinOrderAmount,
		Rating:         r.Rating,
		SyncedAt:       syncedAt,
	}
}

func (r restaurantRow) model() models.Restaurant {
	return models.Restaurant{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Address:        r.Address,
		Phone:          r.Phone,
		Category:       r.Category,
		ImageURL:       r.ImageURL,
		OpeningHours:   r.OpeningHours,
		DeliveryFee:    r.DeliveryFee,
		MinOrderAmount: r.MinOrderAmount,
		Rating:         r.Rating,
	}
}

type menuItemRow struct {
	ID           uint `gorm:"primaryKey;autoIncrement:false"`
	RestaurantID uint `gorm:"index"`
	Name         string
	Description  string
	Price        decimal.Decimal `gorm:"type:decimal(10,2)"`
	Category     string
	ImageURL     string
	IsVegetarian bool
	IsAvailable  bool
	SyncedAt     time.Time
}

func (menuItemRow) TableName() string { return "menu_items" }

func newMenuItemRow(m models.MenuItem, syncedAt time.Time) menuItemRow {
	return menuItemRow{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		Category:     m.Category,
		ImageURL:     m.ImageURL,
		IsVegetarian: m.IsVegetarian,
		IsAvailable:  m.IsAvailable,
		SyncedAt:     syncedAt,
	}
}

func (m menuItemRow) model() models.MenuItem {
	return models.MenuItem{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		Category:     m.Category,
		ImageURL:     m.ImageURL,
		IsVegetarian: m.IsVegetarian,
		IsAvailable:  m.IsAvailable,
	}
}

// orderRow keeps the order as served by the API, items included.
// UserID is the session user the order was fetched for.
type orderRow struct {
	ID        uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"not null;index"`
	Payload   string
	CreatedAt time.Time `gorm:"index"`
	SyncedAt  time.Time
}

func (orderRow) TableName() string { return "orders" }

func newOrderRow(o models.Order, userID uint, syncedAt time.Time) (orderRow, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return orderRow{}, err
	}
	return orderRow{ID: o.ID, UserID: userID, Payload: string(payload), CreatedAt: o.CreatedAt, SyncedAt: syncedAt}, nil
}

func (o orderRow) model() (models.Order, error) {
	var order models.Order
	err := json.Unmarshal([]byte(o.Payload), &order)
	return order, err
}

// CartItem is a line of the local cart. All lines belong to one restaurant.
type CartItem struct {
	MenuItemID   uint            `json:"menu_item_id" gorm:"primaryKey;autoIncrement:false"`
	RestaurantID uint            `json:"restaurant_id" gorm:"not null;index"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	AddedAt      time.Time       `json:"added_at"`
}

func (CartItem) TableName() string { return "cart_items" }

// LineTotal is the displayed price × quantity. The server reprices at checkout.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
