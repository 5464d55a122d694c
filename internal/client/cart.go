package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrDifferentRestaurant is returned when adding an item from another
	// restaurant than the one already in the cart. Use Replace to start over.
	ErrDifferentRestaurant = errors.New("cart holds items from a different restaurant")
	ErrItemUnavailable     = errors.New("menu item is not available")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
)

// CheckoutDetails are the order fields that do not come from the cart
type CheckoutDetails struct {
	DeliveryAddress     string
	PaymentMethod       models.PaymentMethod
	SpecialInstructions string
}

// CartRepository is the on-device cart
type CartRepository struct {
	db     *gorm.DB
	api    *APIClient
	orders *OrderRepository
	now    func() time.Time
}

// NewCartRepository builds the cart. orders may be nil; when set, placed orders
// are written to its cache.
func NewCartRepository(db *gorm.DB, api *APIClient, orders *OrderRepository) *CartRepository {
	return &CartRepository{db: db, api: api, orders: orders, now: time.Now}
}

// Add puts quantity of item in the cart, merging with an existing line
func (r *CartRepository) Add(ctx context.Context, item models.MenuItem, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !item.IsAvailable {
		return ErrItemUnavailable
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var other int64
		if err := tx.Model(&CartItem{}).Where("restaurant_id <> ?", item.RestaurantID).Count(&other).Error; err != nil {
			return err
		}
		if other > 0 {
			return ErrDifferentRestaurant
		}
		return addLine(tx, item, quantity, r.now())
	})
}

// Replace empties the cart and adds item
func (r *CartRepository) Replace(ctx context.Context, item models.MenuItem, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !item.IsAvailable {
		return ErrItemUnavailable
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CartItem{}).Error; err != nil {
			return err
		}
		return addLine(tx, item, quantity, r.now())
	})
}

func addLine(tx *gorm.DB, item models.MenuItem, quantity int, now time.Time) error {
	line := CartItem{
		MenuItemID:   item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name,
		Price:        item.Price,
		Quantity:     quantity,
		AddedAt:      now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "menu_item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_items.quantity + ?", quantity),
			"name":     item.Name,
			"price":    item.Price,
		}),
	}).Create(&line).Error
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (r *CartRepository) UpdateQuantity(ctx context.Context, menuItemID uint, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, menuItemID)
	}
	return r.db.WithContext(ctx).Model(&CartItem{}).
		Where("menu_item_id = ?", menuItemID).
		Update("quantity", quantity).Error
}

func (r *CartRepository) Remove(ctx context.Context, menuItemID uint) error {
	return r.db.WithContext(ctx).Where("menu_item_id = ?", menuItemID).Delete(&CartItem{}).Error
}

func (r *CartRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&CartItem{}).Error
}

// Items returns the cart lines in the order they were added
func (r *CartRepository) Items(ctx context.Context) ([]CartItem, error) {
	var items []CartItem
	err := r.db.WithContext(ctx).Order("added_at ASC, menu_item_id ASC").Find(&items).Error
	return items, err
}

// Total is the displayed cart total
func (r *CartRepository) Total(ctx context.Context) (decimal.Decimal, error) {
	items, err := r.Items(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total, nil
}

// Checkout places the cart as an order and empties the cart on success.
// The returned order carries the server computed prices.
func (r *CartRepository) Checkout(ctx context.Context, details CheckoutDetails) (*models.Order, error) {
	items, err := r.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	req := OrderRequest{
		RestaurantID:        items[0].RestaurantID,
		Items:               make([]OrderLine, 0, len(items)),
		DeliveryAddress:     details.DeliveryAddress,
		PaymentMethod:       details.PaymentMethod,
		SpecialInstructions: details.SpecialInstructions,
	}
	for _, item := range items {
		req.Items = append(req.Items, OrderLine{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}

	order, err := r.api.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	if err := r.Clear(ctx); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("Order placed but cart could not be cleared")
	}
	if r.orders != nil {
		if err := r.orders.remember(ctx, order); err != nil {
			log.WithError(err).WithField("order_id", order.ID).Warn("Could not cache placed order")
		}
	}
	return order, nil
}
