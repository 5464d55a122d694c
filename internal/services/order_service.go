package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/events"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
	StatsWindow        = 30 * 24 * time.Hour
)

// OrderLineInput is one requested line. There is deliberately no price:
// prices always come from the menu at order time.
type OrderLineInput struct {
	MenuItemID uint
	Quantity   int
}

type CreateOrderInput struct {
	RestaurantID        uint
	Items               []OrderLineInput
	DeliveryAddress     string
	PaymentMethod       models.PaymentMethod
	SpecialInstructions string
}

func (in CreateOrderInput) validate() error {
	if in.RestaurantID == 0 {
		return models.NewValidationError("Restaurant ID is required")
	}
	if len(in.Items) == 0 {
		return models.NewValidationError("Order must contain at least one item")
	}
	for _, line := range in.Items {
		if line.MenuItemID == 0 {
			return models.NewValidationError("Menu item ID is required")
		}
		if line.Quantity <= 0 {
			return models.NewValidationError("Quantity must be greater than zero")
		}
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return models.NewValidationError("Delivery address is required")
	}
	if !in.PaymentMethod.IsValid() {
		return models.NewValidationError("Payment method must be one of cash, card, online")
	}
	return nil
}

// OrderStats aggregates orders created inside the stats window
type OrderStats struct {
	TotalOrders       int64                        `json:"total_orders"`
	TotalRevenue      decimal.Decimal              `json:"total_revenue"`
	AverageOrderValue decimal.Decimal              `json:"average_order_value"`
	OrdersByStatus    map[models.OrderStatus]int64 `json:"orders_by_status"`
	PendingOrders     int64                        `json:"pending_orders"`
	Since             time.Time                    `json:"since"`
}

type OrderService interface {
	// CreateOrder prices and stores an order in one transaction
	CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*models.Order, error)
	// GetOrder returns the order with items, restaurant and customer details
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	// GetOrderForUser is GetOrder restricted to the owner unless isAdmin
	GetOrderForUser(ctx context.Context, id, userID uint, isAdmin bool) (*models.Order, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Order, error)
	// ListByRestaurant sorts by status priority, then newest first
	ListByRestaurant(ctx context.Context, restaurantID uint, status models.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus, changedBy uint) (*models.Order, error)
	History(ctx context.Context, id uint) ([]models.OrderStatusHistory, error)
	Stats(ctx context.Context) (*OrderStats, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
}

type orderService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewOrderService(db *gorm.DB, publisher events.Publisher) OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{db: db, publisher: publisher, now: time.Now}
}

func (s *orderService) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*models.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.Select("id").First(&restaurant, input.RestaurantID).Error; err != nil {
			return notFoundOr(err, "Restaurant not found")
		}

		menu, err := loadMenuItems(tx, input.Items)
		if err != nil {
			return err
		}

		// Every line is checked before the first insert
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			menuItem, ok := menu[line.MenuItemID]
			if !ok || menuItem.RestaurantID != input.RestaurantID {
				return models.NewNotFoundError(fmt.Sprintf("Menu item %d not found for this restaurant", line.MenuItemID))
			}
			if !menuItem.IsAvailable {
				return models.NewUnavailableError(fmt.Sprintf("%s is currently unavailable", menuItem.Name))
			}

			item := models.OrderItem{
				MenuItemID:   menuItem.ID,
				Quantity:     line.Quantity,
				PricePerItem: menuItem.Price,
			}
			total = total.Add(item.LineTotal())
			items = append(items, item)
		}

		order = models.Order{
			UserID:              userID,
			RestaurantID:        input.RestaurantID,
			TotalPrice:          total.Round(2),
			DeliveryAddress:     strings.TrimSpace(input.DeliveryAddress),
			PaymentMethod:       input.PaymentMethod,
			Status:              models.StatusPending,
			SpecialInstructions: input.SpecialInstructions,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: userID,
			Note:      "Order placed",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		log.WithError(err).WithFields(log.Fields{
			"user_id":       userID,
			"restaurant_id": input.RestaurantID,
		}).Error("Order transaction rolled back")
		return nil, models.NewServerError(err)
	}

	log.WithFields(log.Fields{
		"order_id":      order.ID,
		"user_id":       userID,
		"restaurant_id": order.RestaurantID,
		"total":         order.TotalPrice.StringFixed(2),
		"lines":         len(input.Items),
	}).Info("Order created")

	s.publish(ctx, events.NewOrderCreated(&order))

	return s.GetOrder(ctx, order.ID)
}

// loadMenuItems fetches every referenced menu item in one query
func loadMenuItems(tx *gorm.DB, lines []OrderLineInput) (map[uint]models.MenuItem, error) {
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, line := range lines {
		if !seen[line.MenuItemID] {
			seen[line.MenuItemID] = true
			ids = append(ids, line.MenuItemID)
		}
	}

	var found []models.MenuItem
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}

	menu := make(map[uint]models.MenuItem, len(found))
	for _, item := range found {
		menu[item.ID] = item
	}
	return menu, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.withDetails(s.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, notFoundOr(err, "Order not found")
	}
	order.Denormalize()
	return &order, nil
}

func (s *orderService) GetOrderForUser(ctx context.Context, id, userID uint, isAdmin bool) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, models.NewAuthorizationError("Access denied")
	}
	return order, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.withDetails(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, models.NewServerError(err)
	}
	denormalizeAll(orders)
	return orders, nil
}

func (s *orderService) ListByRestaurant(ctx context.Context, restaurantID uint, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.IsValid() {
		return nil, models.NewValidationError("Invalid status")
	}

	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).Select("id").First(&restaurant, restaurantID).Error; err != nil {
		return nil, notFoundOr(err, "Restaurant not found")
	}

	query := s.withDetails(s.db.WithContext(ctx)).Where("restaurant_id = ?", restaurantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order(statusPriorityOrder()).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, models.NewServerError(err)
	}
	denormalizeAll(orders)
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus, changedBy uint) (*models.Order, error) {
	if !status.IsValid() {
		return nil, models.NewValidationError("Invalid status")
	}

	var order models.Order
	var previous models.OrderStatus
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return notFoundOr(err, "Order not found")
		}
		previous = order.Status
		if previous == status {
			return nil
		}

		history := models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: previous,
			ToStatus:   status,
			ChangedBy:  changedBy,
		}
		if !previous.CanTransitionTo(status) {
			history.Note = fmt.Sprintf("override: %s -> %s", previous, status)
			log.WithFields(log.Fields{
				"order_id":   order.ID,
				"from":       previous,
				"to":         status,
				"changed_by": changedBy,
			}).Warn("Order status override")
		}

		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		order.Status = status
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("insert status history: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewServerError(err)
	}

	if changed {
		log.WithFields(log.Fields{
			"order_id": order.ID,
			"from":     previous,
			"to":       status,
		}).Info("Order status updated")
		s.publish(ctx, events.NewOrderStatusChanged(&order, previous, changedBy))
	}

	return s.GetOrder(ctx, id)
}

func (s *orderService) History(ctx context.Context, id uint) ([]models.OrderStatusHistory, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, models.NewServerError(err)
	}
	if count == 0 {
		return nil, models.NewNotFoundError("Order not found")
	}

	var history []models.OrderStatusHistory
	if err := s.db.WithContext(ctx).Where("order_id = ?", id).Order("created_at ASC, id ASC").Find(&history).Error; err != nil {
		return nil, models.NewServerError(err)
	}
	return history, nil
}

func (s *orderService) Stats(ctx context.Context) (*OrderStats, error) {
	since := s.now().Add(-StatsWindow)
	stats := &OrderStats{
		OrdersByStatus:    make(map[models.OrderStatus]int64, len(models.OrderStatuses)),
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		Since:             since,
	}
	for _, st := range models.OrderStatuses {
		stats.OrdersByStatus[st] = 0
	}

	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewServerError(err)
	}
	for _, row := range rows {
		stats.OrdersByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
	}
	stats.PendingOrders = stats.OrdersByStatus[models.StatusPending]

	var revenue decimal.NullDecimal
	err = s.db.WithContext(ctx).Model(&models.Order{}).
		Select("SUM(total_price)").
		Where("created_at >= ? AND status <> ?", since, models.StatusCancelled).
		Row().Scan(&revenue)
	if err != nil {
		return nil, models.NewServerError(err)
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal.Round(2)
	}

	billable := stats.TotalOrders - stats.OrdersByStatus[models.StatusCancelled]
	if billable > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(billable)).Round(2)
	}
	return stats, nil
}

func (s *orderService) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	var orders []models.Order
	err := s.withDetails(s.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, models.NewServerError(err)
	}
	denormalizeAll(orders)
	return orders, nil
}

func (s *orderService) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.MenuItem").
		Preload("Restaurant").
		Preload("User")
}

// publish runs after commit. The order already exists, so a bus failure is only logged.
func (s *orderService) publish(ctx context.Context, event events.OrderEvent) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"order_id": event.OrderID,
			"event":    event.Type,
		}).Error("Failed to publish order event")
	}
}

func denormalizeAll(orders []models.Order) {
	for i := range orders {
		orders[i].Denormalize()
	}
}

// statusPriorityOrder builds an ORDER BY expression ranking statuses
// in models.OrderStatuses order
func statusPriorityOrder() string {
	var b strings.Builder
	b.WriteString("CASE status")
	for i, st := range models.OrderStatuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", st, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(models.OrderStatuses))
	return b.String()
}
