package client

import (
	"context"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderRepository serves the signed in user's orders cache first.
// Cached orders are kept per user, another user's rows are never served.
type OrderRepository struct {
	db     *gorm.DB
	api    *APIClient
	logger log.FieldLogger
	now    func() time.Time
}

func NewOrderRepository(db *gorm.DB, api *APIClient) *OrderRepository {
	return &OrderRepository{
		db:     db,
		api:    api,
		logger: log.WithField("repository", "orders"),
		now:    time.Now,
	}
}

// Orders lists the session user's orders, newest first
func (r *OrderRepository) Orders(ctx context.Context) <-chan Result[[]models.Order] {
	userID := r.sessionUserID()
	return cacheThenNetwork(ctx, r.logger.WithField("user_id", userID),
		func(ctx context.Context) ([]models.Order, bool, error) {
			return r.loadOrders(ctx, userID)
		},
		r.api.MyOrders,
		func(ctx context.Context, orders []models.Order) error {
			return r.saveOrders(ctx, userID, orders)
		},
	)
}

// sessionUserID is 0 when nobody is signed in
func (r *OrderRepository) sessionUserID() uint {
	if user := r.api.Session().User(); user != nil {
		return user.ID
	}
	return 0
}

func (r *OrderRepository) loadOrders(ctx context.Context, userID uint) ([]models.Order, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}

	var rows []orderRow
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, false, err
	}
	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.model()
		if err != nil {
			r.logger.WithError(err).WithField("order_id", row.ID).Warn("Skipping unreadable cached order")
			continue
		}
		orders = append(orders, order)
	}
	return orders, len(orders) > 0, nil
}

func (r *OrderRepository) saveOrders(ctx context.Context, userID uint, orders []models.Order) error {
	if userID == 0 {
		return nil
	}

	syncedAt := r.now()
	rows := make([]orderRow, 0, len(orders))
	for _, order := range orders {
		row, err := newOrderRow(order, userID, syncedAt)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&orderRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Save(&rows).Error
	})
}

// remember stores a freshly placed order so it shows up before the next refresh
func (r *OrderRepository) remember(ctx context.Context, order *models.Order) error {
	userID := r.sessionUserID()
	if userID == 0 {
		return nil
	}
	row, err := newOrderRow(*order, userID, r.now())
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&row).Error
}

// ClearCache drops every cached order
func (r *OrderRepository) ClearCache(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&orderRow{}).Error
}

// Logout ends the session and drops the cached orders
func (r *OrderRepository) Logout(ctx context.Context) error {
	r.api.Logout()
	return r.ClearCache(ctx)
}
