package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in display priority order.
// Staff-facing lists sort by this order so actionable orders come first.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the position of s in OrderStatuses, or -1 for unknown values
func (s OrderStatus) Rank() int {
	for i, st := range OrderStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether next is a regular forward move from s.
// Cancellation is reachable from any non-terminal state.
// Anything else is only possible as an admin override.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.IsValid() || s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return next.Rank() == s.Rank()+1
}

// PaymentMethod values accepted when placing an order
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentOnline:
		return true
	}
	return false
}

type Order struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	UserID              uint            `json:"user_id" gorm:"not null;index"`
	RestaurantID        uint            `json:"restaurant_id" gorm:"not null;index"`
	TotalPrice          decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null"`
	DeliveryAddress     string          `json:"delivery_address" gorm:"not null"`
	PaymentMethod       PaymentMethod   `json:"payment_method" gorm:"not null"`
	Status              OrderStatus     `json:"status" gorm:"not null;index"`
	SpecialInstructions string          `json:"special_instructions"`
	CreatedAt           time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt           time.Time       `json:"updated_at"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	User       *User       `json:"-" gorm:"foreignKey:UserID"`
	Restaurant *Restaurant `json:"-" gorm:"foreignKey:RestaurantID"`

	RestaurantName string `json:"restaurant_name,omitempty" gorm:"-"`
	UserName       string `json:"user_name,omitempty" gorm:"-"`
	UserPhone      string `json:"user_phone,omitempty" gorm:"-"`
}

// OrderItem is one order line. PricePerItem is a snapshot of the menu price
// at order time and is never updated afterwards.
type OrderItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	OrderID      uint            `json:"order_id" gorm:"not null;index"`
	MenuItemID   uint            `json:"menu_item_id" gorm:"not null;index"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	PricePerItem decimal.Decimal `json:"price_per_item" gorm:"type:decimal(10,2);not null"`

	MenuItem *MenuItem `json:"-" gorm:"foreignKey:MenuItemID"`

	Name        string `json:"name,omitempty" gorm:"-"`
	Description string `json:"description,omitempty" gorm:"-"`
	ImageURL    string `json:"image_url,omitempty" gorm:"-"`
}

// LineTotal is quantity × price_per_item
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PricePerItem.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Denormalize copies display fields from preloaded relations
func (o *Order) Denormalize() {
	if o.Restaurant != nil {
		o.RestaurantName = o.Restaurant.Name
	}
	if o.User != nil {
		o.UserName = o.User.Name
		o.UserPhone = o.User.Phone
	}
	for i := range o.Items {
		if mi := o.Items[i].MenuItem; mi != nil {
			o.Items[i].Name = mi.Name
			o.Items[i].Description = mi.Description
			o.Items[i].ImageURL = mi.ImageURL
		}
	}
}

// OrderStatusHistory is an audit row written on every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}
