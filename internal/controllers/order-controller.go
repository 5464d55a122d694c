package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders services.OrderService
	qr     services.QRGenerator
}

func NewOrderController(orders services.OrderService, qr services.QRGenerator) *OrderController {
	if qr == nil {
		qr = services.PickupQRGenerator{}
	}
	return &OrderController{orders: orders, qr: qr}
}

// Prices are not part of the request; anything the client sends besides
// these fields is ignored.
type orderLineRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,gt=0"`
}

type createOrderRequest struct {
	RestaurantID        uint               `json:"restaurant_id" binding:"required"`
	Items               []orderLineRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress     string             `json:"delivery_address" binding:"required"`
	PaymentMethod       string             `json:"payment_method" binding:"required"`
	SpecialInstructions string             `json:"special_instructions"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder godoc
// @Summary Place an order
// @Description Create an order. Prices are taken from the current menu; the whole order is rejected if any item is missing or unavailable.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body createOrderRequest true "Order"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError "Invalid input or unavailable item"
// @Failure 404 {object} models.APIError "Restaurant or menu item not found"
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders [post]
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	lines := make([]services.OrderLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.OrderLineInput{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), currentUserID(c), services.CreateOrderInput{
		RestaurantID:        req.RestaurantID,
		Items:               lines,
		DeliveryAddress:     req.DeliveryAddress,
		PaymentMethod:       models.PaymentMethod(req.PaymentMethod),
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, order)
}

// ListMyOrders godoc
// @Summary My orders
// @Description Orders of the authenticated user, newest first
// @Tags orders
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/orders [get]
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	orders, err := oc.orders.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get order
// @Description Get one order. Users can only read their own orders.
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id} [get]
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, ok := oc.loadOwnedOrder(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, order)
}

// GetOrderHistory godoc
// @Summary Order status history
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id}/history [get]
func (oc *OrderController) GetOrderHistory(c *gin.Context) {
	order, ok := oc.loadOwnedOrder(c)
	if !ok {
		return
	}
	history, err := oc.orders.History(c.Request.Context(), order.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, history)
}

// GetOrderQRCode godoc
// @Summary Pickup QR code
// @Description PNG QR code identifying the order at pickup
// @Tags orders
// @Produce png
// @Param id path int true "Order ID"
// @Success 200 {file} binary
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id}/qrcode [get]
func (oc *OrderController) GetOrderQRCode(c *gin.Context) {
	order, ok := oc.loadOwnedOrder(c)
	if !ok {
		return
	}
	png, err := oc.qr.Generate(order)
	if err != nil {
		respondError(c, models.NewServerError(err))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// UpdateOrderStatus godoc
// @Summary Update order status
// @Description Admin only. Non-forward transitions are accepted as overrides and noted in the history.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body updateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/{id}/status [put]
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// GetOrderStats godoc
// @Summary Order statistics
// @Description Aggregates over the last 30 days. Revenue excludes cancelled orders.
// @Tags orders
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/stats [get]
func (oc *OrderController) GetOrderStats(c *gin.Context) {
	stats, err := oc.orders.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// GetRecentOrders godoc
// @Summary Recent orders
// @Tags orders
// @Produce json
// @Param limit query int false "Number of orders (default 10, max 50)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/orders/recent [get]
func (oc *OrderController) GetRecentOrders(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, models.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	orders, err := oc.orders.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

// ListRestaurantOrders godoc
// @Summary Restaurant orders
// @Description Orders of one restaurant sorted pending, confirmed, preparing, ready, delivered, cancelled, then newest first
// @Tags orders
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param status query string false "Only this status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/restaurants/{id}/orders [get]
func (oc *OrderController) ListRestaurantOrders(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	orders, err := oc.orders.ListByRestaurant(c.Request.Context(), id, models.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

func (oc *OrderController) loadOwnedOrder(c *gin.Context) (*models.Order, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	order, err := oc.orders.GetOrderForUser(c.Request.Context(), id, currentUserID(c), isAdmin(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return order, true
}
