package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type RestaurantController struct {
	restaurants services.RestaurantService
	menuItems   services.MenuItemService
}

func NewRestaurantController(restaurants services.RestaurantService, menuItems services.MenuItemService) *RestaurantController {
	return &RestaurantController{restaurants: restaurants, menuItems: menuItems}
}

type restaurantRequest struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	Address        string          `json:"address"`
	Phone          string          `json:"phone"`
	Category       string          `json:"category"`
	ImageURL       string          `json:"image_url"`
	OpeningHours   string          `json:"opening_hours"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee" swaggertype:"number"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount" swaggertype:"number"`
	Rating         float64         `json:"rating"`
}

func (r restaurantRequest) input() services.RestaurantInput {
	return services.RestaurantInput{
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

type menuItemRequest struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" swaggertype:"number"`
	Category     string          `json:"category"`
	ImageURL     string          `json:"image_url"`
	IsVegetarian bool            `json:"is_vegetarian"`
	IsAvailable  *bool           `json:"is_available"`
}

func (r menuItemRequest) input() services.MenuItemInput {
	return services.MenuItemInput{
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Category:     r.Category,
		ImageURL:     r.ImageURL,
		IsVegetarian: r.IsVegetarian,
		IsAvailable:  r.IsAvailable,
	}
}

// ListRestaurants godoc
// @Summary List restaurants
// @Description List restaurants, optionally filtered by category or a name/description search
// @Tags restaurants
// @Produce json
// @Param category query string false "Exact category"
// @Param search query string false "Case-insensitive text search"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.APIError
// @Router /api/restaurants [get]
func (rc *RestaurantController) ListRestaurants(c *gin.Context) {
	restaurants, err := rc.restaurants.ListRestaurants(c.Request.Context(), services.RestaurantFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, restaurants)
}

// GetRestaurant godoc
// @Summary Get restaurant
// @Description Get a restaurant with its full menu
// @Tags restaurants
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Router /api/restaurants/{id} [get]
func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	restaurant, err := rc.restaurants.GetRestaurant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, restaurant)
}

// GetMenu godoc
// @Summary Get menu
// @Description List the menu items of a restaurant
// @Tags menu
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param available query bool false "Only items that can be ordered"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Router /api/restaurants/{id}/menu [get]
func (rc *RestaurantController) GetMenu(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	items, err := rc.menuItems.ListMenu(c.Request.Context(), id, c.Query("available") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, items)
}

// GetMenuItem godoc
// @Summary Get menu item
// @Tags menu
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Router /api/menu-items/{id} [get]
func (rc *RestaurantController) GetMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := rc.menuItems.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// CreateRestaurant godoc
// @Summary Create restaurant
// @Tags restaurants
// @Accept json
// @Produce json
// @Param restaurant body restaurantRequest true "Restaurant"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/restaurants [post]
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	restaurant, err := rc.restaurants.CreateRestaurant(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, restaurant)
}

// UpdateRestaurant godoc
// @Summary Update restaurant
// @Tags restaurants
// @Accept json
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param restaurant body restaurantRequest true "Restaurant"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/restaurants/{id} [put]
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	restaurant, err := rc.restaurants.UpdateRestaurant(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, restaurant)
}

// DeleteRestaurant godoc
// @Summary Delete restaurant
// @Description Delete a restaurant and its menu. Restaurants with orders cannot be deleted.
// @Tags restaurants
// @Param id path int true "Restaurant ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/restaurants/{id} [delete]
func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := rc.restaurants.DeleteRestaurant(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateMenuItem godoc
// @Summary Add menu item
// @Tags menu
// @Accept json
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param item body menuItemRequest true "Menu item"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/restaurants/{id}/menu [post]
func (rc *RestaurantController) CreateMenuItem(c *gin.Context) {
	restaurantID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := rc.menuItems.CreateMenuItem(c.Request.Context(), restaurantID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, item)
}

// UpdateMenuItem godoc
// @Summary Update menu item
// @Description Update a menu item. Orders already placed keep their price.
// @Tags menu
// @Accept json
// @Produce json
// @Param id path int true "Menu item ID"
// @Param item body menuItemRequest true "Menu item"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/menu-items/{id} [put]
func (rc *RestaurantController) UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := rc.menuItems.UpdateMenuItem(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, item)
}

// DeleteMenuItem godoc
// @Summary Delete menu item
// @Tags menu
// @Param id path int true "Menu item ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/menu-items/{id} [delete]
func (rc *RestaurantController) DeleteMenuItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := rc.menuItems.DeleteMenuItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
