package controllers

import (
	"github.com/franciscosanchezn/food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig holds everything the HTTP layer depends on
type RouterConfig struct {
	JWTSecret   []byte
	Tokens      *auth.TokenIssuer
	OAuth       *auth.OAuthService
	Users       services.UserService
	Restaurants services.RestaurantService
	MenuItems   services.MenuItemService
	Orders      services.OrderService
	Clients     services.ClientService
	Admin       services.AdminService
	QR          services.QRGenerator
	Logger      logrus.FieldLogger
}

// SetupRouter builds the gin engine with every route
func SetupRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Logger != nil {
		router.Use(middleware.RequestLogger(cfg.Logger))
	}

	authController := NewAuthController(cfg.Users, cfg.Tokens)
	restaurantController := NewRestaurantController(cfg.Restaurants, cfg.MenuItems)
	orderController := NewOrderController(cfg.Orders, cfg.QR)
	adminController := NewAdminController(cfg.Users, cfg.Admin)
	clientController := NewClientController(cfg.Clients)

	router.GET("/health", healthCheckHandler)
	if cfg.OAuth != nil {
		router.POST("/oauth/token", cfg.OAuth.HandleToken)
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		// Public routes
		api.POST("/auth/register", authController.Register)
		api.POST("/auth/login", authController.Login)
		api.GET("/restaurants", restaurantController.ListRestaurants)
		api.GET("/restaurants/:id", restaurantController.GetRestaurant)
		api.GET("/restaurants/:id/menu", restaurantController.GetMenu)
		api.GET("/menu-items/:id", restaurantController.GetMenuItem)

		// Authenticated routes
		protected := api.Group("")
		protected.Use(middleware.JWTAuth(cfg.JWTSecret, cfg.Users))
		{
			protected.GET("/auth/me", authController.Me)
			protected.PUT("/users/me", authController.UpdateProfile)

			protected.GET("/orders", orderController.ListMyOrders)
			protected.POST("/orders", orderController.CreateOrder)
			protected.GET("/orders/:id", orderController.GetOrder)
			protected.GET("/orders/:id/history", orderController.GetOrderHistory)
			protected.GET("/orders/:id/qrcode", orderController.GetOrderQRCode)

			// Admin routes
			admin := protected.Group("")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.PUT("/orders/:id/status", orderController.UpdateOrderStatus)
				admin.GET("/orders/stats", orderController.GetOrderStats)
				admin.GET("/orders/recent", orderController.GetRecentOrders)
				admin.GET("/restaurants/:id/orders", orderController.ListRestaurantOrders)

				admin.POST("/restaurants", restaurantController.CreateRestaurant)
				admin.PUT("/restaurants/:id", restaurantController.UpdateRestaurant)
				admin.DELETE("/restaurants/:id", restaurantController.DeleteRestaurant)
				admin.POST("/restaurants/:id/menu", restaurantController.CreateMenuItem)
				admin.PUT("/menu-items/:id", restaurantController.UpdateMenuItem)
				admin.DELETE("/menu-items/:id", restaurantController.DeleteMenuItem)

				admin.GET("/admin/users", adminController.ListUsers)
				admin.GET("/admin/stats", adminController.GetPlatformStats)

				admin.POST("/clients", clientController.CreateClient)
				admin.GET("/clients", clientController.ListClients)
				admin.DELETE("/clients/:id", clientController.DeleteClient)
			}
		}
	}

	return router
}
