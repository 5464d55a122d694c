package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/food-ordering-api/docs" // Import generated docs
	"github.com/franciscosanchezn/food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/food-ordering-api/internal/config"
	"github.com/franciscosanchezn/food-ordering-api/internal/controllers"
	"github.com/franciscosanchezn/food-ordering-api/internal/database"
	"github.com/franciscosanchezn/food-ordering-api/internal/events"
	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title Food Ordering API
// @version 1.0
// @description Restaurants, menus, orders and users for the food ordering apps
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	applyLogLevel(configuration)
	setGinMode(configuration)

	// Initialize database connection
	db := setupDatabase(configuration)
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Error("Failed to close database")
		}
	}()

	catalogCache := setupCache(configuration)
	defer catalogCache.Close()

	publisher, err := events.NewPublisher(configuration)
	checkPanicErr(err)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Error("Failed to close event publisher")
		}
	}()

	userService := services.NewUserService(db)
	router := controllers.SetupRouter(controllers.RouterConfig{
		JWTSecret:   []byte(configuration.JWTSecret),
		Tokens:      auth.NewTokenIssuer(configuration.JWTSecret, configuration.JWTExpiresIn),
		OAuth:       auth.NewOAuthService(db, configuration.JWTSecret),
		Users:       userService,
		Restaurants: services.NewRestaurantService(db, catalogCache),
		MenuItems:   services.NewMenuItemService(db, catalogCache),
		Orders:      services.NewOrderService(db, publisher),
		Clients:     services.NewClientService(db),
		Admin:       services.NewAdminService(db),
		QR:          services.PickupQRGenerator{Size: 256},
		Logger:      log.StandardLogger(),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", configuration.Host, configuration.Port),
		Handler:           corsHandler(configuration, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the server
	go func() {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelForEnvironment(config.GetEnvWithDefault("APP_ENV", config.EnvDevelopment)))
}

// applyLogLevel honours an explicit LOG_LEVEL over the environment default
func applyLogLevel(conf *config.Config) {
	if conf.LogLevel == "" {
		return
	}
	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		log.WithField("log_level", conf.LogLevel).Warn("Invalid LOG_LEVEL, keeping the environment default")
		return
	}
	log.SetLevel(level)
}

// setGinMode turns on gin debug mode in development only.
// Error bodies carry the underlying error while debugging.
func setGinMode(conf *config.Config) {
	if conf.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates and optionally seeds the database
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.NewDatabaseConfig(conf))
	checkPanicErr(err)

	checkPanicErr(database.Migrate(db))

	if conf.SeedData {
		checkPanicErr(database.Seed(db))
	}
	return db
}

// setupCache uses Redis for the catalog when REDIS_ADDR is set.
// An unreachable Redis is logged and the API runs uncached.
func setupCache(conf *config.Config) cache.Cache {
	if conf.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, catalog cache disabled")
		return cache.Nop{}
	}

	redisCache, err := cache.NewRedisCache(conf.RedisAddr, conf.RedisPassword, conf.RedisDB, conf.CacheTTL)
	if err != nil {
		log.WithError(err).WithField("redis_addr", conf.RedisAddr).Warn("Redis unavailable, catalog cache disabled")
		return cache.Nop{}
	}
	log.WithField("redis_addr", conf.RedisAddr).Info("Catalog cache enabled")
	return redisCache
}

func corsHandler(conf *config.Config, handler http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: conf.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(handler)
}
