package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/food-ordering-api/internal/config"
	"github.com/franciscosanchezn/food-ordering-api/internal/database"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/franciscosanchezn/food-ordering-api/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Creates a user with the given role (if missing) and an OAuth2 client owned by it.
// The client secret is printed once.
func main() {
	role := flag.String("role", models.RoleAdmin, "User role (admin or user)")
	name := flag.String("name", "", "Client name")
	password := flag.String("password", "dev-password-123", "Password for a newly created user")
	flag.Parse()

	if *role != models.RoleAdmin && *role != models.RoleUser {
		log.Fatalf("Unsupported role %q", *role)
	}
	if *name == "" {
		*name = fmt.Sprintf("Development %s client", *role)
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.InitDatabase(database.NewDatabaseConfig(conf))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	ctx := context.Background()
	users := services.NewUserService(db)
	user, err := getOrCreateUser(ctx, users, *role, *password)
	if err != nil {
		log.WithError(err).Fatal("Failed to get user for role")
	}

	client, secret, err := services.NewClientService(db).CreateClient(ctx, user.ID, services.ClientInput{
		Name:   *name,
		Domain: "http://localhost",
		Scopes: "read write",
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("Development OAuth client created for %s (role %s)\n", user.Email, user.Role)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", secret)
	fmt.Println("\nRequest a token with:")
	fmt.Printf("curl -X POST http://%s:%d/oauth/token \\\n", conf.Host, conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", secret)
}

// getOrCreateUser looks up <role>@food-ordering.local and creates it when missing
func getOrCreateUser(ctx context.Context, users services.UserService, role, password string) (*models.User, error) {
	email := fmt.Sprintf("%s@food-ordering.local", role)

	user, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		Name:  fmt.Sprintf("%s user", role),
		Email: email,
		Role:  role,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	return user, nil
}
