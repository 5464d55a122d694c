package services

import (
	"context"
	"strings"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientInput describes a new machine client
type ClientInput struct {
	Name   string
	Domain string
	Scopes string
}

type ClientService interface {
	// CreateClient registers a client owned by userID and returns the plain secret.
	// Only the bcrypt hash is stored, the secret cannot be read back later.
	CreateClient(ctx context.Context, userID uint, input ClientInput) (*models.OAuthClient, string, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	// DeleteClient removes the client and revokes its tokens
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, userID uint, input ClientInput) (*models.OAuthClient, string, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, "", models.NewValidationError("Client name is required")
	}

	secret := strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewServerError(err)
	}

	scopes := input.Scopes
	if scopes == "" {
		scopes = "read"
	}

	client := &models.OAuthClient{
		ID:         uuid.NewString(),
		Secret:     string(hashed),
		Name:       strings.TrimSpace(input.Name),
		Domain:     input.Domain,
		UserID:     userID,
		Scopes:     scopes,
		GrantTypes: "client_credentials",
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, "", models.NewServerError(err)
	}
	return client, secret, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, models.NewServerError(err)
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, notFoundOr(err, "Client not found")
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
		if result.Error != nil {
			return models.NewServerError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Client not found")
		}
		if err := tx.Where("client_id = ?", clientID).Delete(&models.OAuthToken{}).Error; err != nil {
			return models.NewServerError(err)
		}
		return nil
	})
}
