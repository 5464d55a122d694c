package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is a machine client (POS terminal, kitchen display) that acts
// on behalf of its owning user through the client credentials grant.
// It implements oauth2.ClientInfo and oauth2.ClientPasswordVerifier.
type OAuthClient struct {
	ID         string         `json:"client_id" gorm:"primaryKey"`
	Secret     string         `json:"-" gorm:"not null"`
	Name       string         `json:"name"`
	Domain     string         `json:"domain"`
	UserID     uint           `json:"user_id" gorm:"index"`
	Scopes     string         `json:"scopes"`
	GrantTypes string         `json:"grant_types"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string     { return c.ID }
func (c *OAuthClient) GetSecret() string { return c.Secret }
func (c *OAuthClient) GetDomain() string { return c.Domain }
func (c *OAuthClient) IsPublic() bool    { return false }

func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword compares the presented secret with the stored bcrypt hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
