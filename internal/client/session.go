package client

import (
	"sync"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
)

// Session keeps the bearer token of the signed in user
type Session interface {
	Token() string
	User() *models.User
	Save(token string, user *models.User)
	Clear()
}

// MemoryTokenStore is a Session held in process memory
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
	user  *models.User
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *MemoryTokenStore) Save(token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// IsLoggedIn reports whether a token is stored
func IsLoggedIn(s Session) bool {
	return s.Token() != ""
}
