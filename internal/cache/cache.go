package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrMiss is returned by Get when the key is not cached
var ErrMiss = errors.New("cache miss")

// Cache stores JSON-encoded catalog reads. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// RestaurantsKey caches the restaurant list for one filter combination
func RestaurantsKey(category, search string) string {
	return fmt.Sprintf("catalog:restaurants:%s:%s", category, search)
}

// RestaurantsPattern matches every cached restaurant list
const RestaurantsPattern = "catalog:restaurants:*"

func RestaurantKey(id uint) string {
	return fmt.Sprintf("catalog:restaurant:%d", id)
}

func MenuKey(restaurantID uint, availableOnly bool) string {
	return fmt.Sprintf("catalog:menu:%d:%t", restaurantID, availableOnly)
}

// MenuKeys returns both menu variants of a restaurant
func MenuKeys(restaurantID uint) []string {
	return []string{MenuKey(restaurantID, true), MenuKey(restaurantID, false)}
}

// Nop never stores anything. Used when REDIS_ADDR is empty.
type Nop struct{}

func (Nop) Get(ctx context.Context, key string, dest interface{}) error   { return ErrMiss }
func (Nop) Set(ctx context.Context, key string, value interface{}) error { return nil }
func (Nop) Delete(ctx context.Context, keys ...string) error             { return nil }
func (Nop) Close() error                                                 { return nil }
