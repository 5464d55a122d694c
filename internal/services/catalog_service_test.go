package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/franciscosanchezn/food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestListRestaurants_Filters(t *testing.T) {
	db := setupTestDB(t)
	seedFixture(t, db)
	svc := NewRestaurantService(db, nil)
	ctx := context.Background()

	all, err := svc.ListRestaurants(ctx, RestaurantFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pizza, err := svc.ListRestaurants(ctx, RestaurantFilter{Category: "pizza"})
	require.NoError(t, err)
	require.Len(t, pizza, 1)
	assert.Equal(t, "R", pizza[0].Name)

	search, err := svc.ListRestaurants(ctx, RestaurantFilter{Search: "ELSE"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, "Elsewhere", search[0].Name)
}

func TestRestaurantCRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRestaurantService(db, nil)
	ctx := context.Background()

	_, err := svc.CreateRestaurant(ctx, RestaurantInput{})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateRestaurant(ctx, RestaurantInput{Name: "Bad", DeliveryFee: mustDecimal("-1")})
	assert.ErrorIs(t, err, models.ErrValidation)

	created, err := svc.CreateRestaurant(ctx, RestaurantInput{Name: " Taco Town ", Category: "mexican", DeliveryFee: mustDecimal("2.50")})
	require.NoError(t, err)
	assert.Equal(t, "Taco Town", created.Name)

	updated, err := svc.UpdateRestaurant(ctx, created.ID, RestaurantInput{Name: "Taco City", Category: "mexican", Rating: 4.5})
	require.NoError(t, err)
	assert.Equal(t, "Taco City", updated.Name)
	assert.True(t, updated.DeliveryFee.IsZero())

	_, err = svc.UpdateRestaurant(ctx, 9999, RestaurantInput{Name: "Ghost"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.DeleteRestaurant(ctx, created.ID))
	_, err = svc.GetRestaurant(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteRestaurant(ctx, created.ID), models.ErrNotFound)
}

func TestDeleteRestaurant_WithOrdersIsRejected(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	orders := NewOrderService(db, nil)
	svc := NewRestaurantService(db, nil)

	_, err := orders.CreateOrder(context.Background(), f.customer.ID, orderInput(f.restaurant.ID, OrderLineInput{MenuItemID: f.itemA.ID, Quantity: 1}))
	require.NoError(t, err)

	err = svc.DeleteRestaurant(context.Background(), f.restaurant.ID)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, int64(3), countRows(t, db, &models.MenuItem{}))
}

func TestGetRestaurant_IncludesMenu(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := NewRestaurantService(db, nil)

	restaurant, err := svc.GetRestaurant(context.Background(), f.restaurant.ID)
	require.NoError(t, err)
	assert.Len(t, restaurant.MenuItems, 2)
}

func TestListMenu_AvailableOnly(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := NewMenuItemService(db, nil)
	ctx := context.Background()

	all, err := svc.ListMenu(ctx, f.restaurant.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	available, err := svc.ListMenu(ctx, f.restaurant.ID, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, f.itemA.ID, available[0].ID)

	_, err = svc.ListMenu(ctx, 9999, false)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMenuItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := NewMenuItemService(db, nil)
	ctx := context.Background()

	_, err := svc.CreateMenuItem(ctx, f.restaurant.ID, MenuItemInput{Name: "Free lunch", Price: mustDecimal("0")})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateMenuItem(ctx, 9999, MenuItemInput{Name: "Soup", Price: mustDecimal("4")})
	assert.ErrorIs(t, err, models.ErrNotFound)

	soup, err := svc.CreateMenuItem(ctx, f.restaurant.ID, MenuItemInput{Name: "Soup", Price: mustDecimal("4.005")})
	require.NoError(t, err)
	assert.True(t, soup.IsAvailable)
	assertDecimal(t, "4.01", soup.Price)

	unavailable := false
	updated, err := svc.UpdateMenuItem(ctx, soup.ID, MenuItemInput{Name: "Soup", Price: mustDecimal("4.50"), IsAvailable: &unavailable})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)

	reloaded, err := svc.GetMenuItem(ctx, soup.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsAvailable)
	assertDecimal(t, "4.50", reloaded.Price)

	require.NoError(t, svc.DeleteMenuItem(ctx, soup.ID))
	_, err = svc.GetMenuItem(ctx, soup.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateMenuItem_UnavailableIsPersisted(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := NewMenuItemService(db, nil)

	unavailable := false
	item, err := svc.CreateMenuItem(context.Background(), f.restaurant.ID, MenuItemInput{Name: "Special", Price: mustDecimal("11"), IsAvailable: &unavailable})
	require.NoError(t, err)

	reloaded, err := svc.GetMenuItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsAvailable)
}

func TestDeleteMenuItem_OrderedItemIsRejected(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	orders := NewOrderService(db, nil)
	svc := NewMenuItemService(db, nil)

	_, err := orders.CreateOrder(context.Background(), f.customer.ID, orderInput(f.restaurant.ID, OrderLineInput{MenuItemID: f.itemA.ID, Quantity: 1}))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteMenuItem(context.Background(), f.itemA.ID), models.ErrConflict)
}

func TestMenuCache_ReadThroughAndInvalidation(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	redisCache, mr := newRedisCache(t)
	svc := NewMenuItemService(db, redisCache)
	ctx := context.Background()

	_, err := svc.ListMenu(ctx, f.restaurant.ID, true)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.MenuKey(f.restaurant.ID, true)))

	// a write behind the service's back is not visible while cached
	require.NoError(t, db.Model(&models.MenuItem{}).Where("id = ?", f.itemB.ID).Update("is_available", true).Error)
	cached, err := svc.ListMenu(ctx, f.restaurant.ID, true)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// writes through the service invalidate the restaurant's menus
	_, err = svc.CreateMenuItem(ctx, f.restaurant.ID, MenuItemInput{Name: "Salad", Price: mustDecimal("6")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.MenuKey(f.restaurant.ID, true)))

	fresh, err := svc.ListMenu(ctx, f.restaurant.ID, true)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestRestaurantCache_ListInvalidatedOnCreate(t *testing.T) {
	db := setupTestDB(t)
	seedFixture(t, db)
	redisCache, mr := newRedisCache(t)
	svc := NewRestaurantService(db, redisCache)
	ctx := context.Background()

	list, err := svc.ListRestaurants(ctx, RestaurantFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.True(t, mr.Exists(cache.RestaurantsKey("", "")))

	_, err = svc.CreateRestaurant(ctx, RestaurantInput{Name: "New Place"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.RestaurantsKey("", "")))

	list, err = svc.ListRestaurants(ctx, RestaurantFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestCatalog_CacheOutageFallsBackToDatabase(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	redisCache, mr := newRedisCache(t)
	svc := NewMenuItemService(db, redisCache)

	mr.Close()

	items, err := svc.ListMenu(context.Background(), f.restaurant.ID, false)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
