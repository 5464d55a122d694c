package services

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/food-ordering-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "  Alice@Example.com ",
		Password: "secret123",
		Phone:    "555-0100",
		Address:  "1 Main St",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, user.CheckPassword("secret123"))
}

func TestRegister_DuplicateEmailCreatesNoRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Impostor", Email: "ALICE@example.com", Password: "other123"})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 400, models.AsAppError(err).Kind.Status())
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}))
}

func TestRegister_ConcurrentDuplicateIsConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	// another registration commits the same email between the count check and the insert
	const callbackName = "test:concurrent_registration"
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(callbackName, func(tx *gorm.DB) {
		if tx.Statement.Table != "users" {
			return
		}
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO users (name, email, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			"Racer", "alice@example.com", "x", models.RoleUser, time.Now(), time.Now())
		require.NoError(t, err)
	}))
	t.Cleanup(func() { db.Callback().Create().Remove(callbackName) })

	_, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, "User already exists with this email", models.AsAppError(err).Message)
	assert.Equal(t, 400, models.AsAppError(err).Kind.Status())
}

func TestRegister_MissingFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	tests := []RegisterInput{
		{Email: "a@example.com", Password: "secret123"},
		{Name: "A", Password: "secret123"},
		{Name: "A", Email: "a@example.com"},
	}
	for _, input := range tests {
		_, err := svc.Register(context.Background(), input)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
	assert.Equal(t, int64(0), countRows(t, db, &models.User{}))
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, "Invalid credentials", models.AsAppError(err).Message)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, "Invalid credentials", models.AsAppError(err).Message)
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123", Phone: "1"})
	require.NoError(t, err)

	name, address := "Alice B", "2 Side St"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &name, Address: &address})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "2 Side St", updated.Address)
	assert.Equal(t, "1", updated.Phone)
	assert.Equal(t, "alice@example.com", updated.Email)

	blank := " "
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &blank})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.UpdateProfile(ctx, 9999, ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListUsersAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	a := createUser(t, db, "a@example.com", models.RoleUser)
	createUser(t, db, "b@example.com", models.RoleAdmin)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	got, err := svc.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = svc.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
