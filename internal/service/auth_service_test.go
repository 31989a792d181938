package service

import (
	"context"
	"testing"
	"time"

	"plant-journal-be/internal/dto"
	"plant-journal-be/internal/model"
	"plant-journal-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) IAuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	return NewAuthService(unitofwork.NewRepositoryFactory(db, pubSub), testSecret, time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{
		Email:    "explorer@example.com",
		FullName: "Field Explorer",
		Password: "super-secret-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.UserId)

	loggedIn, err := svc.Login(ctx, &dto.LoginRequest{
		Email:    "explorer@example.com",
		Password: "super-secret-1",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.UserId, loggedIn.UserId)

	// The token must carry the user id claim our middleware reads.
	token, err := jwt.Parse(loggedIn.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, registered.UserId, claims["user_id"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "dup@example.com", FullName: "First", Password: "password-1",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Email: "dup@example.com", FullName: "Second", Password: "password-2",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Email: "explorer@example.com", FullName: "Field Explorer", Password: "super-secret-1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "explorer@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
