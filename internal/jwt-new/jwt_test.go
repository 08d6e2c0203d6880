package security_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/domain/models"
	security "github.com/mohsenuae10/seven-green-gulf-store-sub000/internal/jwt-new"
)

func TestNewToken_RoundTrip(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	token, err := security.NewToken(context.Background(), &models.User{ID: 42, Email: "owner@example.com"}, time.Hour)
	require.NoError(t, err)

	userID, err := security.ParseUserID(token, "testsecret")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	_, err = security.ParseUserID(token, "othersecret")
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestNewToken_Expired(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	token, err := security.NewToken(context.Background(), &models.User{ID: 1}, -time.Minute)
	require.NoError(t, err)

	_, err = security.ParseUserID(token, "testsecret")
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestNewToken_NoSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	_, err := security.NewToken(context.Background(), &models.User{ID: 1}, time.Hour)
	assert.Error(t, err)
}
