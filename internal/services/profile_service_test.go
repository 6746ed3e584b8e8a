package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnhAnhii/veterans-verify-system/internal/db"
	"github.com/AnhAnhii/veterans-verify-system/internal/utils"
)

func TestProfileService_CreateAndAuthenticate(t *testing.T) {
	database := utils.SetupTestDB(t, "veterans_verify_test_profiles", db.ProfilesCollection)
	ctx := context.Background()
	require.NoError(t, db.EnsureIndexes(ctx, database))

	svc := NewProfileService(database, nil)
	profile, key, err := svc.CreateProfile(ctx, " Ops@Example.com ", "Ops")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", profile.Email)
	assert.NotContains(t, profile.APIKeyHash, key)

	found, err := svc.AuthenticateAPIKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, found.ID)

	_, err = svc.AuthenticateAPIKey(ctx, key+"0")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateAPIKey(ctx, "not-a-key")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.TouchLastUsed(ctx, profile.ID))
	byID, err := svc.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.NotNil(t, byID.LastUsedAt)

	_, err = svc.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
