package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/auth"
	"github.com/AnhAnhii/veterans-verify-system/internal/db"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// IProfileService manages API consumers and their keys.
type IProfileService interface {
	CreateProfile(ctx context.Context, email, name string) (*models.Profile, string, error)
	AuthenticateAPIKey(ctx context.Context, apiKey string) (*models.Profile, error)
	FindByID(ctx context.Context, profileID string) (*models.Profile, error)
	TouchLastUsed(ctx context.Context, profileID string) error
}

type profileService struct {
	db  *mongo.Database
	log *zap.Logger
}

func NewProfileService(database *mongo.Database, log *zap.Logger) IProfileService {
	return &profileService{db: database, log: logger.Named(log, "profiles")}
}

// CreateProfile stores a new profile and returns it together with its plaintext API key.
// The key is shown only once; the profile keeps its prefix and a bcrypt hash.
func (s *profileService) CreateProfile(ctx context.Context, email, name string) (*models.Profile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", errors.New("email is required")
	}

	collection := s.db.Collection(db.ProfilesCollection)
	var profile *models.Profile
	var apiKey string

	// A new key (and prefix) is drawn on every attempt.
	err := db.Try(ctx, func(attempt int) error {
		key, prefix, err := auth.GenerateAPIKey()
		if err != nil {
			return err
		}
		hash, err := auth.HashAPIKey(key)
		if err != nil {
			return err
		}
		profile = &models.Profile{
			ID:           uuid.NewString(),
			Email:        email,
			Name:         strings.TrimSpace(name),
			APIKeyPrefix: prefix,
			APIKeyHash:   hash,
			CreatedAt:    time.Now().UTC(),
		}
		if attempt > 0 {
			s.log.Info("retrying profile insert after key collision", zap.Int("attempt", attempt))
		}
		_, err = collection.InsertOne(ctx, profile)
		apiKey = key
		return err
	})
	if err != nil {
		return nil, "", fmt.Errorf("error inserting profile for %s: %w", email, err)
	}

	s.log.Info("profile created", zap.String("profile_id", profile.ID))
	return profile, apiKey, nil
}

func (s *profileService) AuthenticateAPIKey(ctx context.Context, apiKey string) (*models.Profile, error) {
	prefix, err := auth.APIKeyPrefix(apiKey)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var profile models.Profile
	err = s.db.Collection(db.ProfilesCollection).
		FindOne(ctx, bson.M{"api_key_prefix": prefix, "disabled": false}).
		Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("error finding profile by key prefix: %w", err)
	}
	if !auth.CheckAPIKeyHash(apiKey, profile.APIKeyHash) {
		return nil, ErrInvalidCredentials
	}
	return &profile, nil
}

func (s *profileService) FindByID(ctx context.Context, profileID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Collection(db.ProfilesCollection).FindOne(ctx, bson.M{"_id": profileID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding profile %s: %w", profileID, err)
	}
	return &profile, nil
}

func (s *profileService) TouchLastUsed(ctx context.Context, profileID string) error {
	_, err := s.db.Collection(db.ProfilesCollection).UpdateByID(ctx, profileID,
		bson.M{"$set": bson.M{"last_used_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("error updating last use of profile %s: %w", profileID, err)
	}
	return nil
}
