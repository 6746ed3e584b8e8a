package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnhAnhii/veterans-verify-system/internal/db"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// IAPILogService persists request logs.
type IAPILogService interface {
	Record(ctx context.Context, entry *models.APILog) error
}

type apiLogService struct {
	db *mongo.Database
}

func NewAPILogService(database *mongo.Database) IAPILogService {
	return &apiLogService{db: database}
}

func (s *apiLogService) Record(ctx context.Context, entry *models.APILog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(db.APILogsCollection).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("error inserting api log: %w", err)
	}
	return nil
}
