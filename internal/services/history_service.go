package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnhAnhii/veterans-verify-system/internal/db"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// IHistoryService lists a profile's verifications, newest first.
type IHistoryService interface {
	List(ctx context.Context, profileID string, filter models.HistoryFilter, page, perPage int) (*models.VerificationHistoryResponse, error)
	Export(ctx context.Context, profileID string, filter models.HistoryFilter, limit int) ([]models.VerificationHistoryItem, error)
}

type historyService struct {
	db *mongo.Database
}

func NewHistoryService(database *mongo.Database) IHistoryService {
	return &historyService{db: database}
}

func historyQuery(profileID string, filter models.HistoryFilter) bson.M {
	q := bson.M{"profile_id": profileID}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.ServiceType != "" {
		q["service_type"] = filter.ServiceType
	}
	return q
}

// List returns one page. page is 1-based; a page past the end yields no items.
func (s *historyService) List(ctx context.Context, profileID string, filter models.HistoryFilter, page, perPage int) (*models.VerificationHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > models.MaxHistoryPerPage {
		perPage = models.DefaultHistoryPerPage
	}

	query := historyQuery(profileID, filter)
	total, err := s.db.Collection(db.VerificationsCollection).CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error counting history for %s: %w", profileID, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))
	items, err := s.find(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	return &models.VerificationHistoryResponse{
		Total:   int(total),
		Page:    page,
		PerPage: perPage,
		Items:   items,
	}, nil
}

// Export returns up to limit matching items for download.
func (s *historyService) Export(ctx context.Context, profileID string, filter models.HistoryFilter, limit int) ([]models.VerificationHistoryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.find(ctx, historyQuery(profileID, filter), opts)
}

func (s *historyService) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.VerificationHistoryItem, error) {
	cursor, err := s.db.Collection(db.VerificationsCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing verifications: %w", err)
	}
	var records []models.VerificationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding verifications: %w", err)
	}

	names, err := s.veteranNames(ctx, records)
	if err != nil {
		return nil, err
	}

	items := make([]models.VerificationHistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, models.VerificationHistoryItem{
			ID:          r.ID,
			ServiceType: r.ServiceType,
			Status:      r.Status,
			VeteranName: names[r.VeteranID],
			CreatedAt:   r.CreatedAt,
			CompletedAt: r.CompletedAt,
		})
	}
	return items, nil
}

func (s *historyService) veteranNames(ctx context.Context, records []models.VerificationRecord) (map[string]string, error) {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.VeteranID != "" {
			ids = append(ids, r.VeteranID)
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	cursor, err := s.db.Collection(db.VeteransCollection).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"first_name": 1, "last_name": 1}))
	if err != nil {
		return nil, fmt.Errorf("error loading veterans: %w", err)
	}
	var veterans []models.VeteranRecord
	if err := cursor.All(ctx, &veterans); err != nil {
		return nil, fmt.Errorf("error decoding veterans: %w", err)
	}
	for i := range veterans {
		names[veterans[i].ID] = veterans[i].FullName()
	}
	return names, nil
}
