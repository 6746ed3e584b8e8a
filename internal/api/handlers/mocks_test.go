package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

// --- Mocks ---

// MockVerificationService
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Create(ctx context.Context, profileID string, req models.CreateVerificationRequest) (*models.CreateVerificationResponse, error) {
	args := m.Called(ctx, profileID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreateVerificationResponse), args.Error(1)
}
func (m *MockVerificationService) Submit(ctx context.Context, profileID string, req models.SubmitVerificationRequest) (*models.SubmitVerificationResponse, error) {
	args := m.Called(ctx, profileID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitVerificationResponse), args.Error(1)
}
func (m *MockVerificationService) GetStatus(ctx context.Context, profileID, verificationID string) (*models.Verification, error) {
	args := m.Called(ctx, profileID, verificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Verification), args.Error(1)
}
func (m *MockVerificationService) UploadDocument(ctx context.Context, profileID, verificationID string, doc services.DocumentUpload) (*models.UploadDocumentResponse, error) {
	args := m.Called(ctx, profileID, verificationID, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadDocumentResponse), args.Error(1)
}
func (m *MockVerificationService) RefreshStatus(ctx context.Context, verificationID string) (models.VerificationStatus, error) {
	args := m.Called(ctx, verificationID)
	return args.Get(0).(models.VerificationStatus), args.Error(1)
}
func (m *MockVerificationService) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockLookupService
type MockLookupService struct {
	mock.Mock
}

func (m *MockLookupService) Search(ctx context.Context, source models.VASource, q models.LookupQuery, useCache bool) (*models.VALookupResponse, error) {
	args := m.Called(ctx, source, q, useCache)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VALookupResponse), args.Error(1)
}
func (m *MockLookupService) SearchAll(ctx context.Context, q models.LookupQuery, useCache bool) (*models.VAAggregateResponse, error) {
	args := m.Called(ctx, q, useCache)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VAAggregateResponse), args.Error(1)
}
func (m *MockLookupService) FlushCache(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockHistoryService
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) List(ctx context.Context, profileID string, filter models.HistoryFilter, page, perPage int) (*models.VerificationHistoryResponse, error) {
	args := m.Called(ctx, profileID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationHistoryResponse), args.Error(1)
}
func (m *MockHistoryService) Export(ctx context.Context, profileID string, filter models.HistoryFilter, limit int) ([]models.VerificationHistoryItem, error) {
	args := m.Called(ctx, profileID, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VerificationHistoryItem), args.Error(1)
}

// MockProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) CreateProfile(ctx context.Context, email, name string) (*models.Profile, string, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.Profile), args.String(1), args.Error(2)
}
func (m *MockProfileService) AuthenticateAPIKey(ctx context.Context, apiKey string) (*models.Profile, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *MockProfileService) FindByID(ctx context.Context, profileID string) (*models.Profile, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *MockProfileService) TouchLastUsed(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}
