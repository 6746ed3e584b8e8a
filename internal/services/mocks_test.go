package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/provider"
)

type mockProvider struct {
	mock.Mock
	enabled bool
}

func (m *mockProvider) Enabled() bool { return m.enabled }

func (m *mockProvider) CreateVerification(ctx context.Context, programID string) (*provider.StepResult, error) {
	args := m.Called(ctx, programID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StepResult), args.Error(1)
}

func (m *mockProvider) CollectMilitaryStatus(ctx context.Context, verificationID string, status models.MilitaryStatus) (*provider.StepResult, error) {
	args := m.Called(ctx, verificationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StepResult), args.Error(1)
}

func (m *mockProvider) CollectPersonalInfo(ctx context.Context, verificationID string, info provider.PersonalInfo) (*provider.StepResult, error) {
	args := m.Called(ctx, verificationID, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StepResult), args.Error(1)
}

func (m *mockProvider) UploadDocument(ctx context.Context, verificationID, filename, contentType string, data []byte) (*provider.StepResult, error) {
	args := m.Called(ctx, verificationID, filename, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StepResult), args.Error(1)
}

func (m *mockProvider) GetVerification(ctx context.Context, verificationID string) (*provider.StepResult, error) {
	args := m.Called(ctx, verificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.StepResult), args.Error(1)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) PutDocument(ctx context.Context, verificationID, filename, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, verificationID, filename, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) PresignGetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) ScheduleStatusRefresh(ctx context.Context, verificationID string, attempt int) error {
	args := m.Called(ctx, verificationID, attempt)
	return args.Error(0)
}

type mockRegistry struct {
	mock.Mock
	source models.VASource
}

func (m *mockRegistry) Source() models.VASource { return m.source }

func (m *mockRegistry) Search(ctx context.Context, q models.LookupQuery) ([]models.VALookupResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VALookupResult), args.Error(1)
}

type mockLookupCache struct {
	mock.Mock
}

func (m *mockLookupCache) Get(ctx context.Context, source models.VASource, key string) ([]models.VALookupResult, bool, error) {
	args := m.Called(ctx, source, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.VALookupResult), args.Bool(1), args.Error(2)
}

func (m *mockLookupCache) Set(ctx context.Context, source models.VASource, key string, results []models.VALookupResult) error {
	args := m.Called(ctx, source, key, results)
	return args.Error(0)
}

func (m *mockLookupCache) Flush(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
