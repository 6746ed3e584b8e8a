package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/AnhAnhii/veterans-verify-system/internal/api"
	"github.com/AnhAnhii/veterans-verify-system/internal/auth"
	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
	"github.com/AnhAnhii/veterans-verify-system/internal/services"
)

type mockHistoryService struct {
	mock.Mock
}

func (m *mockHistoryService) List(ctx context.Context, profileID string, filter models.HistoryFilter, page, perPage int) (*models.VerificationHistoryResponse, error) {
	args := m.Called(ctx, profileID, filter, page, perPage)
	return args.Get(0).(*models.VerificationHistoryResponse), args.Error(1)
}

func (m *mockHistoryService) Export(ctx context.Context, profileID string, filter models.HistoryFilter, limit int) ([]models.VerificationHistoryItem, error) {
	args := m.Called(ctx, profileID, filter, limit)
	return args.Get(0).([]models.VerificationHistoryItem), args.Error(1)
}

type mockProfileService struct {
	mock.Mock
	services.IProfileService
}

func (m *mockProfileService) AuthenticateAPIKey(ctx context.Context, apiKey string) (*models.Profile, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:                 "Veterans Verification API",
		AppVersion:              "test",
		JwtSecret:               "router-secret",
		JwtTTL:                  time.Hour,
		CorsOrigins:             []string{"http://localhost:3000"},
		DocumentMaxSizeMB:       10,
		HistoryExportMaxRecords: 100,
		RateLimitBucketSize:     2,
		RateLimitRefillRate:     1,
	}
}

func setupRouter(t *testing.T, history *mockHistoryService) *gin.Engine {
	t.Helper()
	return setupRouterWith(t, api.Dependencies{History: history})
}

func setupRouterWith(t *testing.T, deps api.Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	return api.SetupRouter(testConfig(), deps, stop)
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := setupRouter(t, new(mockHistoryService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not found"}`, w.Body.String())
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	r := setupRouter(t, new(mockHistoryService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/history", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid or missing authentication"}`, w.Body.String())
}

func TestRouter_BearerTokenAndRateLimit(t *testing.T) {
	history := new(mockHistoryService)
	history.On("List", mock.Anything, "p-1", models.HistoryFilter{}, 1, models.DefaultHistoryPerPage).
		Return(&models.VerificationHistoryResponse{Page: 1, PerPage: 20, Items: []models.VerificationHistoryItem{}}, nil)
	r := setupRouter(t, history)

	token, err := auth.GenerateJWT("p-1", "p1@example.com", "router-secret", time.Hour)
	assert.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/history", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	// Bucket size 2: the third immediate call is rejected.
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	history.AssertNumberOfCalls(t, "List", 2)
}

func TestRouter_RejectedCredentialsAreRateLimited(t *testing.T) {
	profiles := new(mockProfileService)
	profiles.On("AuthenticateAPIKey", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidCredentials)
	r := setupRouterWith(t, api.Dependencies{Profiles: profiles, History: new(mockHistoryService)})

	codes := make(map[int]int)
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/history", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-API-Key", fmt.Sprintf("vv_guess_%d", i))
		r.ServeHTTP(w, req)
		codes[w.Code]++
	}

	// Bucket size 2: only the first two guesses reach the key lookup.
	assert.Equal(t, map[int]int{http.StatusUnauthorized: 2, http.StatusTooManyRequests: 8}, codes)
	profiles.AssertNumberOfCalls(t, "AuthenticateAPIKey", 2)

	// Another client IP has its own bucket.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/history", nil)
	req.RemoteAddr = "198.51.100.2:4000"
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
