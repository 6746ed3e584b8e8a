package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/logger"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// Provider steps reported in currentStep.
const (
	StepCollectStatus = "collectMilitaryStatus"
	StepPersonalInfo  = "collectMilitaryPersonalInfo"
	StepDocUpload     = "docUpload"
	StepPending       = "pending"
	StepSuccess       = "success"
	StepRejected      = "rejected"
	StepError         = "error"
)

// ErrNotConfigured is returned by every call when no provider API key is configured.
var ErrNotConfigured = errors.New("verification provider is not configured")

// Error is a non-2xx answer from the provider.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// StepResult is the provider's view of a verification after a call.
type StepResult struct {
	VerificationID string   `json:"verificationId"`
	CurrentStep    string   `json:"currentStep"`
	ErrorIDs       []string `json:"errorIds,omitempty"`
}

// PersonalInfo is submitted in the collectMilitaryPersonalInfo step.
type PersonalInfo struct {
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	BirthDate     string              `json:"birthDate,omitempty"`
	Email         string              `json:"email,omitempty"`
	DischargeDate string              `json:"dischargeDate,omitempty"`
	Organization  models.Organization `json:"organization"`
}

// IVerificationProvider is the subset of the provider's REST API the service drives.
type IVerificationProvider interface {
	Enabled() bool
	CreateVerification(ctx context.Context, programID string) (*StepResult, error)
	CollectMilitaryStatus(ctx context.Context, verificationID string, status models.MilitaryStatus) (*StepResult, error)
	CollectPersonalInfo(ctx context.Context, verificationID string, info PersonalInfo) (*StepResult, error)
	UploadDocument(ctx context.Context, verificationID, filename, contentType string, data []byte) (*StepResult, error)
	GetVerification(ctx context.Context, verificationID string) (*StepResult, error)
}

type sheerIDClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// NewSheerIDClient creates a client for the provider REST API.
func NewSheerIDClient(cfg *config.Config, log *zap.Logger) IVerificationProvider {
	return &sheerIDClient{
		baseURL:    strings.TrimRight(cfg.ProviderBaseURL, "/"),
		apiKey:     cfg.ProviderAPIKey,
		httpClient: &http.Client{Timeout: cfg.ProviderTimeout},
		log:        logger.Named(log, "provider"),
	}
}

func (c *sheerIDClient) Enabled() bool {
	return c.apiKey != ""
}

func (c *sheerIDClient) CreateVerification(ctx context.Context, programID string) (*StepResult, error) {
	return c.postJSON(ctx, "/verification", map[string]string{"programId": programID})
}

func (c *sheerIDClient) CollectMilitaryStatus(ctx context.Context, verificationID string, status models.MilitaryStatus) (*StepResult, error) {
	return c.postJSON(ctx, stepPath(verificationID, StepCollectStatus), map[string]string{"status": string(status)})
}

func (c *sheerIDClient) CollectPersonalInfo(ctx context.Context, verificationID string, info PersonalInfo) (*StepResult, error) {
	return c.postJSON(ctx, stepPath(verificationID, StepPersonalInfo), info)
}

// UploadDocument sends the file to the docUpload step and then completes the upload.
func (c *sheerIDClient) UploadDocument(ctx context.Context, verificationID, filename, contentType string, data []byte) (*StepResult, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build document upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build document upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build document upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+stepPath(verificationID, StepDocUpload), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create document upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if _, err := c.do(req); err != nil {
		return nil, err
	}

	return c.postJSON(ctx, stepPath(verificationID, "completeDocUpload"), struct{}{})
}

func (c *sheerIDClient) GetVerification(ctx context.Context, verificationID string) (*StepResult, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/verification/"+verificationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	return c.do(req)
}

func stepPath(verificationID, step string) string {
	return "/verification/" + verificationID + "/step/" + step
}

func (c *sheerIDClient) postJSON(ctx context.Context, path string, payload any) (*StepResult, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *sheerIDClient) do(req *http.Request) (*StepResult, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("provider request failed", zap.String("path", req.URL.Path), zap.Error(err))
		return nil, fmt.Errorf("provider request %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("provider rejected request",
			zap.String("path", req.URL.Path), zap.Int("status", resp.StatusCode))
		return nil, &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result StepResult
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("failed to decode provider response: %w", err)
		}
	}
	c.log.Debug("provider step", zap.String("path", req.URL.Path), zap.String("current_step", result.CurrentStep))
	return &result, nil
}

// StatusForStep maps a provider step onto a verification status.
func StatusForStep(step string) models.VerificationStatus {
	switch step {
	case StepSuccess:
		return models.StatusApproved
	case StepRejected:
		return models.StatusRejected
	case StepDocUpload:
		return models.StatusDocumentRequired
	case StepPending:
		return models.StatusProcessing
	default:
		return models.StatusProcessing
	}
}
