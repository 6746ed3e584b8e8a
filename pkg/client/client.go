// Package client is a Go client for the veterans verification API.
//
// Credentials are fixed when the client is built. WithAPIKey and WithToken
// return a copy, so one Client can be shared by concurrent callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderAPIKey        = "X-API-Key"
	HeaderAuthorization = "Authorization"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "veterans-verify-go"
)

// Config holds everything a Client needs. APIKey wins over Token when both are set.
type Config struct {
	BaseURL    string
	APIKey     string
	Token      string
	HTTPClient *http.Client
	UserAgent  string
}

// Client talks to the /api and /health endpoints.
type Client struct {
	baseURL   string
	apiKey    string
	token     string
	http      *http.Client
	userAgent string
}

// New creates a Client. A nil HTTPClient gets a 30-second timeout.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		token:     cfg.Token,
		http:      httpClient,
		userAgent: ua,
	}
}

// WithAPIKey returns a copy of c authenticating with key.
func (c *Client) WithAPIKey(key string) *Client {
	cp := *c
	cp.apiKey = key
	return &cp
}

// WithToken returns a copy of c authenticating with a bearer token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// setAuth adds exactly one credential header, or none.
func (c *Client) setAuth(req *http.Request) {
	switch {
	case c.apiKey != "":
		req.Header.Set(HeaderAPIKey, c.apiKey)
	case c.token != "":
		req.Header.Set(HeaderAuthorization, "Bearer "+c.token)
	}
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building request %s %s: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	c.setAuth(req)
	return req, nil
}

// doJSON sends payload (if non-nil) as JSON and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, query url.Values, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// newAPIError prefers the body's detail, then message, then the status text.
func newAPIError(status int, body []byte) *APIError {
	var parsed struct {
		Detail  interface{} `json:"detail"`
		Message string      `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch d := parsed.Detail.(type) {
		case string:
			msg = d
		case nil:
		default:
			// Validation failures may carry a structured detail.
			if raw, err := json.Marshal(d); err == nil {
				msg = string(raw)
			}
		}
		if msg == "" {
			msg = parsed.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = "request failed with status " + strconv.Itoa(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

// CreateVerification starts a verification. programID may be empty.
func (c *Client) CreateVerification(ctx context.Context, serviceType ServiceType, programID string) (*CreateVerificationResponse, error) {
	if !serviceType.Valid() {
		return nil, fmt.Errorf("%w: service type %q", ErrInvalidEnum, serviceType)
	}
	var out CreateVerificationResponse
	req := CreateVerificationRequest{ServiceType: serviceType, ProgramID: programID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/verify/create", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitVerification sends the veteran details for a created verification.
func (c *Client) SubmitVerification(ctx context.Context, req SubmitVerificationRequest) (*SubmitVerificationResponse, error) {
	var out SubmitVerificationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/verify/submit", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetVerificationStatus returns the current snapshot of a verification.
func (c *Client) GetVerificationStatus(ctx context.Context, verificationID string) (*Verification, error) {
	var out Verification
	endpoint := "/api/verify/" + url.PathEscape(verificationID) + "/status"
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument posts a supporting document as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, verificationID, filename string, file io.Reader, documentType DocumentType) (*UploadDocumentResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("document_type", string(documentType)); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return nil, fmt.Errorf("copying document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	endpoint := "/api/verify/" + url.PathEscape(verificationID) + "/document"
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadDocumentResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LookupParams filters a VA registry search. Empty fields are omitted.
type LookupParams struct {
	FirstName string
	LastName  string
	State     string
	Branch    MilitaryBranch
}

func (p LookupParams) values(withState, withBranch bool) url.Values {
	q := url.Values{}
	if p.FirstName != "" {
		q.Set("first_name", p.FirstName)
	}
	if p.LastName != "" {
		q.Set("last_name", p.LastName)
	}
	if withState && p.State != "" {
		q.Set("state", p.State)
	}
	if withBranch && p.Branch != "" {
		q.Set("branch", string(p.Branch))
	}
	return q
}

func (c *Client) lookup(ctx context.Context, endpoint string, q url.Values) (*VALookupResponse, error) {
	var out VALookupResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchGraveLocator searches the grave locator by name and state.
func (c *Client) SearchGraveLocator(ctx context.Context, p LookupParams) (*VALookupResponse, error) {
	return c.lookup(ctx, "/api/lookup/grave", p.values(true, false))
}

// SearchVLM searches the legacy memorial by name and branch.
func (c *Client) SearchVLM(ctx context.Context, p LookupParams) (*VALookupResponse, error) {
	return c.lookup(ctx, "/api/lookup/vlm", p.values(false, true))
}

// SearchArmyExplorer searches the army cemetery explorer by name.
func (c *Client) SearchArmyExplorer(ctx context.Context, p LookupParams) (*VALookupResponse, error) {
	return c.lookup(ctx, "/api/lookup/army", p.values(false, false))
}

// SearchAllSources queries every registry at once.
func (c *Client) SearchAllSources(ctx context.Context, p LookupParams) (*VAAggregateResponse, error) {
	var out VAAggregateResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/lookup/aggregate", p.values(false, true), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HistoryParams pages and filters the verification history. Zero values are omitted.
type HistoryParams struct {
	Page        int
	PerPage     int
	Status      VerificationStatus
	ServiceType ServiceType
}

// GetHistory lists past verifications, newest first.
func (c *Client) GetHistory(ctx context.Context, p HistoryParams) (*VerificationHistoryResponse, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.ServiceType != "" {
		q.Set("service_type", string(p.ServiceType))
	}

	var out VerificationHistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/history", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
