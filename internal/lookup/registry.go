package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AnhAnhii/veterans-verify-system/internal/config"
	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// Registry searches one public VA registry.
type Registry interface {
	Source() models.VASource
	Search(ctx context.Context, q models.LookupQuery) ([]models.VALookupResult, error)
}

// UpstreamError is a non-2xx answer from a registry.
type UpstreamError struct {
	Source     models.VASource
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Source, e.StatusCode)
}

// NewRegistries builds the three registries from configuration, in aggregate order.
func NewRegistries(cfg *config.Config) []Registry {
	httpClient := &http.Client{Timeout: cfg.RegistryTimeout}
	pageSize := cfg.LookupPageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return []Registry{
		NewGraveLocator(cfg.GraveLocatorURL, httpClient),
		NewVLM(cfg.VLMURL, pageSize, httpClient),
		NewArmyExplorer(cfg.ArmyExplorerURL, pageSize, httpClient),
	}
}

type record map[string]any

// str returns the field as a string; numbers are formatted without a fraction.
func (r record) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	}
	return ""
}

func (r record) strings(key string) []string {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func doJSON(ctx context.Context, httpClient *http.Client, source models.VASource, method, url string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", source, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", source, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Source: source, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", source, err)
	}
	return nil
}
