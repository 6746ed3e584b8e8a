package lookup

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// GraveLocator searches the VA National Gravesite Locator.
type GraveLocator struct {
	baseURL    string
	httpClient *http.Client
}

func NewGraveLocator(baseURL string, httpClient *http.Client) *GraveLocator {
	return &GraveLocator{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (g *GraveLocator) Source() models.VASource { return models.SourceGraveLocator }

func (g *GraveLocator) Search(ctx context.Context, q models.LookupQuery) ([]models.VALookupResult, error) {
	params := url.Values{}
	if q.FirstName != "" {
		params.Set("firstName", q.FirstName)
	}
	if q.LastName != "" {
		params.Set("lastName", q.LastName)
	}
	if q.State != "" {
		params.Set("state", q.State)
	}

	var resp struct {
		Results []record `json:"results"`
	}
	if err := doJSON(ctx, g.httpClient, g.Source(), http.MethodGet, g.baseURL+"/ngl/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	results := make([]models.VALookupResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, models.VALookupResult{
			Source:       models.SourceGraveLocator,
			Name:         joinNonEmpty(" ", r.str("firstName"), r.str("lastName")),
			Branch:       r.str("branchOfService"),
			Rank:         r.str("rank"),
			BirthDate:    r.str("birthDate"),
			DeathDate:    r.str("deathDate"),
			Cemetery:     r.str("cemeteryName"),
			Location:     joinNonEmpty(", ", r.str("cemeteryCity"), r.str("cemeteryState")),
			ServiceDates: r.str("serviceDates"),
			Metadata:     r,
		})
	}
	return results, nil
}
