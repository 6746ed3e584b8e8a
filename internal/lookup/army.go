package lookup

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// ArmyExplorer searches the Army National Cemeteries explorer.
type ArmyExplorer struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

func NewArmyExplorer(baseURL string, pageSize int, httpClient *http.Client) *ArmyExplorer {
	return &ArmyExplorer{baseURL: strings.TrimRight(baseURL, "/"), pageSize: pageSize, httpClient: httpClient}
}

func (a *ArmyExplorer) Source() models.VASource { return models.SourceArmyExplorer }

type armySearchRequest struct {
	SearchTerm string `json:"searchTerm"`
	SearchType string `json:"searchType"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

func (a *ArmyExplorer) Search(ctx context.Context, q models.LookupQuery) ([]models.VALookupResult, error) {
	payload := armySearchRequest{
		SearchTerm: q.Text(),
		SearchType: "all",
		Page:       1,
		PageSize:   a.pageSize,
	}

	var resp struct {
		Results []record `json:"results"`
	}
	if err := doJSON(ctx, a.httpClient, a.Source(), http.MethodPost, a.baseURL+"/publicwmv/api/search", payload, &resp); err != nil {
		return nil, err
	}

	results := make([]models.VALookupResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		name := strings.Join(strings.Fields(r.str("firstName")+" "+r.str("middleName")+" "+r.str("lastName")), " ")
		results = append(results, models.VALookupResult{
			Source:    models.SourceArmyExplorer,
			Name:      name,
			Branch:    r.str("branch"),
			Rank:      r.str("rank"),
			BirthDate: r.str("birthDate"),
			DeathDate: r.str("deathDate"),
			Cemetery:  r.str("cemetery"),
			Location:  r.str("section"),
			Metadata:  r,
		})
	}
	return results, nil
}
