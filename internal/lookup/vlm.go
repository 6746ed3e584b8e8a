package lookup

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// VLM searches the Veterans Legacy Memorial.
type VLM struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

func NewVLM(baseURL string, pageSize int, httpClient *http.Client) *VLM {
	return &VLM{baseURL: strings.TrimRight(baseURL, "/"), pageSize: pageSize, httpClient: httpClient}
}

func (v *VLM) Source() models.VASource { return models.SourceVLM }

type vlmSearchRequest struct {
	VeteranName string `json:"veteranName"`
	Branch      string `json:"branch"`
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
}

func (v *VLM) Search(ctx context.Context, q models.LookupQuery) ([]models.VALookupResult, error) {
	payload := vlmSearchRequest{
		VeteranName: q.Text(),
		Branch:      string(q.Branch),
		Page:        1,
		PageSize:    v.pageSize,
	}

	var resp struct {
		Veterans []record `json:"veterans"`
	}
	if err := doJSON(ctx, v.httpClient, v.Source(), http.MethodPost, v.baseURL+"/SEARCH/SearchVeterans", payload, &resp); err != nil {
		return nil, err
	}

	results := make([]models.VALookupResult, 0, len(resp.Veterans))
	for _, r := range resp.Veterans {
		results = append(results, models.VALookupResult{
			Source:       models.SourceVLM,
			Name:         r.str("veteranName"),
			Branch:       r.str("branchOfService"),
			Rank:         r.str("rank"),
			BirthDate:    r.str("birthYear"),
			DeathDate:    r.str("deathYear"),
			Cemetery:     r.str("cemeteryName"),
			Location:     r.str("cemeteryLocation"),
			ServiceDates: joinNonEmpty(" - ", r.str("serviceStartDate"), r.str("serviceEndDate")),
			Awards:       r.strings("awards"),
			Metadata:     r,
		})
	}
	return results, nil
}
