package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnhAnhii/veterans-verify-system/pkg/client"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateVerification_Body(t *testing.T) {
	services := []client.ServiceType{
		client.ServiceChatGPT, client.ServiceSpotify, client.ServiceYouTube, client.ServiceGoogleOne, client.ServiceOther,
	}
	for _, svc := range services {
		t.Run(string(svc), func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/verify/create", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, string(svc), body["serviceType"])
				_, hasProgram := body["programId"]
				assert.False(t, hasProgram, "programId must be omitted when empty")

				_, _ = fmt.Fprint(w, `{"verificationId":"ver-1","status":"pending","createdAt":"2024-05-01T12:00:00Z"}`)
			})

			res, err := client.New(client.Config{BaseURL: srv.URL}).CreateVerification(context.Background(), svc, "")
			require.NoError(t, err)
			assert.Equal(t, "ver-1", res.VerificationID)
			assert.Equal(t, client.StatusPending, res.Status)
		})
	}
}

func TestCreateVerification_ProgramID(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "prog-9", body["programId"])
		_, _ = fmt.Fprint(w, `{"verificationId":"ver-1","status":"pending","createdAt":"2024-05-01T12:00:00Z"}`)
	})

	_, err := client.New(client.Config{BaseURL: srv.URL}).CreateVerification(context.Background(), client.ServiceSpotify, "prog-9")
	require.NoError(t, err)
}

func TestCreateVerification_RejectsUnknownServiceType(t *testing.T) {
	c := client.New(client.Config{BaseURL: "http://127.0.0.1:0"})
	_, err := c.CreateVerification(context.Background(), client.ServiceType("netflix"), "")
	assert.True(t, errors.Is(err, client.ErrInvalidEnum))
}

func TestAuthHeaders(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		token      string
		wantKey    string
		wantBearer string
	}{
		{name: "none"},
		{name: "api key", apiKey: "vvk_key", wantKey: "vvk_key"},
		{name: "token", token: "jwt", wantBearer: "Bearer jwt"},
		{name: "api key wins", apiKey: "vvk_key", token: "jwt", wantKey: "vvk_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantKey, r.Header.Get(client.HeaderAPIKey))
				assert.Equal(t, tt.wantBearer, r.Header.Get(client.HeaderAuthorization))
				_, _ = fmt.Fprint(w, `{"status":"healthy","version":"1.0.0"}`)
			})

			c := client.New(client.Config{BaseURL: srv.URL, APIKey: tt.apiKey, Token: tt.token})
			_, err := c.Health(context.Background())
			require.NoError(t, err)
		})
	}
}

func TestWithAPIKey_DoesNotMutate(t *testing.T) {
	var seen []string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(client.HeaderAPIKey)+"|"+r.Header.Get(client.HeaderAuthorization))
		_, _ = fmt.Fprint(w, `{"status":"healthy"}`)
	})

	base := client.New(client.Config{BaseURL: srv.URL + "/", Token: "jwt"})
	keyed := base.WithAPIKey("vvk_key")

	_, err := base.Health(context.Background())
	require.NoError(t, err)
	_, err = keyed.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"|Bearer jwt", "vvk_key|"}, seen)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail", http.StatusBadRequest, `{"detail":"invalid email"}`, "invalid email"},
		{"message", http.StatusInternalServerError, `{"message":"boom"}`, "boom"},
		{"unparsable", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
		{"empty json", http.StatusNotFound, `{}`, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			})

			_, err := client.New(client.Config{BaseURL: srv.URL}).GetVerificationStatus(context.Background(), "ver-1")
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())

			var apiErr *client.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestGetVerificationStatus_NotFound(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verify/ver-404/status", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"detail":"Verification not found"}`)
	})

	_, err := client.New(client.Config{BaseURL: srv.URL}).GetVerificationStatus(context.Background(), "ver-404")
	assert.True(t, client.IsNotFound(err))
}

func TestGetVerificationStatus_RejectsUnknownStatus(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"id":"ver-1","serviceType":"chatgpt","status":"on_hold","createdAt":"2024-05-01T12:00:00Z"}`)
	})

	_, err := client.New(client.Config{BaseURL: srv.URL}).GetVerificationStatus(context.Background(), "ver-1")
	assert.True(t, errors.Is(err, client.ErrInvalidEnum))
}

func TestUploadDocument_Multipart(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verify/ver-1/document", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		assert.Equal(t, "vvk_key", r.Header.Get(client.HeaderAPIKey))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "DD214", r.FormValue("document_type"))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "dd214.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))

		_, _ = fmt.Fprint(w, `{"verificationId":"ver-1","documentUrl":"https://s3/doc","status":"processing","message":"ok"}`)
	})

	c := client.New(client.Config{BaseURL: srv.URL, APIKey: "vvk_key"})
	res, err := c.UploadDocument(context.Background(), "ver-1", "dd214.pdf", strings.NewReader("%PDF-1.4"), client.DocumentDD214)
	require.NoError(t, err)
	assert.Equal(t, client.StatusProcessing, res.Status)
}

func TestLookup_QueryParams(t *testing.T) {
	var queries []string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Path+"?"+r.URL.RawQuery)
		_, _ = fmt.Fprint(w, `{"query":"x","totalResults":0,"results":[],"cached":false}`)
	})
	c := client.New(client.Config{BaseURL: srv.URL})
	ctx := context.Background()
	p := client.LookupParams{FirstName: "John", LastName: "Doe", State: "TX", Branch: client.BranchArmy}

	_, err := c.SearchGraveLocator(ctx, p)
	require.NoError(t, err)
	_, err = c.SearchVLM(ctx, p)
	require.NoError(t, err)
	_, err = c.SearchArmyExplorer(ctx, p)
	require.NoError(t, err)
	_, err = c.SearchArmyExplorer(ctx, client.LookupParams{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/lookup/grave?first_name=John&last_name=Doe&state=TX",
		"/api/lookup/vlm?branch=Army&first_name=John&last_name=Doe",
		"/api/lookup/army?first_name=John&last_name=Doe",
		"/api/lookup/army?",
	}, queries)
}

func TestSearchAllSources_Total(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lookup/aggregate", r.URL.Path)
		assert.Equal(t, "John", r.URL.Query().Get("first_name"))
		_, _ = fmt.Fprint(w, `{
			"query":"John","totalResults":3,
			"sources":{
				"grave_locator":{"query":"John","source":"grave_locator","totalResults":2,"results":[
					{"source":"grave_locator","name":"John A","metadata":{}},
					{"source":"grave_locator","name":"John B","metadata":{}}],"cached":false},
				"vlm":{"query":"John","source":"vlm","totalResults":1,"results":[
					{"source":"vlm","name":"John C","metadata":{}}],"cached":true},
				"army_explorer":{"query":"John","source":"army_explorer","totalResults":0,"results":[],"cached":false}
			}}`)
	})

	res, err := client.New(client.Config{BaseURL: srv.URL}).SearchAllSources(context.Background(), client.LookupParams{FirstName: "John"})
	require.NoError(t, err)

	require.Len(t, res.Sources, 3)
	sum := 0
	for _, src := range client.AllSources() {
		sub, ok := res.Sources[src]
		require.True(t, ok, src)
		sum += sub.TotalResults
	}
	assert.Equal(t, sum, res.TotalResults)
	assert.True(t, res.Sources[client.SourceVLM].Cached)
}

func TestSearchAllSources_RejectsUnknownSource(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"query":"John","totalResults":0,"sources":{"findagrave":{"query":"John","totalResults":0,"results":[]}}}`)
	})

	_, err := client.New(client.Config{BaseURL: srv.URL}).SearchAllSources(context.Background(), client.LookupParams{FirstName: "John"})
	assert.True(t, errors.Is(err, client.ErrInvalidEnum))
}

func TestGetHistory_Pagination(t *testing.T) {
	backing := make([]client.VerificationHistoryItem, 25)
	for i := range backing {
		backing[i] = client.VerificationHistoryItem{ID: "ver-" + strconv.Itoa(i), ServiceType: client.ServiceChatGPT, Status: client.StatusApproved}
	}
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "approved", r.URL.Query().Get("status"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		start := (page - 1) * perPage
		end := start + perPage
		if start > len(backing) {
			start = len(backing)
		}
		if end > len(backing) {
			end = len(backing)
		}
		_ = json.NewEncoder(w).Encode(client.VerificationHistoryResponse{
			Total: len(backing), Page: page, PerPage: perPage, Items: backing[start:end],
		})
	})
	c := client.New(client.Config{BaseURL: srv.URL})

	res, err := c.GetHistory(context.Background(), client.HistoryParams{Page: 3, PerPage: 10, Status: client.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page)
	assert.Len(t, res.Items, 5)
	assert.Equal(t, "ver-20", res.Items[0].ID)

	res, err = c.GetHistory(context.Background(), client.HistoryParams{Page: 9, PerPage: 10, Status: client.StatusApproved})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := client.New(client.Config{BaseURL: url}).Health(context.Background())
	require.Error(t, err)
	var apiErr *client.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestEnumHelpers(t *testing.T) {
	branch, err := client.ParseMilitaryBranch("Marine Corps")
	require.NoError(t, err)
	assert.Equal(t, client.BranchMarineCorps, branch)

	_, err = client.ParseMilitaryBranch("Starfleet")
	assert.ErrorIs(t, err, client.ErrInvalidEnum)
	_, err = client.ParseDocumentType("PASSPORT")
	assert.ErrorIs(t, err, client.ErrInvalidEnum)

	assert.Equal(t, []client.VASource{client.SourceGraveLocator, client.SourceVLM, client.SourceArmyExplorer}, client.AllSources())
	assert.Len(t, client.AllBranches(), 13)

	d, err := client.ParseDate("1985-03-15")
	require.NoError(t, err)
	assert.Equal(t, "1985-03-15", d.String())
}
