package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnhAnhii/veterans-verify-system/pkg/client"
)

// runCLI runs one command and captures its output.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func configureFor(t *testing.T, url string) {
	t.Helper()
	code, _, stderr := runCLI(t, "configure", "--api-key", "vvk_test", "--api-url", url)
	require.Equal(t, 0, code, stderr)
}

func TestConfigure_WritesPrivateYAML(t *testing.T) {
	home := withHome(t)

	code, stdout, _ := runCLI(t, "configure", "--api-key", "vvk_test", "--api-url", "https://api.example.com")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Configuration saved")

	path := filepath.Join(home, ".veterans-cli", "config.yaml")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "vvk_test", cfg.APIKey)
	assert.Equal(t, "https://api.example.com", cfg.APIURL)
}

func TestConfigure_RequiresKey(t *testing.T) {
	withHome(t)
	code, _, stderr := runCLI(t, "configure")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--api-key is required")
}

func TestCommands_RequireConfiguration(t *testing.T) {
	withHome(t)
	code, _, stderr := runCLI(t, "status", "ver-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not configured")
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "veterans version dev")
}

func TestVerify_CreatesThenSubmits(t *testing.T) {
	withHome(t)
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "vvk_test", r.Header.Get("X-API-Key"))
		switch r.URL.Path {
		case "/api/verify/create":
			_, _ = fmt.Fprint(w, `{"verificationId":"ver-123","status":"pending","createdAt":"2024-05-01T12:00:00Z"}`)
		case "/api/verify/submit":
			var req client.SubmitVerificationRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ver-123", req.VerificationID)
			assert.Equal(t, client.BranchMarineCorps, req.Veteran.Branch)
			assert.Equal(t, client.MilitaryVeteran, req.Veteran.MilitaryStatus)
			assert.Equal(t, "1985-03-15", req.Veteran.BirthDate.String())
			_, _ = fmt.Fprint(w, `{"verificationId":"ver-123","status":"document_required","message":"Please upload","nextStep":"document_upload"}`)
		}
	}))
	defer srv.Close()
	configureFor(t, srv.URL)

	code, stdout, stderr := runCLI(t, "verify",
		"--first-name", "John", "--last-name", "Doe", "--birth", "1985-03-15",
		"--branch", "Marine Corps", "--email", "john@example.com")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{"/api/verify/create", "/api/verify/submit"}, paths)
	assert.Contains(t, stdout, "Document upload required")
	assert.Contains(t, stdout, "veterans upload ver-123")
}

func TestVerify_ValidatesBeforeCallingAPI(t *testing.T) {
	withHome(t)
	code, _, stderr := runCLI(t, "verify", "--first-name", "John", "--last-name", "Doe",
		"--birth", "1985-03-15", "--branch", "Starfleet", "--email", "john@example.com")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid enum value")

	code, _, stderr = runCLI(t, "verify", "--first-name", "John")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--last-name is required")
}

func TestLookup_PrintsTable(t *testing.T) {
	withHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lookup/army", r.URL.Path)
		assert.Equal(t, "Doe", r.URL.Query().Get("last_name"))
		_, _ = fmt.Fprint(w, `{"query":"Doe","source":"army_explorer","totalResults":1,"cached":false,
			"results":[{"source":"army_explorer","name":"John Doe","branch":"Army","rank":"SGT","cemetery":"Arlington","metadata":{}}]}`)
	}))
	defer srv.Close()
	configureFor(t, srv.URL)

	code, stdout, stderr := runCLI(t, "lookup", "--last-name", "Doe", "--source", "army")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Found 1 results")
	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, "Arlington")
}

func TestLookup_RequiresName(t *testing.T) {
	withHome(t)
	code, _, stderr := runCLI(t, "lookup", "--source", "all")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "at least --first-name or --last-name is required")
}

func TestHistory_PrintsPages(t *testing.T) {
	withHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		_, _ = fmt.Fprint(w, `{"total":25,"page":2,"perPage":10,"items":[
			{"id":"0123456789abcdef","serviceType":"spotify","status":"approved","veteranName":"Jane Roe","createdAt":"2024-05-01T12:00:00Z"}]}`)
	}))
	defer srv.Close()
	configureFor(t, srv.URL)

	code, stdout, stderr := runCLI(t, "history", "--page", "2")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "01234567...")
	assert.Contains(t, stdout, "Jane Roe")
	assert.Contains(t, stdout, "Page 2 of 3 (25 total)")
}

func TestStatus_ServerError(t *testing.T) {
	withHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprint(w, `{"detail":"Access denied"}`)
	}))
	defer srv.Close()
	configureFor(t, srv.URL)

	code, _, stderr := runCLI(t, "status", "ver-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Access denied")
}

func TestUpload_SendsMultipart(t *testing.T) {
	withHome(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verify/ver-9/document", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "MILITARY_ID", r.FormValue("document_type"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "id.pdf", header.Filename)
		_, _ = fmt.Fprint(w, `{"verificationId":"ver-9","documentUrl":"https://s3/doc","status":"processing","message":"Document uploaded, verification in progress"}`)
	}))
	defer srv.Close()
	configureFor(t, srv.URL)

	path := filepath.Join(t.TempDir(), "id.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	code, stdout, stderr := runCLI(t, "upload", "--type", "MILITARY_ID", "ver-9", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Document uploaded (processing)")

	code, _, stderr = runCLI(t, "upload", "ver-9")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage: veterans upload")
}
