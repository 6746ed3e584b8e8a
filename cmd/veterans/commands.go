package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/AnhAnhii/veterans-verify-system/pkg/client"
)

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("veterans "+name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func newAPIClient() (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return client.New(client.Config{
		BaseURL:   cfg.APIURL,
		APIKey:    cfg.APIKey,
		UserAgent: "veterans-cli/" + version,
	}), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func cmdConfigure(args []string, stdout io.Writer) error {
	fs := newFlagSet("configure", stdout)
	apiKey := fs.String("api-key", "", "API key (required)")
	apiURL := fs.String("api-url", defaultAPIURL, "API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*apiKey) == "" {
		return errors.New("--api-key is required")
	}

	path, err := saveConfig(&cliConfig{APIKey: strings.TrimSpace(*apiKey), APIURL: *apiURL})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Configuration saved to %s\n", path)
	fmt.Fprintf(stdout, "API URL: %s\n", *apiURL)
	return nil
}

func cmdVerify(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("verify", stdout)
	firstName := fs.String("first-name", "", "first name (required)")
	lastName := fs.String("last-name", "", "last name (required)")
	birth := fs.String("birth", "", "birth date YYYY-MM-DD (required)")
	branchStr := fs.String("branch", "", "military branch, e.g. \"Marine Corps\" (required)")
	statusStr := fs.String("status", string(client.MilitaryVeteran), "VETERAN, ACTIVE_DUTY, RESERVE or RETIRED")
	discharge := fs.String("discharge", "", "discharge date YYYY-MM-DD")
	email := fs.String("email", "", "email address (required)")
	serviceStr := fs.String("service", string(client.ServiceChatGPT), "chatgpt, spotify, youtube, google_one or other")
	if err := fs.Parse(args); err != nil {
		return err
	}

	required := []struct{ name, value string }{
		{"first-name", *firstName}, {"last-name", *lastName}, {"birth", *birth}, {"branch", *branchStr}, {"email", *email},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("--%s is required", r.name)
		}
	}

	branch, err := client.ParseMilitaryBranch(*branchStr)
	if err != nil {
		return err
	}
	militaryStatus, err := client.ParseMilitaryStatus(*statusStr)
	if err != nil {
		return err
	}
	serviceType, err := client.ParseServiceType(*serviceStr)
	if err != nil {
		return err
	}
	birthDate, err := client.ParseDate(*birth)
	if err != nil {
		return err
	}
	veteran := client.VeteranCreate{
		FirstName:      strings.TrimSpace(*firstName),
		LastName:       strings.TrimSpace(*lastName),
		BirthDate:      &birthDate,
		Branch:         branch,
		MilitaryStatus: militaryStatus,
	}
	if *discharge != "" {
		d, err := client.ParseDate(*discharge)
		if err != nil {
			return err
		}
		veteran.DischargeDate = &d
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Creating verification for %s...\n", serviceType)
	created, err := c.CreateVerification(ctx, serviceType, "")
	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}
	fmt.Fprintf(stdout, "Verification created: %s\n", created.VerificationID)

	fmt.Fprintln(stdout, "Submitting veteran information...")
	res, err := c.SubmitVerification(ctx, client.SubmitVerificationRequest{
		VerificationID: created.VerificationID,
		Veteran:        veteran,
		Email:          strings.TrimSpace(*email),
	})
	if err != nil {
		return fmt.Errorf("submit verification: %w", err)
	}

	switch res.Status {
	case client.StatusApproved:
		fmt.Fprintf(stdout, "Verification APPROVED. %s\n", res.Message)
	case client.StatusDocumentRequired:
		fmt.Fprintf(stdout, "Document upload required. %s\n", res.Message)
		fmt.Fprintf(stdout, "Run: veterans upload %s <file>\n", res.VerificationID)
	case client.StatusProcessing, client.StatusPending:
		fmt.Fprintf(stdout, "Verification processing. %s\n", res.Message)
		fmt.Fprintf(stdout, "Check later with: veterans status %s\n", res.VerificationID)
	default:
		return fmt.Errorf("verification %s: %s", res.Status, res.Message)
	}
	return nil
}

func cmdUpload(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("upload", stdout)
	docTypeStr := fs.String("type", string(client.DocumentDD214), "DD214, MILITARY_ID, VA_CARD or OTHER")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: veterans upload [--type DD214] <verification-id> <file>")
	}
	docType, err := client.ParseDocumentType(*docTypeStr)
	if err != nil {
		return err
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}

	path := fs.Arg(1)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	res, err := c.UploadDocument(ctx, fs.Arg(0), filepath.Base(path), f, docType)
	if err != nil {
		return fmt.Errorf("upload document: %w", err)
	}
	fmt.Fprintf(stdout, "Document uploaded (%s). %s\n", res.Status, res.Message)
	return nil
}

func cmdLookup(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("lookup", stdout)
	firstName := fs.String("first-name", "", "first name to search")
	lastName := fs.String("last-name", "", "last name to search")
	source := fs.String("source", "all", "all, grave, vlm or army")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p := client.LookupParams{FirstName: strings.TrimSpace(*firstName), LastName: strings.TrimSpace(*lastName)}
	if p.FirstName == "" && p.LastName == "" {
		return errors.New("at least --first-name or --last-name is required")
	}

	switch *source {
	case "all", "grave", "vlm", "army":
	default:
		return fmt.Errorf("unknown source %q (expected all, grave, vlm or army)", *source)
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}
	// nil means every source.
	var search func(context.Context, client.LookupParams) (*client.VALookupResponse, error)
	switch *source {
	case "grave":
		search = c.SearchGraveLocator
	case "vlm":
		search = c.SearchVLM
	case "army":
		search = c.SearchArmyExplorer
	}

	fmt.Fprintf(stdout, "Searching VA records for: %s\n", strings.TrimSpace(p.FirstName+" "+p.LastName))

	if search == nil {
		agg, err := c.SearchAllSources(ctx, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nFound %d results across all sources\n", agg.TotalResults)
		for _, src := range client.AllSources() {
			sub, ok := agg.Sources[src]
			if !ok || len(sub.Results) == 0 {
				continue
			}
			fmt.Fprintf(stdout, "\n=== %s ===\n", strings.ToUpper(string(src)))
			writeResults(stdout, sub.Results)
		}
		return nil
	}

	res, err := search(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\nFound %d results\n\n", res.TotalResults)
	if len(res.Results) > 0 {
		writeResults(stdout, res.Results)
	}
	return nil
}

func writeResults(w io.Writer, results []client.VALookupResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBRANCH\tRANK\tCEMETERY\tDATES")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", orDash(r.Name), orDash(r.Branch), orDash(r.Rank), orDash(r.Cemetery), orDash(r.ServiceDates))
	}
	_ = tw.Flush()
}

func cmdHistory(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("history", stdout)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "results per page (max 100)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *page < 1 || *limit < 1 || *limit > client.MaxHistoryPerPage {
		return fmt.Errorf("--page must be >= 1 and --limit between 1 and %d", client.MaxHistoryPerPage)
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}
	res, err := c.GetHistory(ctx, client.HistoryParams{Page: *page, PerPage: *limit})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSERVICE\tVETERAN\tSTATUS\tCREATED")
	for _, item := range res.Items {
		id := item.ID
		if len(id) > 8 {
			id = id[:8] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", id, item.ServiceType, orDash(item.VeteranName), item.Status, item.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()

	pages := (res.Total + *limit - 1) / *limit
	if pages < 1 {
		pages = 1
	}
	fmt.Fprintf(stdout, "\nPage %d of %d (%d total)\n", res.Page, pages, res.Total)
	return nil
}

func cmdStatus(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: veterans status <verification-id>")
	}
	c, err := newAPIClient()
	if err != nil {
		return err
	}
	v, err := c.GetVerificationStatus(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Verification ID: %s\n", v.ID)
	fmt.Fprintf(stdout, "Status:          %s\n", strings.ToUpper(string(v.Status)))
	fmt.Fprintf(stdout, "Service:         %s\n", v.ServiceType)
	fmt.Fprintf(stdout, "Created:         %s\n", v.CreatedAt.Format("2006-01-02 15:04:05"))
	if v.Veteran != nil {
		fmt.Fprintf(stdout, "Veteran:         %s %s (%s)\n", v.Veteran.FirstName, v.Veteran.LastName, v.Veteran.Branch)
	}
	if v.ErrorMessage != "" {
		fmt.Fprintf(stdout, "Error:           %s\n", v.ErrorMessage)
	}
	return nil
}
