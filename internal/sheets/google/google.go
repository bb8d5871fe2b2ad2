package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"saldo/internal/core"
	ports "saldo/internal/sheets"
)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID string
	// SheetName is the base tab name; rows go to "<year> <SheetName>" for the
	// year the transaction was recorded in.
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
	// OAuth user credentials replace the service account when a client is
	// set. The token comes from cmd/sheets-auth.
	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string
	// Location renders row dates; defaults to UTC.
	Location *time.Location
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	loc           *time.Location
	now           func() time.Time
}

// Ensure interface conformance
var _ ports.ExportSink = (*Client)(nil)

// New creates a Sheets client authenticated with OAuth user credentials or a
// service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	auth, err := authOption(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, auth, goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return newClient(svc, cfg), nil
}

func newClient(svc *gsheet.Service, cfg Config) *Client {
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Transações"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetBase:     base,
		loc:           loc,
		now:           time.Now,
	}
}

// authOption picks OAuth user credentials when an OAuth client is configured
// and the service account otherwise.
func authOption(ctx context.Context, cfg Config) (goption.ClientOption, error) {
	if strings.TrimSpace(cfg.OAuthClientJSON) != "" || strings.TrimSpace(cfg.OAuthClientFile) != "" {
		ts, err := oauthTokenSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Using OAuth user credentials")
		return goption.WithTokenSource(ts), nil
	}
	credentialsJSON, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return goption.WithCredentialsJSON(credentialsJSON), nil
}

// oauthTokenSource returns a refreshing token source for a stored user token.
func oauthTokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, error) {
	clientJSON, err := inlineOrFile(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client: %w", err)
	}
	oc, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	tokenJSON, err := inlineOrFile(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	if tokenJSON == nil {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}
	tok, err := ParseToken(tokenJSON)
	if err != nil {
		return nil, err
	}
	// Refreshes outlive the setup context.
	return oc.TokenSource(context.WithoutCancel(ctx), tok), nil
}

// ParseToken decodes a token saved by cmd/sheets-auth.
func ParseToken(data []byte) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("oauth token has neither access nor refresh token")
	}
	return &tok, nil
}

// inlineOrFile returns inline when set, the file's contents when a path is
// set, and nil when neither is.
func inlineOrFile(inline, file string) ([]byte, error) {
	if v := strings.TrimSpace(inline); v != "" {
		return []byte(v), nil
	}
	if f := strings.TrimSpace(file); f != "" {
		return os.ReadFile(f)
	}
	return nil, nil
}

// loadCredentials prefers inline JSON, then the configured file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// sheetFor returns the tab holding rows recorded at t. A zero t means the
// current year.
func (c *Client) sheetFor(t time.Time) string {
	if t.IsZero() {
		t = c.now()
	}
	return yearPrefixedName(c.sheetBase, t.In(c.loc).Year())
}

// Append implements ports.ExportSink.
func (c *Client) Append(ctx context.Context, tx core.Transaction) error {
	if tx.ID <= 0 {
		return fmt.Errorf("invalid transaction id %d", tx.ID)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheet := c.sheetFor(tx.CreatedAt)

	ids, err := c.readIDs(ctx, sheet)
	if err != nil {
		return err
	}
	if findRow(ids, tx.ID) > 0 {
		slog.DebugContext(ctx, "Row already exported", "component", "sheets", "transaction_id", tx.ID, "sheet", sheet)
		return nil
	}

	// Next row is number of existing rows + 1
	nextRow := len(ids) + 1
	rng := fmt.Sprintf("%s!A%d:F%d", sheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{toRow(tx, c.loc)}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Transaction exported", "component", "sheets", "transaction_id", tx.ID, "range", rng)
	return nil
}

// Remove implements ports.ExportSink. The row is cleared rather than deleted
// so row numbers of other transactions do not shift.
func (c *Client) Remove(ctx context.Context, tx core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	sheet := c.sheetFor(tx.CreatedAt)

	ids, err := c.readIDs(ctx, sheet)
	if err != nil {
		return err
	}
	row := findRow(ids, tx.ID)
	if row == 0 {
		slog.WarnContext(ctx, "Row to remove not found", "component", "sheets", "transaction_id", tx.ID, "sheet", sheet)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:F%d", sheet, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", rng, err)
	}
	slog.InfoContext(ctx, "Exported row cleared", "component", "sheets", "transaction_id", tx.ID, "range", rng)
	return nil
}

func (c *Client) readIDs(ctx context.Context, sheet string) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read ids from %s: %w", sheet, err)
	}
	return resp.Values, nil
}
