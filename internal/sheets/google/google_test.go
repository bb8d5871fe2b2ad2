package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"saldo/internal/core"
)

// fakeSheets serves the three Values endpoints the client uses.
type fakeSheets struct {
	mu      sync.Mutex
	ids     [][]any
	updates []string
	bodies  []gsheet.ValueRange
	clears  []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, rng, _ := strings.Cut(r.URL.Path, "/values/")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": f.ids})
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var vr gsheet.ValueRange
		_ = json.Unmarshal(body, &vr)
		f.updates = append(f.updates, rng)
		f.bodies = append(f.bodies, vr)
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":clear"):
		f.clears = append(f.clears, strings.TrimSuffix(rng, ":clear"))
		_, _ = io.WriteString(w, `{}`)
	default:
		http.Error(w, "unexpected request", http.StatusBadRequest)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return newClient(svc, Config{SpreadsheetID: "sheet-id", SheetName: "Transações", Location: time.UTC})
}

func sampleTx(id int64) core.Transaction {
	return core.Transaction{
		ID:            id,
		CreatedAt:     time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		Description:   "Pizza",
		Category:      core.CategoryFood,
		Amount:        core.Money{Cents: -5000},
		Kind:          core.Expense,
		PaymentMethod: core.Debit,
	}
}

func TestClient_AppendWritesNextRow(t *testing.T) {
	fake := &fakeSheets{ids: [][]any{{"ID"}, {"1"}, {"2"}}}
	c := newTestClient(t, fake)

	if err := c.Append(context.Background(), sampleTx(3)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(fake.updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(fake.updates))
	}
	if fake.updates[0] != "2026 Transações!A4:F4" {
		t.Errorf("update range = %q", fake.updates[0])
	}
	row := fake.bodies[0].Values[0]
	if len(row) != 6 || row[2] != "Pizza" || row[3] != "Alimentação" {
		t.Errorf("unexpected row: %v", row)
	}
}

func TestClient_AppendSkipsExistingRow(t *testing.T) {
	fake := &fakeSheets{ids: [][]any{{"ID"}, {"3"}}}
	c := newTestClient(t, fake)

	if err := c.Append(context.Background(), sampleTx(3)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(fake.updates) != 0 {
		t.Errorf("duplicate delivery should not write, got %v", fake.updates)
	}
}

func TestClient_RemoveClearsMatchingRow(t *testing.T) {
	fake := &fakeSheets{ids: [][]any{{"ID"}, {"1"}, {"2"}, {"3"}}}
	c := newTestClient(t, fake)

	if err := c.Remove(context.Background(), sampleTx(2)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(fake.clears) != 1 || fake.clears[0] != "2026 Transações!A3:F3" {
		t.Errorf("clears = %v", fake.clears)
	}
}

func TestClient_RemoveMissingRowIsNoop(t *testing.T) {
	fake := &fakeSheets{ids: [][]any{{"ID"}, {"1"}}}
	c := newTestClient(t, fake)

	if err := c.Remove(context.Background(), sampleTx(9)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(fake.clears) != 0 {
		t.Errorf("clears = %v", fake.clears)
	}
}

func TestClient_AppendRejectsInvalidID(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if err := c.Append(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if err := c.Append(context.Background(), sampleTx(1)); err == nil {
		t.Error("expected error from Append without service")
	}
	if err := c.Remove(context.Background(), sampleTx(1)); err == nil {
		t.Error("expected error from Remove without service")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: "/non/existent/sa.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestNew_OAuthMissingToken(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", OAuthClientJSON: testOAuthClient})
	if err == nil || err.Error() != "missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)" {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestNew_OAuthInvalidClient(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", OAuthClientJSON: "{not json", OAuthTokenJSON: `{"access_token":"a"}`})
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
}

func TestNew_OAuthUnreadableClientFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "id", OAuthClientFile: "/non/existent/client.json"})
	if err == nil || !strings.Contains(err.Error(), "read oauth client") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestOAuthTokenSourceUsesStoredToken(t *testing.T) {
	ts, err := oauthTokenSource(context.Background(), Config{
		OAuthClientJSON: testOAuthClient,
		OAuthTokenJSON:  `{"access_token":"test","token_type":"Bearer","expiry":"2999-01-01T00:00:00Z"}`,
	})
	if err != nil {
		t.Fatalf("oauthTokenSource: %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "test" {
		t.Errorf("AccessToken = %q, want test", tok.AccessToken)
	}
}

func TestParseToken(t *testing.T) {
	tok, err := ParseToken([]byte(`{"access_token":"a","refresh_token":"r"}`))
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if tok.RefreshToken != "r" {
		t.Errorf("RefreshToken = %q, want r", tok.RefreshToken)
	}
	if _, err := ParseToken([]byte(`{}`)); err == nil {
		t.Error("expected error for empty token")
	}
	if _, err := ParseToken([]byte(`nope`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestSheetForUsesTransactionYear(t *testing.T) {
	c := newClient(nil, Config{SpreadsheetID: "x", Location: time.UTC})
	c.now = func() time.Time { return time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC) }

	if got := c.sheetFor(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)); got != "2025 Transações" {
		t.Errorf("sheetFor(2025) = %q", got)
	}
	if got := c.sheetFor(time.Time{}); got != "2027 Transações" {
		t.Errorf("sheetFor(zero) = %q", got)
	}
}
