// Command sheets-auth runs the OAuth consent flow once and stores the user
// token ledger-worker reads from GOOGLE_OAUTH_TOKEN_FILE.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"

	"saldo/internal/cli"
	"saldo/internal/config"
	saldolog "saldo/internal/log"
)

const authTimeout = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), saldolog.ComponentSheets)
	cfg := config.Load()

	if err := run(cfg, logger); err != nil {
		logger.Error("Authorization failed", saldolog.FieldError, err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *saldolog.Logger) error {
	oc, err := oauthConfig(cfg)
	if err != nil {
		return err
	}
	port := os.Getenv("OAUTH_REDIRECT_PORT")
	if port == "" {
		port = "8085"
	}
	oc.RedirectURL = "http://localhost:" + port + "/callback"

	state, err := randomState()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	codes := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", callbackHandler(state, codes))
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Callback server failed", saldolog.FieldError, err.Error())
			cancel()
		}
	}()
	defer func() { _ = srv.Close() }()

	fmt.Printf("Open this URL to authorize saldo:\n%s\n", oc.AuthCodeURL(state, oauth2.AccessTypeOffline))

	var code string
	select {
	case code = <-codes:
	case <-ctx.Done():
		return fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}

	tok, err := oc.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}

	out := cfg.GoogleOAuthTokenFile
	if out == "" {
		out = "token.json"
	}
	if err := writeToken(out, tok); err != nil {
		return err
	}
	logger.Info("Saved OAuth token", "path", out)
	return nil
}

func oauthConfig(cfg *config.Config) (*oauth2.Config, error) {
	var clientJSON []byte
	switch {
	case cfg.GoogleOAuthClientJSON != "":
		clientJSON = []byte(cfg.GoogleOAuthClientJSON)
	case cfg.GoogleOAuthClientFile != "":
		b, err := os.ReadFile(cfg.GoogleOAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read client file: %w", err)
		}
		clientJSON = b
	default:
		return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
	}
	oc, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return oc, nil
}

// callbackHandler forwards the first authorization code whose state matches.
func callbackHandler(state string, codes chan<- string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		select {
		case codes <- code:
		default:
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
	}
}

func writeToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
