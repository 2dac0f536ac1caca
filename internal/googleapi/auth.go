// Package googleapi wraps the Google Calendar and Drive APIs behind small
// dashboard-shaped interfaces, sharing one OAuth token manager per token
// file.
package googleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const authCooldown = 5 * time.Minute

// TokenManager owns one OAuth token file and the interactive flow that
// refreshes it. The flow opens a local callback server on a fixed port, so it
// is a singleton resource: concurrent callers try-acquire the flow lock and
// fail fast instead of queuing, and after a failed flow a cooldown keeps
// repeat callers from hammering the port.
type TokenManager struct {
	CredentialsFile string
	TokenFile       string
	Scopes          []string
	CallbackPort    int

	flowMu        sync.Mutex
	cooldownMu    sync.Mutex
	cooldownUntil time.Time
}

// NewTokenManager creates a token manager for one token file.
func NewTokenManager(credentialsFile, tokenFile string, callbackPort int, scopes ...string) *TokenManager {
	return &TokenManager{
		CredentialsFile: credentialsFile,
		TokenFile:       tokenFile,
		Scopes:          scopes,
		CallbackPort:    callbackPort,
	}
}

// Client returns an authorized HTTP client, running the interactive flow if
// no valid token is stored.
func (m *TokenManager) Client(ctx context.Context) (*http.Client, error) {
	cfg, err := m.config()
	if err != nil {
		return nil, err
	}
	tok, err := m.loadToken()
	if err == nil {
		return cfg.Client(ctx, tok), nil
	}

	tok, err = m.runFlow(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cfg.Client(ctx, tok), nil
}

func (m *TokenManager) config() (*oauth2.Config, error) {
	data, err := os.ReadFile(m.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, m.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d/", m.CallbackPort)
	return cfg, nil
}

func (m *TokenManager) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(m.TokenFile)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("stored token expired without refresh token")
	}
	return tok, nil
}

func (m *TokenManager) saveToken(tok *oauth2.Token) {
	data, err := json.Marshal(tok)
	if err == nil {
		err = os.WriteFile(m.TokenFile, data, 0600)
	}
	if err != nil {
		log.Printf("[ERROR] save token %s: %v", m.TokenFile, err)
	}
}

// runFlow performs the interactive browser consent flow. Only one flow may
// run at a time; a second caller gets an immediate error rather than a queue.
func (m *TokenManager) runFlow(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	m.cooldownMu.Lock()
	if time.Now().Before(m.cooldownUntil) {
		m.cooldownMu.Unlock()
		return nil, fmt.Errorf("auth flow in cooldown until %s", m.cooldownUntil.Format(time.Kitchen))
	}
	m.cooldownMu.Unlock()

	if !m.flowMu.TryLock() {
		return nil, fmt.Errorf("auth flow already in progress")
	}
	defer m.flowMu.Unlock()

	tok, err := m.interactiveFlow(ctx, cfg)
	if err != nil {
		m.cooldownMu.Lock()
		m.cooldownUntil = time.Now().Add(authCooldown)
		m.cooldownMu.Unlock()
		return nil, err
	}
	m.saveToken(tok)
	return tok, nil
}

func (m *TokenManager) interactiveFlow(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", m.CallbackPort)}
	srv.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization received. You can close this tab.")
		select {
		case codeCh <- code:
		default:
		}
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	log.Printf("[INFO] authorize this app by visiting: %s", url)

	flowCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	select {
	case code := <-codeCh:
		return cfg.Exchange(ctx, code)
	case err := <-errCh:
		return nil, fmt.Errorf("callback server: %w", err)
	case <-flowCtx.Done():
		return nil, fmt.Errorf("auth flow timed out: %w", flowCtx.Err())
	}
}
