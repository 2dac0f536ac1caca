package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/pquerna/otp/totp"

	"HomeDash/internal/model"
)

const (
	rhBaseURL  = "https://api.robinhood.com"
	rhClientID = "c82SH0WZOsabOXGP2sxqcj34FxkvfnWRZBKlBjFS"
)

// RobinhoodFetcher implements PositionsFetcher against the Robinhood REST
// API. Every call performs a fresh TOTP login; session reuse is not worth the
// complexity at a few calls per day.
type RobinhoodFetcher struct {
	Client     *http.Client
	Username   string
	Password   string
	TOTPSecret string
}

// NewRobinhoodFetcher creates a fetcher with the given credentials.
func NewRobinhoodFetcher(username, password, totpSecret string) *RobinhoodFetcher {
	return &RobinhoodFetcher{
		Client:     &http.Client{Timeout: 30 * time.Second},
		Username:   username,
		Password:   password,
		TOTPSecret: totpSecret,
	}
}

func (f *RobinhoodFetcher) Name() string { return "robinhood" }

// FetchPositions logs in and returns total equity plus per-holding positions
// sorted by value. A 429 from any call maps to ErrRateLimited.
func (f *RobinhoodFetcher) FetchPositions(ctx context.Context) (*model.RobinhoodResult, error) {
	token, err := f.login(ctx)
	if err != nil {
		return nil, err
	}

	var profile struct {
		Results []struct {
			Equity string `json:"equity"`
		} `json:"results"`
	}
	if err := f.get(ctx, token, rhBaseURL+"/portfolios/", &profile); err != nil {
		return nil, fmt.Errorf("portfolio profile: %w", err)
	}
	var equity float64
	if len(profile.Results) > 0 {
		equity, _ = strconv.ParseFloat(profile.Results[0].Equity, 64)
	}

	var holdings struct {
		Results []struct {
			Symbol          string `json:"symbol"`
			Quantity        string `json:"quantity"`
			AverageBuyPrice string `json:"average_buy_price"`
			Price           string `json:"price"`
			Equity          string `json:"equity"`
		} `json:"results"`
	}
	if err := f.get(ctx, token, rhBaseURL+"/positions/?nonzero=true", &holdings); err != nil {
		return nil, fmt.Errorf("holdings: %w", err)
	}

	positions := make([]model.Position, 0, len(holdings.Results))
	for _, h := range holdings.Results {
		val, _ := strconv.ParseFloat(h.Equity, 64)
		qty, _ := strconv.ParseFloat(h.Quantity, 64)
		buyPrice, _ := strconv.ParseFloat(h.AverageBuyPrice, 64)
		price, _ := strconv.ParseFloat(h.Price, 64)

		pctGain := 0.0
		if buyPrice > 0 {
			pctGain = (price - buyPrice) / buyPrice * 100
		}
		positions = append(positions, model.Position{
			Symbol:   h.Symbol,
			Value:    val,
			PctGain:  pctGain,
			Quantity: qty,
		})
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Value > positions[j].Value })

	return &model.RobinhoodResult{Equity: equity, Positions: positions}, nil
}

func (f *RobinhoodFetcher) login(ctx context.Context) (string, error) {
	code, err := totp.GenerateCode(f.TOTPSecret, time.Now())
	if err != nil {
		return "", fmt.Errorf("generate totp: %w", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"grant_type": "password",
		"client_id":  rhClientID,
		"expires_in": 2592000,
		"scope":      "internal",
		"username":   f.Username,
		"password":   f.Password,
		"mfa_code":   code,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rhBaseURL+"/oauth2/token/", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("robinhood login: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("robinhood login read body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("robinhood login: %w", ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("robinhood login: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("robinhood login decode: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("robinhood login: no access token in response")
	}
	return tok.AccessToken, nil
}

func (f *RobinhoodFetcher) get(ctx context.Context, token, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
