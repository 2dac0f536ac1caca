package collector

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pquerna/otp/totp"

	"HomeDash/internal/model"
)

const (
	fidelityLoginURL     = "https://digital.fidelity.com/prgw/digital/login/full-page"
	fidelityPositionsURL = "https://digital.fidelity.com/ftgw/digital/portfolio/positions"
	fidelityBalancesURL  = "https://digital.fidelity.com/ftgw/digital/portfolio/balances"
)

// FidelityFetcher implements PortfolioFetcher by driving a headless browser
// through the brokerage web portal. There is no public API for this data, so
// every fetch is a full login + scrape session.
type FidelityFetcher struct {
	Username    string
	Password    string
	TOTPSecret  string
	Headless    bool
	UserDataDir string
}

// NewFidelityFetcher creates a fetcher. userDataDir holds the browser profile
// so a saved session can skip 2FA on later runs.
func NewFidelityFetcher(username, password, totpSecret, userDataDir string, headless bool) *FidelityFetcher {
	return &FidelityFetcher{
		Username:    username,
		Password:    password,
		TOTPSecret:  totpSecret,
		Headless:    headless,
		UserDataDir: userDataDir,
	}
}

func (f *FidelityFetcher) Name() string { return "fidelity" }

// FetchPortfolio logs in and scrapes the per-account positions and the total
// net worth (including linked external accounts).
func (f *FidelityFetcher) FetchPortfolio(ctx context.Context) (*model.FidelityPortfolio, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.Headless),
		chromedp.UserDataDir(f.UserDataDir),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 3*time.Minute)
	defer cancelTimeout()

	if err := f.login(browserCtx); err != nil {
		return nil, fmt.Errorf("fidelity login: %w", err)
	}

	result := &model.FidelityPortfolio{
		FidelityAccounts:    []model.Account{},
		NonFidelityAccounts: []model.Account{},
	}
	if err := f.scrapePositions(browserCtx, result); err != nil {
		return nil, fmt.Errorf("fidelity positions: %w", err)
	}
	if err := f.scrapeBalances(browserCtx, result); err != nil {
		return nil, fmt.Errorf("fidelity balances: %w", err)
	}
	if result.TotalNetWorth == 0 {
		log.Printf("[WARN] fidelity data seems empty")
	}
	return result, nil
}

func (f *FidelityFetcher) login(ctx context.Context) error {
	if err := chromedp.Run(ctx, chromedp.Navigate(fidelityLoginURL)); err != nil {
		return err
	}

	// A saved browser profile may still hold a live session; the login form
	// never appears then.
	probeCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := chromedp.Run(probeCtx, chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery)); err != nil {
		return nil // already logged in
	}

	if err := chromedp.Run(ctx,
		chromedp.SendKeys(`input[name="username"]`, f.Username, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, f.Password, chromedp.ByQuery),
		chromedp.Click(`button#dom-login-button`, chromedp.ByQuery),
	); err != nil {
		return err
	}

	if f.TOTPSecret != "" {
		code, err := totp.GenerateCode(f.TOTPSecret, time.Now())
		if err != nil {
			return fmt.Errorf("generate totp: %w", err)
		}
		totpCtx, cancelTotp := context.WithTimeout(ctx, 15*time.Second)
		defer cancelTotp()
		err = chromedp.Run(totpCtx,
			chromedp.WaitVisible(`input#dom-totp-security-code-input`, chromedp.ByQuery),
			chromedp.SendKeys(`input#dom-totp-security-code-input`, code, chromedp.ByQuery),
			chromedp.Click(`button#dom-totp-code-submit-button`, chromedp.ByQuery),
		)
		if err != nil {
			// No TOTP prompt means the saved device skipped 2FA.
			log.Printf("[INFO] fidelity: no 2FA prompt, continuing")
		}
	}

	settleCtx, cancelSettle := context.WithTimeout(ctx, 30*time.Second)
	defer cancelSettle()
	return chromedp.Run(settleCtx, chromedp.WaitReady(`body`, chromedp.ByQuery))
}

// positionsExtractJS walks the positions grid and emits one line per row:
// "A<TAB>name" for account rows, "P<TAB>symbol<TAB>value<TAB>pct<TAB>qty"
// for position rows.
const positionsExtractJS = `
(() => {
  const lines = [];
  const txt = el => el ? el.textContent.trim() : "";
  for (const row of document.querySelectorAll('[class*="posweb-row"]')) {
    const cls = row.className || "";
    if (cls.includes("posweb-row-account")) {
      lines.push("A\t" + (txt(row.querySelector(".posweb-cell-account_primary")) || txt(row)));
    } else if (cls.includes("posweb-row-position")) {
      lines.push(["P",
        txt(row.querySelector(".posweb-cell-symbol-name")),
        txt(row.querySelector(".posweb-cell-current_value")),
        txt(row.querySelector(".posweb-cell-total_gl_percent")),
        txt(row.querySelector(".posweb-cell-quantity")),
      ].join("\t"));
    }
  }
  return lines.join("\n");
})()`

func (f *FidelityFetcher) scrapePositions(ctx context.Context, result *model.FidelityPortfolio) error {
	var raw string
	err := chromedp.Run(ctx,
		chromedp.Navigate(fidelityPositionsURL),
		chromedp.WaitVisible(`[class*="posweb-row"]`, chromedp.ByQuery),
		chromedp.Evaluate(positionsExtractJS, &raw),
	)
	if err != nil {
		return err
	}

	var current *model.Account
	flush := func() {
		if current != nil && len(current.Positions) > 0 {
			mergeAccount(result, *current)
		}
		current = nil
	}
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Split(line, "\t")
		switch {
		case len(fields) >= 2 && fields[0] == "A":
			flush()
			current = &model.Account{Name: fields[1]}
		case len(fields) >= 5 && fields[0] == "P" && current != nil:
			current.Positions = append(current.Positions, model.Position{
				Symbol:   fields[1],
				Value:    cleanNumber(fields[2]),
				PctGain:  cleanNumber(fields[3]),
				Quantity: cleanNumber(fields[4]),
			})
		}
	}
	flush()
	return nil
}

func (f *FidelityFetcher) scrapeBalances(ctx context.Context, result *model.FidelityPortfolio) error {
	var netWorth string
	var external string
	err := chromedp.Run(ctx,
		chromedp.Navigate(fidelityBalancesURL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Text(`[data-testid*="networth-value"]`, &netWorth, chromedp.ByQuery, chromedp.AtLeast(0)),
		chromedp.Evaluate(`
(() => {
  const lines = [];
  for (const sec of document.querySelectorAll(".expand-header-section__center-content")) {
    const name = sec.querySelector(".expand-header-section__center-content__title");
    const amount = sec.querySelector('.expand-header-section__center-content__amount div[data-testid*="totalaccountvalue-label"]');
    if (name && amount) lines.push(name.textContent.trim() + "\t" + amount.textContent.trim());
  }
  return lines.join("\n");
})()`, &external),
	)
	if err != nil {
		return err
	}

	result.TotalNetWorth = cleanNumber(netWorth)
	for _, line := range strings.Split(external, "\n") {
		name, amount, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		result.NonFidelityAccounts = append(result.NonFidelityAccounts, model.Account{
			Name:    name,
			Balance: cleanNumber(amount),
		})
	}
	return nil
}

// mergeAccount sums holding values into the account balance and appends it.
// Rows for the same account can appear more than once in the grid.
func mergeAccount(result *model.FidelityPortfolio, acct model.Account) {
	for i := range result.FidelityAccounts {
		if result.FidelityAccounts[i].Name == acct.Name {
			result.FidelityAccounts[i].Positions = append(result.FidelityAccounts[i].Positions, acct.Positions...)
			for _, p := range acct.Positions {
				result.FidelityAccounts[i].Balance += p.Value
			}
			return
		}
	}
	for _, p := range acct.Positions {
		acct.Balance += p.Value
	}
	result.FidelityAccounts = append(result.FidelityAccounts, acct)
}

// cleanNumber parses "$12,345.67", "+5.4%", "(1,234)" style strings.
func cleanNumber(s string) float64 {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	r := strings.NewReplacer("$", "", ",", "", "%", "", "(", "", ")", "", "+", "")
	s = strings.TrimSpace(r.Replace(s))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if neg {
		return -v
	}
	return v
}
