package model

// Position is a single holding inside a brokerage account.
type Position struct {
	Symbol   string  `json:"symbol"`
	Value    float64 `json:"value"`
	PctGain  float64 `json:"pct_gain"`
	Quantity float64 `json:"quantity"`
}

// Account is one brokerage account with its balance and holdings.
type Account struct {
	Name      string     `json:"name"`
	Balance   float64    `json:"balance"`
	Positions []Position `json:"positions,omitempty"`
}

// PortfolioDetails is the per-account/per-holding breakdown behind the
// net-worth headline number.
type PortfolioDetails struct {
	TotalValue  float64    `json:"total_value"`
	Fidelity    []Account  `json:"fidelity"`
	NonFidelity []Account  `json:"non_fidelity"`
	Robinhood   []Position `json:"robinhood"`
}

// Clone returns a deep copy.
func (p *PortfolioDetails) Clone() PortfolioDetails {
	out := *p
	out.Fidelity = cloneAccounts(p.Fidelity)
	out.NonFidelity = cloneAccounts(p.NonFidelity)
	out.Robinhood = append([]Position(nil), p.Robinhood...)
	return out
}

func cloneAccounts(in []Account) []Account {
	out := make([]Account, len(in))
	for i, a := range in {
		out[i] = a
		out[i].Positions = append([]Position(nil), a.Positions...)
	}
	return out
}

// FidelityPortfolio is the raw result of a brokerage portal scrape before it
// is merged with other sources into PortfolioDetails.
type FidelityPortfolio struct {
	TotalNetWorth       float64   `json:"total_net_worth"`
	FidelityAccounts    []Account `json:"fidelity_accounts"`
	NonFidelityAccounts []Account `json:"non_fidelity_accounts"`
}

// RobinhoodResult is the raw result of a trading-app positions fetch.
type RobinhoodResult struct {
	Equity    float64    `json:"equity"`
	Positions []Position `json:"positions"`
}
