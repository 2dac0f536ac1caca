package collector

import (
	"testing"

	"HomeDash/internal/model"
)

func TestCleanNumber(t *testing.T) {
	cases := map[string]float64{
		"$12,345.67":  12345.67,
		"+5.4%":       5.4,
		"-3.25%":      -3.25,
		"(1,234)":     -1234,
		" $0.01 ":     0.01,
		"n/a":         0,
		"":            0,
		"($1,000.50)": -1000.5,
	}
	for in, want := range cases {
		if got := cleanNumber(in); got != want {
			t.Errorf("cleanNumber(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestMergeAccount_SumsBalanceFromPositions(t *testing.T) {
	result := &model.FidelityPortfolio{}
	mergeAccount(result, model.Account{
		Name: "Brokerage",
		Positions: []model.Position{
			{Symbol: "VTI", Value: 600},
			{Symbol: "BND", Value: 400},
		},
	})

	if len(result.FidelityAccounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(result.FidelityAccounts))
	}
	if got := result.FidelityAccounts[0].Balance; got != 1000 {
		t.Errorf("expected balance summed to 1000, got %v", got)
	}
}

func TestMergeAccount_FoldsDuplicateAccountRows(t *testing.T) {
	result := &model.FidelityPortfolio{}
	mergeAccount(result, model.Account{
		Name:      "Brokerage",
		Positions: []model.Position{{Symbol: "VTI", Value: 600}},
	})
	mergeAccount(result, model.Account{
		Name:      "Brokerage",
		Positions: []model.Position{{Symbol: "BND", Value: 400}},
	})

	if len(result.FidelityAccounts) != 1 {
		t.Fatalf("expected duplicate rows merged into 1 account, got %d", len(result.FidelityAccounts))
	}
	acct := result.FidelityAccounts[0]
	if acct.Balance != 1000 {
		t.Errorf("expected merged balance 1000, got %v", acct.Balance)
	}
	if len(acct.Positions) != 2 {
		t.Errorf("expected 2 positions, got %d", len(acct.Positions))
	}
}
