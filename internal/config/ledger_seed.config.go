package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ledger-service/internal/domain"

	"github.com/shopspring/decimal"
)

// seedFile is the JSON shape of an account-book override. Amounts travel
// as decimal strings to avoid float parsing.
type seedFile struct {
	Accounts []seedAccount `json:"accounts"`
	FXRates  []seedRate    `json:"fx_rates"`
}

type seedAccount struct {
	Name     string         `json:"name"`
	Address  domain.Address `json:"address"`
	BIC      string         `json:"bic"`
	Number   string         `json:"number"`
	Currency string         `json:"currency"`
	Kind     string         `json:"kind"`
	Balance  string         `json:"balance"`
}

type seedRate struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
	Rate  string `json:"rate"`
}

// LoadSeed reads the account book and FX rate table from the configured
// seed file, falling back to the built-in defaults when no file is set.
func LoadSeed(path string) ([]*domain.Account, []*domain.FXRate, error) {
	if path == "" {
		return domain.DefaultAccounts(), domain.DefaultFXRates(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	now := time.Now()
	accounts := make([]*domain.Account, 0, len(seed.Accounts))
	for _, a := range seed.Accounts {
		balance, err := decimal.NewFromString(a.Balance)
		if err != nil {
			return nil, nil, fmt.Errorf("account %s: bad balance %q: %w", a.Number, a.Balance, err)
		}
		kind := domain.AccountKind(a.Kind)
		if kind == "" {
			kind = domain.KindCustomer
		}
		accounts = append(accounts, &domain.Account{
			Name:           a.Name,
			Address:        a.Address,
			BankAccount:    domain.SwiftAccount(a.BIC, a.Number),
			Currency:       a.Currency,
			Kind:           kind,
			OpeningBalance: domain.NewBalance(a.Currency, balance),
			CreatedAt:      now,
		})
	}

	rates := make([]*domain.FXRate, 0, len(seed.FXRates))
	for _, r := range seed.FXRates {
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return nil, nil, fmt.Errorf("fx rate %s/%s: bad rate %q: %w", r.Base, r.Quote, r.Rate, err)
		}
		rates = append(rates, &domain.FXRate{BaseCurrency: r.Base, QuoteCurrency: r.Quote, Rate: rate})
	}
	if len(rates) == 0 {
		rates = domain.DefaultFXRates()
	}

	return accounts, rates, nil
}
