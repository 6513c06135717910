package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217 currency the engine is configured for.
type Currency struct {
	Code     string
	Name     string
	Decimals int16
}

// DefaultCurrencies returns the static list of supported currencies.
func DefaultCurrencies() []*Currency {
	return []*Currency{
		{Code: "EUR", Name: "Euro", Decimals: 2},
		{Code: "USD", Name: "US Dollar", Decimals: 2},
		{Code: "GBP", Name: "Pound Sterling", Decimals: 2},
	}
}

// DefaultFXRates returns the built-in conversion table, used when no seed
// file overrides it.
func DefaultFXRates() []*FXRate {
	return []*FXRate{
		{BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: decimal.RequireFromString("1.17")},
		{BaseCurrency: "USD", QuoteCurrency: "EUR", Rate: decimal.RequireFromString("0.85")},
		{BaseCurrency: "EUR", QuoteCurrency: "GBP", Rate: decimal.RequireFromString("0.87")},
		{BaseCurrency: "GBP", QuoteCurrency: "EUR", Rate: decimal.RequireFromString("1.15")},
		{BaseCurrency: "USD", QuoteCurrency: "GBP", Rate: decimal.RequireFromString("0.74")},
		{BaseCurrency: "GBP", QuoteCurrency: "USD", Rate: decimal.RequireFromString("1.35")},
	}
}

// DefaultAccounts returns the built-in account book: a couple of customer
// accounts plus the hold, settlement, fx and reject accounts for each
// default currency. Category accounts are seeded with liquidity so
// intermediate postings never bounce.
func DefaultAccounts() []*Account {
	now := time.Now()
	accounts := []*Account{
		{
			Name: "Alice Eurozone",
			Address: Address{
				House: "12", Street: "Hauptstrasse", City: "Berlin",
				PostCode: "10115", Country: "DE",
			},
			BankAccount:    SwiftAccount("BFAMDEB1", "DE89370400440532013000"),
			Currency:       "EUR",
			Kind:           KindCustomer,
			OpeningBalance: NewBalance("EUR", decimal.RequireFromString("1000.00")),
			CreatedAt:      now,
		},
		{
			Name: "Bob Stateside",
			Address: Address{
				House: "221", Street: "Market St", City: "San Francisco",
				PostCode: "94105", Country: "US",
			},
			BankAccount:    SwiftAccount("BFAMUS33", "US1234567890"),
			Currency:       "USD",
			Kind:           KindCustomer,
			OpeningBalance: NewBalance("USD", decimal.RequireFromString("1000.00")),
			CreatedAt:      now,
		},
	}

	liquidity := decimal.RequireFromString("10000000.00")
	for i, currency := range []string{"EUR", "USD", "GBP"} {
		for _, kind := range []AccountKind{KindHold, KindSettlement, KindFx, KindReject} {
			accounts = append(accounts, &Account{
				Name:           string(kind) + " " + currency,
				BankAccount:    SwiftAccount("BFAMSYS1", categoryNumber(kind, i)),
				Currency:       currency,
				Kind:           kind,
				OpeningBalance: NewBalance(currency, liquidity),
				CreatedAt:      now,
			})
		}
	}

	return accounts
}

func categoryNumber(kind AccountKind, seq int) string {
	prefixes := map[AccountKind]string{
		KindHold:       "HOLD",
		KindSettlement: "SETL",
		KindFx:         "FXAC",
		KindReject:     "RJCT",
	}
	return fmt.Sprintf("%s-%d001", prefixes[kind], seq)
}
