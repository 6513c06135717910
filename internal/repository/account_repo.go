package repository

import (
	"context"
	"fmt"

	"ledger-service/internal/domain"
)

// AccountDirectory is the read-only index of configured accounts. Built
// once at startup; safe for unsynchronized concurrent reads afterwards.
type AccountDirectory struct {
	accounts []*domain.Account
	byID     map[string]*domain.Account
	byKind   map[string]*domain.Account
}

// NewAccountDirectory indexes the configured account book. It fails on
// duplicate identities or on more than one category account per currency.
func NewAccountDirectory(accounts []*domain.Account) (*AccountDirectory, error) {
	d := &AccountDirectory{
		accounts: accounts,
		byID:     make(map[string]*domain.Account, len(accounts)),
		byKind:   make(map[string]*domain.Account),
	}

	for _, account := range accounts {
		id := account.BankAccount.String()
		if _, ok := d.byID[id]; ok {
			return nil, fmt.Errorf("duplicate account %s", id)
		}
		d.byID[id] = account

		if account.Kind == domain.KindCustomer {
			continue
		}
		key := kindKey(account.Kind, account.Currency)
		if _, ok := d.byKind[key]; ok {
			return nil, fmt.Errorf("duplicate %s account for %s", account.Kind, account.Currency)
		}
		d.byKind[key] = account
	}

	return d, nil
}

// Lookup resolves a wire identity to its descriptor.
func (d *AccountDirectory) Lookup(_ context.Context, account domain.BankAccount) (*domain.Account, error) {
	if !account.Supported() {
		return nil, fmt.Errorf("account scheme %q: %w", account.Scheme, domain.ErrUnsupportedAccountType)
	}
	found, ok := d.byID[account.String()]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", account, domain.ErrAccountNotFound)
	}
	return found, nil
}

// CategoryAccount returns the configured special-purpose account for a
// currency. A missing category account is a configuration error.
func (d *AccountDirectory) CategoryAccount(kind domain.AccountKind, currency string) (*domain.Account, error) {
	account, ok := d.byKind[kindKey(kind, currency)]
	if !ok {
		return nil, fmt.Errorf("no %s account configured for %s: %w", kind, currency, domain.ErrAccountNotFound)
	}
	return account, nil
}

// All returns every configured account, in load order.
func (d *AccountDirectory) All() []*domain.Account {
	return d.accounts
}

func kindKey(kind domain.AccountKind, currency string) string {
	return string(kind) + ":" + currency
}
