package repository

import (
	"context"
	"testing"

	"ledger-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryLookup(t *testing.T) {
	directory, err := NewAccountDirectory(seedAccounts())
	require.NoError(t, err)
	ctx := context.Background()

	account, err := directory.Lookup(ctx, aliceAccount)
	require.NoError(t, err)
	assert.Equal(t, "Alice", account.Name)

	_, err = directory.Lookup(ctx, domain.SwiftAccount("BANKDE01", "unknown"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = directory.Lookup(ctx, domain.BankAccount{Scheme: "sepa", BIC: "BANKDE01", Number: "DE0100000001"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedAccountType)
}

func TestDirectoryCategoryAccount(t *testing.T) {
	directory, err := NewAccountDirectory(seedAccounts())
	require.NoError(t, err)

	hold, err := directory.CategoryAccount(domain.KindHold, "EUR")
	require.NoError(t, err)
	assert.Equal(t, holdAccount, hold.BankAccount)

	_, err = directory.CategoryAccount(domain.KindHold, "JPY")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = directory.CategoryAccount(domain.KindReject, "EUR")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestDirectoryRejectsDuplicates(t *testing.T) {
	accounts := seedAccounts()
	accounts = append(accounts, accounts[0])
	_, err := NewAccountDirectory(accounts)
	assert.Error(t, err)

	accounts = seedAccounts()
	dup := *accounts[1]
	dup.BankAccount = domain.SwiftAccount("BANKSYS1", "HOLD-0002")
	accounts = append(accounts, &dup)
	_, err = NewAccountDirectory(accounts)
	assert.Error(t, err)
}

func TestDirectoryDefaultBookIsConsistent(t *testing.T) {
	directory, err := NewAccountDirectory(domain.DefaultAccounts())
	require.NoError(t, err)

	for _, currency := range []string{"EUR", "USD", "GBP"} {
		for _, kind := range []domain.AccountKind{
			domain.KindHold, domain.KindSettlement, domain.KindFx, domain.KindReject,
		} {
			account, err := directory.CategoryAccount(kind, currency)
			require.NoError(t, err, "%s %s", kind, currency)
			assert.Equal(t, currency, account.Currency)
		}
	}
}
