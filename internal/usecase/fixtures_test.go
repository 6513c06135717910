package usecase

import (
	"context"
	"testing"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"
	"ledger-service/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The default account book: Alice holds 1000.00 EUR, Bob holds 1000.00 USD,
// every category account starts with 10000000.00 of liquidity.
var (
	alice = domain.SwiftAccount("BFAMDEB1", "DE89370400440532013000")
	bob   = domain.SwiftAccount("BFAMUS33", "US1234567890")
)

const liquidity = "10000000.00"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	directory  *repository.AccountDirectory
	ledger     *repository.Ledger
	accounting *AccountingUsecase
	pricing    *PricingUsecase
	transfers  *TransferUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts := domain.DefaultAccounts()
	directory, err := repository.NewAccountDirectory(accounts)
	require.NoError(t, err)

	ledger := repository.NewLedger(accounts)
	logger := zap.NewNop()
	accounting := NewAccountingUsecase(directory, ledger, utils.NewIDGenerator(), logger)
	pricing := NewPricingUsecase(domain.DefaultFXRates(), FeeSchedule{DebitFee: dec("0.25")}, accounting, logger)
	transfers := NewTransferUsecase(accounting, pricing, directory, logger)

	return &fixture{
		directory:  directory,
		ledger:     ledger,
		accounting: accounting,
		pricing:    pricing,
		transfers:  transfers,
	}
}

func (f *fixture) category(t *testing.T, kind domain.AccountKind, currency string) domain.BankAccount {
	t.Helper()
	account, err := f.directory.CategoryAccount(kind, currency)
	require.NoError(t, err)
	return account.BankAccount
}

func (f *fixture) requireBalance(t *testing.T, account domain.BankAccount, available, current string) {
	t.Helper()
	balance, err := f.accounting.LookupBalance(context.Background(), account)
	require.NoError(t, err)
	require.True(t, balance.Available.Equal(dec(available)),
		"%s available = %s, want %s", account, balance.Available, available)
	require.True(t, balance.Current.Equal(dec(current)),
		"%s current = %s, want %s", account, balance.Current, current)
}

// delta builds a liquidity figure offset from the category opening balance.
func delta(t *testing.T, offset string) string {
	t.Helper()
	return dec(liquidity).Add(dec(offset)).StringFixed(2)
}
