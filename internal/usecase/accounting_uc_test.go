package usecase

import (
	"context"
	"testing"

	"ledger-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferSettlesBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settlement := f.category(t, domain.KindSettlement, "EUR")

	transfer, err := f.accounting.Transfer(ctx, alice, settlement, dec("100.00"), "EUR", "tr-1", "payout")
	require.NoError(t, err)
	assert.True(t, transfer.Balanced())
	assert.Equal(t, domain.StatusSuccess, transfer.Debit.Status)
	assert.Equal(t, domain.StatusSuccess, transfer.Credit.Status)

	f.requireBalance(t, alice, "900.00", "900.00")
	f.requireBalance(t, settlement, delta(t, "100.00"), delta(t, "100.00"))
}

func TestPostTransferPlacesHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hold := f.category(t, domain.KindHold, "EUR")

	transfer, err := f.accounting.PostTransfer(ctx, alice, hold, dec("100.00"), "EUR", "tr-1", "instant")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, transfer.Debit.Status)
	assert.Equal(t, domain.StatusSuccess, transfer.Credit.Status)

	// Hold placed on the source, funds already parked in the hold account.
	f.requireBalance(t, alice, "900.00", "1000.00")
	f.requireBalance(t, hold, delta(t, "100.00"), delta(t, "100.00"))
}

func TestCommitHoldSettles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hold := f.category(t, domain.KindHold, "EUR")
	settlement := f.category(t, domain.KindSettlement, "EUR")

	transfer, err := f.accounting.PostTransfer(ctx, alice, hold, dec("100.00"), "EUR", "tr-1", "instant")
	require.NoError(t, err)
	require.NoError(t, f.accounting.CommitHold(ctx, []*domain.Transfer{transfer}, dec("100.00"), "EUR", "tr-1"))

	f.requireBalance(t, alice, "900.00", "900.00")
	f.requireBalance(t, hold, liquidity, liquidity)
	f.requireBalance(t, settlement, delta(t, "100.00"), delta(t, "100.00"))
}

func TestRollbackHoldRestoresEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hold := f.category(t, domain.KindHold, "EUR")

	transfer, err := f.accounting.PostTransfer(ctx, alice, hold, dec("100.00"), "EUR", "tr-1", "instant")
	require.NoError(t, err)
	require.NoError(t, f.accounting.RollbackHold(ctx, []*domain.Transfer{transfer}))

	f.requireBalance(t, alice, "1000.00", "1000.00")
	f.requireBalance(t, hold, liquidity, liquidity)
}

func TestPostFxTransferRoutesThroughFxAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fxEUR := f.category(t, domain.KindFx, "EUR")
	fxUSD := f.category(t, domain.KindFx, "USD")
	holdUSD := f.category(t, domain.KindHold, "USD")
	settlementUSD := f.category(t, domain.KindSettlement, "USD")

	transfers, err := f.accounting.PostFxTransfer(ctx, alice,
		dec("100.00"), "EUR", dec("117.00"), "USD", "tr-1", "fx transfer")
	require.NoError(t, err)
	require.Len(t, transfers, 2)

	f.requireBalance(t, alice, "900.00", "1000.00")
	f.requireBalance(t, fxEUR, delta(t, "100.00"), delta(t, "100.00"))
	f.requireBalance(t, fxUSD, delta(t, "-117.00"), liquidity)
	f.requireBalance(t, holdUSD, delta(t, "117.00"), delta(t, "117.00"))

	require.NoError(t, f.accounting.CommitHold(ctx, transfers, dec("117.00"), "USD", "tr-1"))

	f.requireBalance(t, alice, "900.00", "900.00")
	f.requireBalance(t, fxUSD, delta(t, "-117.00"), delta(t, "-117.00"))
	f.requireBalance(t, holdUSD, liquidity, liquidity)
	f.requireBalance(t, settlementUSD, delta(t, "117.00"), delta(t, "117.00"))
}

func TestPostFxTransferUnknownCurrency(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounting.PostFxTransfer(context.Background(), alice,
		dec("100.00"), "EUR", dec("15000.00"), "JPY", "tr-1", "fx transfer")
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)
	f.requireBalance(t, alice, "1000.00", "1000.00")
}

func TestTransferToRejectAccountFails(t *testing.T) {
	f := newFixture(t)
	reject := f.category(t, domain.KindReject, "EUR")

	transfer, err := f.accounting.Transfer(context.Background(),
		alice, reject, dec("100.00"), "EUR", "tr-1", "doomed")
	require.ErrorIs(t, err, domain.ErrRejectedBySimulation)
	require.NotNil(t, transfer)
	assert.Equal(t, domain.StatusFailureCanceled, transfer.Debit.Status)
	assert.Equal(t, domain.StatusFailureCanceled, transfer.Credit.Status)

	// Nothing was posted.
	f.requireBalance(t, alice, "1000.00", "1000.00")
	f.requireBalance(t, reject, liquidity, liquidity)
}

func TestTransferInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	settlement := f.category(t, domain.KindSettlement, "EUR")

	_, err := f.accounting.Transfer(context.Background(),
		alice, settlement, dec("1000.01"), "EUR", "tr-1", "too much")
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	f.requireBalance(t, alice, "1000.00", "1000.00")
}

func TestCreateCreditPostingIsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	posting, err := f.accounting.CreateCreditPosting(ctx, bob, dec("50.00"), "USD", "tr-1", "incoming")
	require.NoError(t, err)
	assert.Equal(t, domain.TypeCredit, posting.Type)
	assert.Equal(t, domain.StatusProcessing, posting.Status)

	// Pending credits move nothing.
	f.requireBalance(t, bob, "1000.00", "1000.00")
}

func TestCreateCreditPostingCurrencyMismatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounting.CreateCreditPosting(context.Background(), bob, dec("50.00"), "EUR", "tr-1", "incoming")
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestCommitCreditPostingPaysOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settlement := f.category(t, domain.KindSettlement, "USD")

	posting, err := f.accounting.CreateCreditPosting(ctx, bob, dec("50.00"), "USD", "tr-1", "incoming")
	require.NoError(t, err)

	committed, err := f.accounting.CommitCreditPosting(ctx, bob, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, committed.Status)

	f.requireBalance(t, bob, "1050.00", "1050.00")
	f.requireBalance(t, settlement, delta(t, "-50.00"), delta(t, "-50.00"))
}

func TestRollbackCreditPostingDeletesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	posting, err := f.accounting.CreateCreditPosting(ctx, bob, dec("50.00"), "USD", "tr-1", "incoming")
	require.NoError(t, err)
	require.NoError(t, f.accounting.RollbackCreditPosting(ctx, bob, posting.ID))

	_, found, err := f.accounting.LookupPosting(ctx, bob, posting.ID)
	require.NoError(t, err)
	assert.False(t, found)
	f.requireBalance(t, bob, "1000.00", "1000.00")
}

func TestPagePostingsMostRecentFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settlement := f.category(t, domain.KindSettlement, "EUR")

	for i := 0; i < 3; i++ {
		_, err := f.accounting.Transfer(ctx, alice, settlement, dec("10.00"), "EUR",
			"tr-"+string(rune('a'+i)), "sweep")
		require.NoError(t, err)
	}

	page, err := f.accounting.PagePostings(ctx, alice, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "tr-c", page[0].TransferID)
	assert.Equal(t, "tr-b", page[1].TransferID)
}

func TestLookupBalanceUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounting.LookupBalance(context.Background(), domain.SwiftAccount("NOBANK", "123"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
