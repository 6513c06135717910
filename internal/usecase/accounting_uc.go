package usecase

import (
	"context"
	"fmt"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"
	"ledger-service/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountingUsecase composes the account directory and the ledger into
// business-level operations: balanced transfer posting, the reject-account
// simulation, and the hold lifecycle that backs instant transfers.
type AccountingUsecase struct {
	directory *repository.AccountDirectory
	ledger    *repository.Ledger
	ids       *utils.IDGenerator
	logger    *zap.Logger
}

// NewAccountingUsecase wires the accounting engine.
func NewAccountingUsecase(
	directory *repository.AccountDirectory,
	ledger *repository.Ledger,
	ids *utils.IDGenerator,
	logger *zap.Logger,
) *AccountingUsecase {
	return &AccountingUsecase{
		directory: directory,
		ledger:    ledger,
		ids:       ids,
		logger:    logger,
	}
}

// ===============================
// TRANSFER POSTING
// ===============================

// Transfer posts and immediately settles a balanced pair between two
// accounts. This is the single-shot path; instant transfers go through the
// hold lifecycle below instead.
func (uc *AccountingUsecase) Transfer(
	ctx context.Context,
	from, to domain.BankAccount,
	amount decimal.Decimal,
	currency, transferID, description string,
) (*domain.Transfer, error) {
	if _, err := uc.resolveBoth(ctx, from, to); err != nil {
		return nil, err
	}
	if transfer, err := uc.CheckReject(from, to, amount, currency, transferID, description); err != nil {
		return transfer, err
	}
	return uc.postPair(ctx, transferID, from, to, amount, currency, description, true)
}

// PostTransfer places a hold: the debit view stays PROCESSING against the
// source account while the credit view settles into the destination. Used
// with the hold account as destination for the debit leg of an instant
// transfer.
func (uc *AccountingUsecase) PostTransfer(
	ctx context.Context,
	from, to domain.BankAccount,
	amount decimal.Decimal,
	currency, transferID, description string,
) (*domain.Transfer, error) {
	if _, err := uc.resolveBoth(ctx, from, to); err != nil {
		return nil, err
	}
	if transfer, err := uc.CheckReject(from, to, amount, currency, transferID, description); err != nil {
		return transfer, err
	}
	return uc.postPair(ctx, transferID, from, to, amount, currency, description, false)
}

// PostFxTransfer handles the case where the instructed currency differs
// from the account currency. Two balanced pairs are posted through the
// per-currency FX accounts:
//
//  1. debit customer, credit FX in the customer account currency
//  2. debit FX, credit hold in the settlement currency
//
// The bid/ask spread is not accounted for; it goes nowhere.
func (uc *AccountingUsecase) PostFxTransfer(
	ctx context.Context,
	from domain.BankAccount,
	srcAmount decimal.Decimal, srcCurrency string,
	dstAmount decimal.Decimal, dstCurrency string,
	transferID, description string,
) ([]*domain.Transfer, error) {
	if _, err := uc.directory.Lookup(ctx, from); err != nil {
		return nil, err
	}
	fxSrc, err := uc.directory.CategoryAccount(domain.KindFx, srcCurrency)
	if err != nil {
		return nil, fmt.Errorf("fx pair %s->%s: %w", srcCurrency, dstCurrency, domain.ErrInvalidCurrency)
	}
	fxDst, err := uc.directory.CategoryAccount(domain.KindFx, dstCurrency)
	if err != nil {
		return nil, fmt.Errorf("fx pair %s->%s: %w", srcCurrency, dstCurrency, domain.ErrInvalidCurrency)
	}
	hold, err := uc.directory.CategoryAccount(domain.KindHold, dstCurrency)
	if err != nil {
		return nil, err
	}
	if transfer, err := uc.CheckReject(from, fxSrc.BankAccount, srcAmount, srcCurrency, transferID, description); err != nil {
		if transfer == nil {
			return nil, err
		}
		return []*domain.Transfer{transfer}, err
	}

	src, err := uc.postPair(ctx, transferID, from, fxSrc.BankAccount, srcAmount, srcCurrency, description, false)
	if err != nil {
		return nil, err
	}
	dst, err := uc.postPair(ctx, transferID, fxDst.BankAccount, hold.BankAccount, dstAmount, dstCurrency, description, false)
	if err != nil {
		// Undo the first pair so the failed FX transfer leaves no trace.
		uc.rollbackPair(ctx, src)
		return nil, err
	}

	return []*domain.Transfer{src, dst}, nil
}

// ===============================
// HOLD LIFECYCLE
// ===============================

// CommitHold settles held transfers: every pending debit view commits, and
// the held amount moves from the hold account to the settlement account.
func (uc *AccountingUsecase) CommitHold(
	ctx context.Context,
	transfers []*domain.Transfer,
	settleAmount decimal.Decimal,
	settleCurrency, transferID string,
) error {
	for _, transfer := range transfers {
		if _, err := uc.ledger.Commit(ctx, transfer.Debit.From, transfer.Debit.ID); err != nil {
			return err
		}
	}

	hold, err := uc.directory.CategoryAccount(domain.KindHold, settleCurrency)
	if err != nil {
		return err
	}
	settlement, err := uc.directory.CategoryAccount(domain.KindSettlement, settleCurrency)
	if err != nil {
		return err
	}
	_, err = uc.postPair(ctx, transferID, hold.BankAccount, settlement.BankAccount,
		settleAmount, settleCurrency, "settlement", true)
	return err
}

// RollbackHold reverses held transfers: pending debits release their hold
// and the credits already placed with the hold or FX accounts are clawed
// back, returning every balance to where it started.
func (uc *AccountingUsecase) RollbackHold(ctx context.Context, transfers []*domain.Transfer) error {
	for _, transfer := range transfers {
		if err := uc.rollbackPair(ctx, transfer); err != nil {
			return err
		}
	}
	return nil
}

// ===============================
// CREDIT LEG
// ===============================

// CreateCreditPosting records the pending beneficiary-side posting. No
// money moves; the record exists so the later commit can be validated.
func (uc *AccountingUsecase) CreateCreditPosting(
	ctx context.Context,
	destination domain.BankAccount,
	amount decimal.Decimal,
	currency, transferID, description string,
) (*domain.Posting, error) {
	account, err := uc.directory.Lookup(ctx, destination)
	if err != nil {
		return nil, err
	}
	if account.Currency != currency {
		return nil, fmt.Errorf("credit side FX is not supported: %w", domain.ErrInvalidCurrency)
	}

	settlement, err := uc.directory.CategoryAccount(domain.KindSettlement, currency)
	if err != nil {
		return nil, err
	}
	if rejected, err := uc.CheckReject(settlement.BankAccount, destination, amount, currency, transferID, description); err != nil {
		if rejected == nil {
			return nil, err
		}
		return rejected.Credit, err
	}
	transfer, err := domain.NewTransfer(
		transferID,
		uc.ids.Prefixed("txn"), uc.ids.Prefixed("txn"),
		settlement.BankAccount, destination,
		amount, currency, description,
	)
	if err != nil {
		return nil, err
	}

	if _, err := uc.ledger.CreatePosting(ctx, destination, transfer.Credit); err != nil {
		return nil, err
	}
	return transfer.Credit, nil
}

// CommitCreditPosting clears a pending credit: the destination receives
// the funds and a matching settled debit is filed under the settlement
// account, forming the balanced pair.
func (uc *AccountingUsecase) CommitCreditPosting(
	ctx context.Context,
	destination domain.BankAccount,
	postingID string,
) (*domain.Posting, error) {
	credit, err := uc.ledger.Commit(ctx, destination, postingID)
	if err != nil {
		return nil, err
	}

	settlement, err := uc.directory.CategoryAccount(domain.KindSettlement, credit.Currency)
	if err != nil {
		return nil, err
	}
	debit := *credit
	debit.ID = uc.ids.Prefixed("txn")
	debit.Type = domain.TypeDebit
	debit.Status = domain.StatusProcessing
	if _, err := uc.ledger.CreatePosting(ctx, settlement.BankAccount, &debit); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.Commit(ctx, settlement.BankAccount, debit.ID); err != nil {
		return nil, err
	}
	return credit, nil
}

// RollbackCreditPosting deletes the pending record. The matching begin
// never moved funds, so there is nothing else to undo.
func (uc *AccountingUsecase) RollbackCreditPosting(
	ctx context.Context,
	destination domain.BankAccount,
	postingID string,
) error {
	return uc.ledger.Delete(ctx, destination, postingID)
}

// ===============================
// LOOKUPS
// ===============================

// LookupBalance returns the live balance for an account.
func (uc *AccountingUsecase) LookupBalance(ctx context.Context, account domain.BankAccount) (domain.Balance, error) {
	if _, err := uc.directory.Lookup(ctx, account); err != nil {
		return domain.Balance{}, err
	}
	return uc.ledger.Balance(ctx, account)
}

// LookupPosting returns a posting by id within an account.
func (uc *AccountingUsecase) LookupPosting(ctx context.Context, account domain.BankAccount, postingID string) (*domain.Posting, bool, error) {
	if _, err := uc.directory.Lookup(ctx, account); err != nil {
		return nil, false, err
	}
	return uc.ledger.Lookup(ctx, account, postingID)
}

// PagePostings returns an account's postings most-recent-first.
func (uc *AccountingUsecase) PagePostings(ctx context.Context, account domain.BankAccount, offset, limit int) ([]*domain.Posting, error) {
	if _, err := uc.directory.Lookup(ctx, account); err != nil {
		return nil, err
	}
	return uc.ledger.Page(ctx, account, offset, limit)
}

// ===============================
// INTERNAL
// ===============================

// CheckReject implements the forced-failure simulation: a transfer touching
// the configured reject account for its currency is marked
// FAILURE_CANCELED without posting anything. The returned pair carries the
// instructed identities so callers can still hand it back.
func (uc *AccountingUsecase) CheckReject(
	from, to domain.BankAccount,
	amount decimal.Decimal,
	currency, transferID, description string,
) (*domain.Transfer, error) {
	reject, err := uc.directory.CategoryAccount(domain.KindReject, currency)
	if err != nil {
		return nil, nil // no reject account configured, simulation disabled
	}
	if !from.Matches(reject.BankAccount) && !to.Matches(reject.BankAccount) {
		return nil, nil
	}

	transfer, err := domain.NewTransfer(
		transferID,
		uc.ids.Prefixed("txn"), uc.ids.Prefixed("txn"),
		from, to,
		amount, currency, description,
	)
	if err != nil {
		return nil, err
	}
	transfer.Debit.Status = domain.StatusFailureCanceled
	transfer.Credit.Status = domain.StatusFailureCanceled

	uc.logger.Info("transfer rejected by simulation",
		zap.String("transfer_id", transferID),
		zap.String("from", from.String()),
		zap.String("to", to.String()))
	return transfer, domain.ErrRejectedBySimulation
}

// postPair creates the balanced pair for one transfer. The credit view
// always settles immediately; the debit view settles too when settle is
// set, otherwise it stays PROCESSING as a hold.
func (uc *AccountingUsecase) postPair(
	ctx context.Context,
	transferID string,
	from, to domain.BankAccount,
	amount decimal.Decimal,
	currency, description string,
	settle bool,
) (*domain.Transfer, error) {
	transfer, err := domain.NewTransfer(
		transferID,
		uc.ids.Prefixed("txn"), uc.ids.Prefixed("txn"),
		from, to,
		amount, currency, description,
	)
	if err != nil {
		return nil, err
	}

	if _, err := uc.ledger.CreatePosting(ctx, from, transfer.Debit); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.CreatePosting(ctx, to, transfer.Credit); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.Commit(ctx, to, transfer.Credit.ID); err != nil {
		return nil, err
	}
	if settle {
		if _, err := uc.ledger.Commit(ctx, from, transfer.Debit.ID); err != nil {
			return nil, err
		}
	}

	uc.logger.Debug("posted transfer pair",
		zap.String("transfer_id", transferID),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("amount", amount.String()),
		zap.String("currency", currency),
		zap.Bool("settled", settle))
	return transfer, nil
}

func (uc *AccountingUsecase) rollbackPair(ctx context.Context, transfer *domain.Transfer) error {
	if _, err := uc.ledger.Rollback(ctx, transfer.Debit.From, transfer.Debit.ID); err != nil {
		return err
	}
	_, err := uc.ledger.Rollback(ctx, transfer.Credit.To, transfer.Credit.ID)
	return err
}

func (uc *AccountingUsecase) resolveBoth(ctx context.Context, from, to domain.BankAccount) ([]*domain.Account, error) {
	src, err := uc.directory.Lookup(ctx, from)
	if err != nil {
		return nil, err
	}
	dst, err := uc.directory.Lookup(ctx, to)
	if err != nil {
		return nil, err
	}
	return []*domain.Account{src, dst}, nil
}
