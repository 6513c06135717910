package usecase

import (
	"context"
	"fmt"
	"sync"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// legState tracks one side of an instant transfer through its two-phase
// lifecycle. Transitions are explicit; anything not in the table below is
// rejected with ErrInvalidTransition rather than silently absorbed.
type legState string

const (
	legNew      legState = "NEW"
	legHeld     legState = "HELD"
	legPending  legState = "PENDING"
	legSettled  legState = "SETTLED"
	legCanceled legState = "CANCELED"
)

var legTransitions = map[legState][]legState{
	legNew:     {legHeld, legPending, legCanceled},
	legHeld:    {legSettled, legCanceled},
	legPending: {legSettled, legCanceled},
}

// legRecord is the in-flight state for one transfer leg, keyed by the
// transaction id handed back from begin.
type legRecord struct {
	state      legState
	kind       domain.PostingType
	transferID string
	account    domain.BankAccount
	amount     decimal.Decimal
	currency   string
	transfers  []*domain.Transfer // debit leg: the held pairs
	posting    *domain.Posting    // credit leg: the pending posting
}

// allowed reports whether the leg may move to the target state. The state
// itself only advances after the ledger side effect succeeds, so a failed
// commit or rollback leaves the leg retryable.
func (r *legRecord) allowed(to legState) error {
	for _, next := range legTransitions[r.state] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("leg %s -> %s: %w", r.state, to, domain.ErrInvalidTransition)
}

// TransferUsecase orchestrates instant transfers: the two-phase debit leg
// (hold then settle) and the two-phase credit leg (pending then clear).
// Each begin returns a transaction handle; the matching commit or rollback
// must quote the same transfer identity and amount back.
type TransferUsecase struct {
	mu         sync.Mutex
	accounting *AccountingUsecase
	pricing    *PricingUsecase
	directory  *repository.AccountDirectory
	records    map[string]*legRecord
	logger     *zap.Logger
}

// NewTransferUsecase wires the transfer orchestrator.
func NewTransferUsecase(
	accounting *AccountingUsecase,
	pricing *PricingUsecase,
	directory *repository.AccountDirectory,
	logger *zap.Logger,
) *TransferUsecase {
	return &TransferUsecase{
		accounting: accounting,
		pricing:    pricing,
		directory:  directory,
		records:    make(map[string]*legRecord),
		logger:     logger,
	}
}

// ===============================
// DEBIT LEG
// ===============================

// BeginDebit places the remitter-side hold. Same-currency transfers post a
// single pair from the source to the hold account; cross-currency transfers
// redeem the instruction's quote and route through the FX accounts. The
// returned handle carries the id the later commit or rollback must quote.
//
// A transfer touching the reject account comes back FAILURE_CANCELED with
// ErrRejectedBySimulation; no hold is placed.
func (uc *TransferUsecase) BeginDebit(ctx context.Context, instr *domain.TransferInstruction) (*domain.TransactionHandle, error) {
	if err := instr.Validate(); err != nil {
		return nil, err
	}
	source, err := uc.directory.Lookup(ctx, instr.Account)
	if err != nil {
		return nil, err
	}

	settleAmount, settleCurrency := instr.SettlementLeg()
	settlement, err := uc.directory.CategoryAccount(domain.KindSettlement, settleCurrency)
	if err != nil {
		return nil, err
	}

	// A transfer destined for the reject account fails before any hold is
	// placed. The counterparty is not posted against on the debit leg, so
	// the check has to happen here.
	if rejected, err := uc.accounting.CheckReject(instr.Account, instr.Counterparty,
		settleAmount, settleCurrency, instr.TransferID, instr.Description); err != nil {
		return uc.rejectedHandle(rejected, instr, settlement.BankAccount, err)
	}

	var transfers []*domain.Transfer
	if instr.Currency == settleCurrency {
		hold, err := uc.directory.CategoryAccount(domain.KindHold, instr.Currency)
		if err != nil {
			return nil, err
		}
		transfer, err := uc.accounting.PostTransfer(ctx,
			source.BankAccount, hold.BankAccount,
			instr.Amount, instr.Currency, instr.TransferID, instr.Description)
		if err != nil {
			return uc.rejectedHandle(transfer, instr, settlement.BankAccount, err)
		}
		transfers = []*domain.Transfer{transfer}
	} else {
		if instr.Quote == nil {
			return nil, fmt.Errorf("cross-currency transfer %s requires a quote: %w",
				instr.TransferID, domain.ErrInvalidQuote)
		}
		if err := uc.pricing.RedeemQuote(*instr.Quote); err != nil {
			return nil, err
		}
		transfers, err = uc.accounting.PostFxTransfer(ctx,
			source.BankAccount,
			instr.Amount, instr.Currency,
			settleAmount, settleCurrency,
			instr.TransferID, instr.Description)
		if err != nil {
			if len(transfers) == 1 {
				return uc.rejectedHandle(transfers[0], instr, settlement.BankAccount, err)
			}
			return nil, err
		}
	}

	transactionID := transfers[0].Debit.ID
	uc.mu.Lock()
	uc.records[transactionID] = &legRecord{
		state:      legHeld,
		kind:       domain.TypeDebit,
		transferID: instr.TransferID,
		account:    instr.Account,
		amount:     settleAmount,
		currency:   settleCurrency,
		transfers:  transfers,
	}
	uc.mu.Unlock()

	uc.logger.Info("debit leg held",
		zap.String("transfer_id", instr.TransferID),
		zap.String("transaction_id", transactionID),
		zap.String("account", instr.Account.String()))
	return &domain.TransactionHandle{
		ID:                transactionID,
		TransferID:        instr.TransferID,
		Status:            domain.StatusProcessing,
		Amount:            settleAmount,
		Currency:          settleCurrency,
		SettlementAccount: settlement.BankAccount,
	}, nil
}

// CommitDebit settles a held debit leg. The caller must present the same
// transfer identity, account, amount and currency the hold was placed
// with; a mismatch leaves the hold untouched.
func (uc *TransferUsecase) CommitDebit(
	ctx context.Context,
	transferID, transactionID string,
	account domain.BankAccount,
	amount decimal.Decimal,
	currency string,
) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	record, err := uc.record(transactionID, domain.TypeDebit)
	if err != nil {
		return err
	}
	if err := record.verify(transferID, account, amount, currency); err != nil {
		return err
	}
	if err := record.allowed(legSettled); err != nil {
		return err
	}

	if err := uc.accounting.CommitHold(ctx, record.transfers, record.amount, record.currency, transferID); err != nil {
		return err
	}
	record.state = legSettled
	uc.logger.Info("debit leg settled",
		zap.String("transfer_id", transferID),
		zap.String("transaction_id", transactionID))
	return nil
}

// RollbackDebit releases a held debit leg, restoring every balance the
// hold touched.
func (uc *TransferUsecase) RollbackDebit(
	ctx context.Context,
	transferID, transactionID string,
	account domain.BankAccount,
	amount decimal.Decimal,
	currency string,
) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	record, err := uc.record(transactionID, domain.TypeDebit)
	if err != nil {
		return err
	}
	if err := record.verify(transferID, account, amount, currency); err != nil {
		return err
	}
	if err := record.allowed(legCanceled); err != nil {
		return err
	}

	if err := uc.accounting.RollbackHold(ctx, record.transfers); err != nil {
		return err
	}
	record.state = legCanceled
	uc.logger.Info("debit leg canceled",
		zap.String("transfer_id", transferID),
		zap.String("transaction_id", transactionID))
	return nil
}

// ===============================
// CREDIT LEG
// ===============================

// BeginCredit records the pending beneficiary-side posting. No money moves
// until the matching commit.
func (uc *TransferUsecase) BeginCredit(ctx context.Context, instr *domain.TransferInstruction) (*domain.TransactionHandle, error) {
	if err := instr.Validate(); err != nil {
		return nil, err
	}

	settlement, err := uc.directory.CategoryAccount(domain.KindSettlement, instr.Currency)
	if err != nil {
		return nil, err
	}
	posting, err := uc.accounting.CreateCreditPosting(ctx,
		instr.Account, instr.Amount, instr.Currency, instr.TransferID, instr.Description)
	if err != nil {
		if posting != nil {
			return &domain.TransactionHandle{
				ID:                posting.ID,
				TransferID:        instr.TransferID,
				Status:            domain.StatusFailureCanceled,
				Amount:            instr.Amount,
				Currency:          instr.Currency,
				SettlementAccount: settlement.BankAccount,
			}, err
		}
		return nil, err
	}

	uc.mu.Lock()
	uc.records[posting.ID] = &legRecord{
		state:      legPending,
		kind:       domain.TypeCredit,
		transferID: instr.TransferID,
		account:    instr.Account,
		amount:     instr.Amount,
		currency:   instr.Currency,
		posting:    posting,
	}
	uc.mu.Unlock()

	uc.logger.Info("credit leg pending",
		zap.String("transfer_id", instr.TransferID),
		zap.String("transaction_id", posting.ID),
		zap.String("account", instr.Account.String()))
	return &domain.TransactionHandle{
		ID:                posting.ID,
		TransferID:        instr.TransferID,
		Status:            domain.StatusProcessing,
		Amount:            instr.Amount,
		Currency:          instr.Currency,
		SettlementAccount: settlement.BankAccount,
	}, nil
}

// CommitCredit clears a pending credit leg: the beneficiary receives the
// funds from the settlement account.
func (uc *TransferUsecase) CommitCredit(
	ctx context.Context,
	transferID, transactionID string,
	account domain.BankAccount,
	amount decimal.Decimal,
	currency string,
) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	record, err := uc.record(transactionID, domain.TypeCredit)
	if err != nil {
		return err
	}
	if err := record.verify(transferID, account, amount, currency); err != nil {
		return err
	}
	if err := record.allowed(legSettled); err != nil {
		return err
	}

	if _, err := uc.accounting.CommitCreditPosting(ctx, record.account, record.posting.ID); err != nil {
		return err
	}
	record.state = legSettled
	uc.logger.Info("credit leg settled",
		zap.String("transfer_id", transferID),
		zap.String("transaction_id", transactionID))
	return nil
}

// RollbackCredit drops a pending credit leg. An unknown transaction id is
// a no-op here: the begin may never have reached us, and rolling back
// nothing is the correct outcome.
func (uc *TransferUsecase) RollbackCredit(
	ctx context.Context,
	transferID, transactionID string,
) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	record, ok := uc.records[transactionID]
	if !ok {
		return nil
	}
	if record.kind != domain.TypeCredit {
		return fmt.Errorf("transaction %s is not a credit leg: %w", transactionID, domain.ErrTransferMismatch)
	}
	if record.transferID != transferID {
		return fmt.Errorf("transaction %s belongs to transfer %s: %w",
			transactionID, record.transferID, domain.ErrTransferMismatch)
	}
	if err := record.allowed(legCanceled); err != nil {
		return err
	}

	if err := uc.accounting.RollbackCreditPosting(ctx, record.account, record.posting.ID); err != nil {
		return err
	}
	record.state = legCanceled
	delete(uc.records, transactionID)
	uc.logger.Info("credit leg canceled",
		zap.String("transfer_id", transferID),
		zap.String("transaction_id", transactionID))
	return nil
}

// Pending reports how many legs are currently in a non-terminal state.
func (uc *TransferUsecase) Pending() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	n := 0
	for _, record := range uc.records {
		if record.state != legSettled && record.state != legCanceled {
			n++
		}
	}
	return n
}

// ===============================
// INTERNAL
// ===============================

// record looks up an in-flight leg. Callers hold the mutex.
func (uc *TransferUsecase) record(transactionID string, kind domain.PostingType) (*legRecord, error) {
	record, ok := uc.records[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, domain.ErrTransactionNotFound)
	}
	if record.kind != kind {
		return nil, fmt.Errorf("transaction %s is not a %s leg: %w", transactionID, kind, domain.ErrTransferMismatch)
	}
	return record, nil
}

// verify checks that a commit or rollback quotes back the identity the
// leg was begun with.
func (r *legRecord) verify(transferID string, account domain.BankAccount, amount decimal.Decimal, currency string) error {
	if r.transferID != transferID {
		return fmt.Errorf("transaction belongs to transfer %s, not %s: %w",
			r.transferID, transferID, domain.ErrTransferMismatch)
	}
	if !r.account.Matches(account) {
		return fmt.Errorf("transaction account %s does not match %s: %w",
			r.account, account, domain.ErrTransferMismatch)
	}
	if !r.amount.Equal(amount) || r.currency != currency {
		return fmt.Errorf("transaction amount %s %s does not match %s %s: %w",
			r.amount, r.currency, amount, currency, domain.ErrTransferMismatch)
	}
	return nil
}

// rejectedHandle wraps a simulation-rejected transfer into the handle the
// caller still receives.
func (uc *TransferUsecase) rejectedHandle(
	transfer *domain.Transfer,
	instr *domain.TransferInstruction,
	settlement domain.BankAccount,
	err error,
) (*domain.TransactionHandle, error) {
	if transfer == nil {
		return nil, err
	}
	return &domain.TransactionHandle{
		ID:                transfer.Debit.ID,
		TransferID:        instr.TransferID,
		Status:            domain.StatusFailureCanceled,
		Amount:            instr.Amount,
		Currency:          instr.Currency,
		SettlementAccount: settlement,
	}, err
}
