package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger-service/internal/domain"
)

// Ledger is the in-memory posting store: a per-account ordered log plus a
// global id index. All mutation is serialized behind a single mutex; no
// operation blocks on I/O, so lock hold times stay bounded by computation.
//
// Balance rules:
//   - creating a debit posting places a hold (available goes down)
//   - committing a posting moves current (and, for credits, releases the
//     funds into available)
//   - rolling back restores whatever the earlier steps took
//
// Applying a terminal status twice has no further balance effect, which is
// the only defense against duplicate delivery from the calling network.
type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*accountLedger
	byID     map[string]*domain.Posting
}

type accountLedger struct {
	currency string
	postings []*domain.Posting // most recent first
	byID     map[string]*domain.Posting
	balance  domain.Balance
}

// NewLedger seeds one account ledger per configured account, carrying over
// the opening balance.
func NewLedger(accounts []*domain.Account) *Ledger {
	l := &Ledger{
		accounts: make(map[string]*accountLedger, len(accounts)),
		byID:     make(map[string]*domain.Posting),
	}
	for _, account := range accounts {
		l.accounts[account.BankAccount.String()] = &accountLedger{
			currency: account.Currency,
			byID:     make(map[string]*domain.Posting),
			balance:  account.OpeningBalance,
		}
	}
	return l
}

// CreatePosting appends a posting to an account's log. Creation is
// idempotent by posting id: resubmitting an id that was already posted
// returns created=false and changes nothing. Debit postings place a hold
// against the available balance and fail when it would go negative.
func (l *Ledger) CreatePosting(_ context.Context, account domain.BankAccount, posting *domain.Posting) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(account)
	if err != nil {
		return false, err
	}

	if _, ok := l.byID[posting.ID]; ok {
		return false, nil
	}

	if posting.Type == domain.TypeDebit {
		if posting.Amount.GreaterThan(entry.balance.Available) {
			return false, fmt.Errorf("account %s: %w", account, domain.ErrInsufficientFunds)
		}
		entry.balance.Available = entry.balance.Available.Sub(posting.Amount)
		entry.balance.UpdatedAt = time.Now()
	}

	entry.postings = append([]*domain.Posting{posting}, entry.postings...)
	entry.byID[posting.ID] = posting
	l.byID[posting.ID] = posting
	return true, nil
}

// Commit moves a posting to SUCCESS and applies its permanent balance
// effect: debits reduce current, credits land in both available and
// current. Committing a posting that already reached a terminal status
// returns it unchanged.
func (l *Ledger) Commit(_ context.Context, account domain.BankAccount, postingID string) (*domain.Posting, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, posting, err := l.find(account, postingID)
	if err != nil {
		return nil, err
	}
	if posting.Status != domain.StatusProcessing {
		return posting, nil
	}

	if posting.Type == domain.TypeDebit {
		entry.balance.Current = entry.balance.Current.Sub(posting.Amount)
	} else {
		entry.balance.Available = entry.balance.Available.Add(posting.Amount)
		entry.balance.Current = entry.balance.Current.Add(posting.Amount)
	}
	entry.balance.UpdatedAt = time.Now()
	posting.Status = domain.StatusSuccess
	return posting, nil
}

// Rollback moves a posting to FAILURE_CANCELED and restores whatever
// balance effect it had: a held debit releases the hold, a committed
// credit is clawed back. Rolling back twice is a no-op.
func (l *Ledger) Rollback(_ context.Context, account domain.BankAccount, postingID string) (*domain.Posting, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, posting, err := l.find(account, postingID)
	if err != nil {
		return nil, err
	}
	if posting.Status == domain.StatusFailureCanceled {
		return posting, nil
	}

	switch posting.Type {
	case domain.TypeDebit:
		entry.balance.Available = entry.balance.Available.Add(posting.Amount)
		if posting.Status == domain.StatusSuccess {
			entry.balance.Current = entry.balance.Current.Add(posting.Amount)
		}
	case domain.TypeCredit:
		if posting.Status == domain.StatusSuccess {
			entry.balance.Available = entry.balance.Available.Sub(posting.Amount)
			entry.balance.Current = entry.balance.Current.Sub(posting.Amount)
		}
	}
	entry.balance.UpdatedAt = time.Now()
	posting.Status = domain.StatusFailureCanceled
	return posting, nil
}

// Delete removes a posting record entirely. Only the credit-leg rollback
// path uses this, where the matching begin never moved funds.
func (l *Ledger) Delete(_ context.Context, account domain.BankAccount, postingID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, posting, err := l.find(account, postingID)
	if err != nil {
		return err
	}
	if posting.Status == domain.StatusSuccess {
		return fmt.Errorf("posting %s already committed: %w", postingID, domain.ErrInvalidTransition)
	}

	delete(entry.byID, postingID)
	delete(l.byID, postingID)
	for i, p := range entry.postings {
		if p.ID == postingID {
			entry.postings = append(entry.postings[:i], entry.postings[i+1:]...)
			break
		}
	}
	return nil
}

// Lookup returns a posting by id within an account.
func (l *Ledger) Lookup(_ context.Context, account domain.BankAccount, postingID string) (*domain.Posting, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(account)
	if err != nil {
		return nil, false, err
	}
	posting, ok := entry.byID[postingID]
	return posting, ok, nil
}

// Page returns postings most-recent-first, bounded by the log length.
func (l *Ledger) Page(_ context.Context, account domain.BankAccount, offset, limit int) ([]*domain.Posting, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(account)
	if err != nil {
		return nil, err
	}
	if offset < 0 || limit <= 0 || offset >= len(entry.postings) {
		return []*domain.Posting{}, nil
	}
	end := offset + limit
	if end > len(entry.postings) {
		end = len(entry.postings)
	}

	page := make([]*domain.Posting, end-offset)
	copy(page, entry.postings[offset:end])
	return page, nil
}

// Balance returns the live balance snapshot, floored to two decimals.
func (l *Ledger) Balance(_ context.Context, account domain.BankAccount) (domain.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.entry(account)
	if err != nil {
		return domain.Balance{}, err
	}
	return entry.balance.Scaled(), nil
}

func (l *Ledger) entry(account domain.BankAccount) (*accountLedger, error) {
	entry, ok := l.accounts[account.String()]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", account, domain.ErrAccountNotFound)
	}
	return entry, nil
}

func (l *Ledger) find(account domain.BankAccount, postingID string) (*accountLedger, *domain.Posting, error) {
	entry, err := l.entry(account)
	if err != nil {
		return nil, nil, err
	}
	posting, ok := entry.byID[postingID]
	if !ok {
		return nil, nil, fmt.Errorf("posting %s: %w", postingID, domain.ErrTransactionNotFound)
	}
	return entry, posting, nil
}
