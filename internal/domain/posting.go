package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingType distinguishes the two views of a transfer.
type PostingType string

const (
	TypeDebit  PostingType = "DEBIT"
	TypeCredit PostingType = "CREDIT"
)

// PostingStatus is the posting lifecycle. Postings are created PROCESSING
// and move to a terminal status exactly once, via commit or rollback.
type PostingStatus string

const (
	StatusProcessing      PostingStatus = "PROCESSING"
	StatusSuccess         PostingStatus = "SUCCESS"
	StatusFailureCanceled PostingStatus = "FAILURE_CANCELED"
)

// Posting is a single signed ledger entry against one account. Amount is a
// positive magnitude; the sign comes from the posting type.
type Posting struct {
	ID          string          `json:"id"`
	TransferID  string          `json:"transfer_id"`
	Type        PostingType     `json:"type"`
	From        BankAccount     `json:"from"`
	To          BankAccount     `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      PostingStatus   `json:"status"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SignedAmount returns the amount as seen by the posted account: negative
// for the debit view, positive for the credit view.
func (p *Posting) SignedAmount() decimal.Decimal {
	if p.Type == TypeDebit {
		return p.Amount.Neg()
	}
	return p.Amount
}

// Transfer is a balanced pair of postings sharing a transfer id. The debit
// view is filed under the source account, the credit view under the
// destination, so the pair always sums to zero.
type Transfer struct {
	ID     string
	Debit  *Posting
	Credit *Posting
}

// NewTransfer builds the balanced posting pair for moving amount between
// two accounts. Conservation holds by construction.
func NewTransfer(
	transferID, debitID, creditID string,
	from, to BankAccount,
	amount decimal.Decimal,
	currency, description string,
) (*Transfer, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	debit := &Posting{
		ID:          debitID,
		TransferID:  transferID,
		Type:        TypeDebit,
		From:        from,
		To:          to,
		Amount:      amount,
		Currency:    currency,
		Status:      StatusProcessing,
		Description: description,
		CreatedAt:   now,
	}
	credit := &Posting{
		ID:          creditID,
		TransferID:  transferID,
		Type:        TypeCredit,
		From:        from,
		To:          to,
		Amount:      amount,
		Currency:    currency,
		Status:      StatusProcessing,
		Description: description,
		CreatedAt:   now,
	}

	return &Transfer{ID: transferID, Debit: debit, Credit: credit}, nil
}

// Balanced reports whether the two views cancel out.
func (t *Transfer) Balanced() bool {
	return t.Debit.SignedAmount().Add(t.Credit.SignedAmount()).IsZero()
}
