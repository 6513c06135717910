package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledger-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteTTL is how long an issued quote stays redeemable.
const QuoteTTL = 24 * time.Hour

// FeeSchedule carries the configured flat fees per transfer side. The
// remitter pays FX and fees, so the credit side normally charges nothing.
type FeeSchedule struct {
	DebitFee  decimal.Decimal
	CreditFee decimal.Decimal
}

// PricingUsecase generates, stores and redeems FX/fee quotes against a
// configured rate table. Quote state is shared mutable and serialized
// behind one mutex; nothing under the lock does I/O.
type PricingUsecase struct {
	mu         sync.Mutex
	rates      []*domain.FXRate
	fees       FeeSchedule
	quotes     map[string]domain.Quote
	references map[string]domain.Quote // tokenRefID -> issued quote, for idempotent prepares
	accounting *AccountingUsecase
	logger     *zap.Logger
	now        func() time.Time
}

// NewPricingUsecase wires the pricing engine.
func NewPricingUsecase(
	rates []*domain.FXRate,
	fees FeeSchedule,
	accounting *AccountingUsecase,
	logger *zap.Logger,
) *PricingUsecase {
	return &PricingUsecase{
		rates:      rates,
		fees:       fees,
		quotes:     make(map[string]domain.Quote),
		references: make(map[string]domain.Quote),
		accounting: accounting,
		logger:     logger,
		now:        time.Now,
	}
}

// ===============================
// QUOTING
// ===============================

// DebitQuote issues a remitter-side quote, charging the configured
// transaction fee.
func (uc *PricingUsecase) DebitQuote(baseCurrency, quoteCurrency string) (domain.Quote, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.newQuote(baseCurrency, quoteCurrency, uc.fees.DebitFee)
}

// CreditQuote issues a beneficiary-side quote. The credit side charges no
// fee under the remitter-pays policy.
func (uc *PricingUsecase) CreditQuote(baseCurrency, quoteCurrency string) (domain.Quote, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.newQuote(baseCurrency, quoteCurrency, uc.fees.CreditFee)
}

// LookupQuote returns a previously issued quote.
func (uc *PricingUsecase) LookupQuote(id string) (domain.Quote, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.lookupQuote(id)
}

// RedeemQuote validates and consumes a quote. The supplied quote must
// match the stored one exactly; a quote redeems at most once. Redemption
// moves no money, it only books the deal.
func (uc *PricingUsecase) RedeemQuote(quote domain.Quote) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	stored, err := uc.lookupQuote(quote.ID)
	if err != nil {
		return err
	}
	if !stored.Equal(quote) {
		return fmt.Errorf("quote %s does not match issued quote: %w", quote.ID, domain.ErrInvalidQuote)
	}

	delete(uc.quotes, quote.ID)
	uc.logger.Debug("quote redeemed",
		zap.String("quote_id", quote.ID),
		zap.String("pair", stored.BaseCurrency+"/"+stored.QuoteCurrency))
	return nil
}

// ===============================
// PREPARE (integration boundary)
// ===============================

// PrepareDebit prices the remitter side of a transfer. FX is performed on
// the remitter side, so the quote runs from the source account currency to
// the requested currency. Repeated calls with the same token reference id
// return the previously issued quote unchanged.
func (uc *PricingUsecase) PrepareDebit(
	ctx context.Context,
	tokenRefID string,
	amount decimal.Decimal,
	currency string,
	source domain.BankAccount,
	existing *domain.Quote,
) (domain.Quote, error) {
	uc.mu.Lock()
	if quote, ok := uc.references[tokenRefID]; ok {
		uc.mu.Unlock()
		return quote, nil
	}
	uc.mu.Unlock()

	balance, err := uc.accounting.LookupBalance(ctx, source)
	if err != nil {
		return domain.Quote{}, err
	}
	if balance.Available.LessThan(amount) {
		return domain.Quote{}, fmt.Errorf("account %s: %w", source, domain.ErrInsufficientFunds)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	// The balance lookup ran outside the lock; a concurrent delivery of the
	// same reference id may have minted the quote in the meantime.
	if quote, ok := uc.references[tokenRefID]; ok {
		return quote, nil
	}

	var quote domain.Quote
	if existing != nil {
		quote, err = uc.lookupQuote(existing.ID)
	} else {
		quote, err = uc.newQuote(balance.Currency, currency, uc.fees.DebitFee)
	}
	if err != nil {
		return domain.Quote{}, err
	}

	uc.references[tokenRefID] = quote
	return quote, nil
}

// PrepareCredit prices the beneficiary side. Beneficiary-side FX is not
// supported: the destination account must exist and carry the instructed
// currency. Idempotent by token reference id like PrepareDebit.
func (uc *PricingUsecase) PrepareCredit(
	ctx context.Context,
	tokenRefID string,
	amount decimal.Decimal,
	currency string,
	destination domain.BankAccount,
	existing *domain.Quote,
) (domain.Quote, error) {
	uc.mu.Lock()
	if quote, ok := uc.references[tokenRefID]; ok {
		uc.mu.Unlock()
		return quote, nil
	}
	uc.mu.Unlock()

	balance, err := uc.accounting.LookupBalance(ctx, destination)
	if err != nil {
		return domain.Quote{}, err
	}
	if balance.Currency != currency {
		return domain.Quote{}, fmt.Errorf("credit side FX is not supported: %w", domain.ErrInvalidCurrency)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if quote, ok := uc.references[tokenRefID]; ok {
		return quote, nil
	}

	var quote domain.Quote
	if existing != nil {
		quote, err = uc.lookupQuote(existing.ID)
	} else {
		quote, err = uc.newQuote(currency, balance.Currency, uc.fees.CreditFee)
	}
	if err != nil {
		return domain.Quote{}, err
	}

	uc.references[tokenRefID] = quote
	return quote, nil
}

// ===============================
// INTERNAL
// ===============================

// newQuote builds, stores and returns a quote. Callers hold the mutex.
func (uc *PricingUsecase) newQuote(baseCurrency, quoteCurrency string, fee decimal.Decimal) (domain.Quote, error) {
	quote := domain.Quote{
		ID:            uuid.NewString(),
		BaseCurrency:  baseCurrency,
		QuoteCurrency: quoteCurrency,
		TotalFees:     decimal.Zero,
		ExpiresAt:     uc.now().Add(QuoteTTL),
	}

	if baseCurrency != quoteCurrency {
		rate, ok := uc.findRate(baseCurrency, quoteCurrency)
		if !ok {
			return domain.Quote{}, fmt.Errorf("fx rate not found %s -> %s: %w",
				baseCurrency, quoteCurrency, domain.ErrInvalidCurrency)
		}
		quote.Rate = rate
	}

	if fee.IsPositive() {
		quote.Fees = []domain.Fee{{Description: "Transaction fee", Amount: fee}}
		quote.TotalFees = fee
	}

	uc.quotes[quote.ID] = quote
	return quote, nil
}

func (uc *PricingUsecase) lookupQuote(id string) (domain.Quote, error) {
	quote, ok := uc.quotes[id]
	if !ok {
		return domain.Quote{}, fmt.Errorf("price quote not found: %s: %w", id, domain.ErrInvalidQuote)
	}
	if quote.Expired(uc.now()) {
		return domain.Quote{}, fmt.Errorf("price quote expired: %s: %w", id, domain.ErrInvalidQuote)
	}
	return quote, nil
}

func (uc *PricingUsecase) findRate(base, quote string) (decimal.Decimal, bool) {
	for _, rate := range uc.rates {
		if rate.BaseCurrency == base && rate.QuoteCurrency == quote {
			return rate.Rate, true
		}
	}
	return decimal.Decimal{}, false
}
