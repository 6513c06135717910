package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fee is a single fee line on a quote.
type Fee struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// FXRate is one configured entry of the conversion table.
type FXRate struct {
	BaseCurrency  string          `json:"base_currency"`
	QuoteCurrency string          `json:"quote_currency"`
	Rate          decimal.Decimal `json:"rate"`
}

// Quote is a priced FX/fee offer. Quotes are looked up by id and redeemed
// at most once; redemption must present the exact quote that was issued.
type Quote struct {
	ID            string          `json:"id"`
	BaseCurrency  string          `json:"base_currency"`
	QuoteCurrency string          `json:"quote_currency"`
	Rate          decimal.Decimal `json:"rate"` // zero when no conversion applies
	Fees          []Fee           `json:"fees,omitempty"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

// Expired reports whether the quote is past its expiry.
func (q Quote) Expired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// Equal compares every field of two quotes. Used at redemption to defend
// against stale or forged client-supplied quotes.
func (q Quote) Equal(other Quote) bool {
	if q.ID != other.ID ||
		q.BaseCurrency != other.BaseCurrency ||
		q.QuoteCurrency != other.QuoteCurrency ||
		!q.Rate.Equal(other.Rate) ||
		!q.TotalFees.Equal(other.TotalFees) ||
		!q.ExpiresAt.Equal(other.ExpiresAt) ||
		len(q.Fees) != len(other.Fees) {
		return false
	}
	for i := range q.Fees {
		if q.Fees[i].Description != other.Fees[i].Description ||
			!q.Fees[i].Amount.Equal(other.Fees[i].Amount) {
			return false
		}
	}
	return true
}

// Convert applies the quote rate to a source-currency amount.
func (q Quote) Convert(amount decimal.Decimal) decimal.Decimal {
	if q.Rate.IsZero() {
		return amount
	}
	return amount.Mul(q.Rate).Round(2)
}
