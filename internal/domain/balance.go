package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is a point-in-time balance snapshot for an account. Available
// reflects in-flight holds; Current only moves when a posting commits.
type Balance struct {
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
	Current   decimal.Decimal `json:"current"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewBalance seeds available and current with the same opening amount.
func NewBalance(currency string, opening decimal.Decimal) Balance {
	return Balance{
		Currency:  currency,
		Available: opening,
		Current:   opening,
		UpdatedAt: time.Now(),
	}
}

// Scaled floors both figures to two decimal places for reporting.
func (b Balance) Scaled() Balance {
	b.Available = b.Available.RoundFloor(2)
	b.Current = b.Current.RoundFloor(2)
	return b
}
