package domain

import (
	"fmt"
	"time"
)

// AccountKind tags the special-purpose accounts that intermediate postings
// are routed through. One account per kind per currency.
type AccountKind string

const (
	KindCustomer   AccountKind = "customer"
	KindHold       AccountKind = "hold"
	KindSettlement AccountKind = "settlement"
	KindFx         AccountKind = "fx"
	KindReject     AccountKind = "reject"
)

// SchemeSwift is the only account numbering scheme the engine supports.
const SchemeSwift = "swift"

// BankAccount is the wire identity of an account: routing code (BIC) plus
// account number.
type BankAccount struct {
	Scheme string `json:"scheme,omitempty"`
	BIC    string `json:"bic"`
	Number string `json:"number"`
}

// SwiftAccount builds a BankAccount in the swift scheme.
func SwiftAccount(bic, number string) BankAccount {
	return BankAccount{Scheme: SchemeSwift, BIC: bic, Number: number}
}

// Matches reports whether two identities address the same account. The
// scheme is not compared; an empty scheme defaults to swift.
func (a BankAccount) Matches(other BankAccount) bool {
	return a.BIC == other.BIC && a.Number == other.Number
}

// Supported reports whether the identity uses a scheme the engine knows.
func (a BankAccount) Supported() bool {
	return a.Scheme == "" || a.Scheme == SchemeSwift
}

func (a BankAccount) String() string {
	return fmt.Sprintf("%s:%s", a.BIC, a.Number)
}

// Address is the postal address attached to an account.
type Address struct {
	House    string `json:"house,omitempty"`
	Street   string `json:"street,omitempty"`
	City     string `json:"city,omitempty"`
	PostCode string `json:"post_code,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Account describes a configured bank account. Descriptors are immutable
// after load; live balances are mutated only through the ledger.
type Account struct {
	Name           string      `json:"name"`
	Address        Address     `json:"address"`
	BankAccount    BankAccount `json:"bank_account"`
	Currency       string      `json:"currency"`
	Kind           AccountKind `json:"kind"`
	OpeningBalance Balance     `json:"opening_balance"`
	CreatedAt      time.Time   `json:"-"`
}
