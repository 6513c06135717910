package domain

import "github.com/shopspring/decimal"

// TransferInstruction is an incoming instant-transfer request, one leg at a
// time. The RPC layer hands this in already parsed; amounts arrive as
// decimal strings and are converted at that boundary.
type TransferInstruction struct {
	TransferID         string
	Account            BankAccount
	Counterparty       BankAccount
	Amount             decimal.Decimal
	Currency           string
	SettlementAmount   decimal.Decimal
	SettlementCurrency string
	Quote              *Quote // required when Currency differs from the account currency
	Description        string
}

// Validate checks the instruction before any account resolution happens.
func (i *TransferInstruction) Validate() error {
	if !i.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !i.Account.Supported() || !i.Counterparty.Supported() {
		return ErrUnsupportedAccountType
	}
	return nil
}

// SettlementLeg returns the amount and currency the transfer settles in,
// falling back to the instructed amount when no FX applies.
func (i *TransferInstruction) SettlementLeg() (decimal.Decimal, string) {
	if i.SettlementCurrency == "" || i.SettlementCurrency == i.Currency {
		return i.Amount, i.Currency
	}
	return i.SettlementAmount, i.SettlementCurrency
}

// TransactionHandle is returned from a begin call and referenced by the
// later commit or rollback.
type TransactionHandle struct {
	ID                string
	TransferID        string
	Status            PostingStatus
	Amount            decimal.Decimal
	Currency          string
	SettlementAccount BankAccount
}
