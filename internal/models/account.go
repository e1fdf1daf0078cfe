package models

import "github.com/shopspring/decimal"

// Account represents a wallet, bank or card balance holder.
//
// Balance is a cache of the signed sum of the account's transactions. It is
// rewritten by the ledger whenever the transaction set changes and is never
// edited directly.
type Account struct {
	Base
	Name    string          `gorm:"not null;index" json:"name"`
	Icon    IconTag         `json:"icon,omitempty"`
	Color   string          `json:"color,omitempty"`
	Balance decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"balance"`
}
