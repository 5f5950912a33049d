package models

import (
	"time"
)

// WalletCard is one card in the user's wallet. CardName always holds the
// canonical catalog name; the note is free text.
type WalletCard struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	CardName  string    `json:"card_name" gorm:"uniqueIndex;not null"`
	Note      string    `json:"note"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"-"`
}

// CustomValuation is a user override for a program valuation, keyed by the
// normalized program key. Overrides win over the default dataset.
type CustomValuation struct {
	ProgramKey string    `json:"program_key" gorm:"primaryKey"`
	Value      float64   `json:"value"`
	UpdatedAt  time.Time `json:"-"`
}

// MerchantCredit records a merchant credit or gift card the user holds.
type MerchantCredit struct {
	Merchant string    `json:"-" gorm:"primaryKey"`
	AddedAt  time.Time `json:"added_at"`
}

// EnrichedWalletCard is a wallet entry joined against the catalog.
type EnrichedWalletCard struct {
	CreditCard
	UserNote string `json:"user_note,omitempty"`
}

type MerchantCreditInfo struct {
	AddedAt string `json:"added_at"`
}

// UserDataResponse bundles everything the user owns: the enriched wallet,
// merged valuations, and merchant credits.
type UserDataResponse struct {
	Wallet     []EnrichedWalletCard `json:"wallet"`
	Valuations ValuationListing     `json:"valuations"`
	Credits    CreditListing        `json:"credits"`
}

type CreditListing struct {
	LastUpdatedUTC string                        `json:"last_updated_utc"`
	Credits        map[string]MerchantCreditInfo `json:"credits"`
}

// AddWalletCardRequest is the payload for adding a card to the wallet. The
// name may be loose; it is resolved to a canonical catalog entry first.
type AddWalletCardRequest struct {
	CardName string `json:"card_name" binding:"required"`
	Note     string `json:"note"`
}

type SetValuationRequest struct {
	Currency string  `json:"currency" binding:"required"`
	Value    float64 `json:"value"`
}

type AddCreditRequest struct {
	Merchant string `json:"merchant" binding:"required"`
}
