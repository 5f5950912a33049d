package models

// CreditCard is one entry in the card catalog dataset. The catalog JSON is a
// top-level array of these objects. Missing fields unmarshal to zero values,
// which the query layer treats as "absent", never as a match.
type CreditCard struct {
	CardName               string             `json:"card_name"`
	Issuer                 string             `json:"issuer"`
	CardType               string             `json:"card_type"` // "personal" or "business"
	RewardsCurrency        string             `json:"rewards_currency"`
	AnnualFee              float64            `json:"annual_fee"`
	ForeignTransactionFee  float64            `json:"foreign_transaction_fee"`
	RewardMultipliers      []RewardMultiplier `json:"reward_multipliers,omitempty"`
	Benefits               Benefits           `json:"benefits"`
	SignUpBonus            string             `json:"sign_up_bonus,omitempty"`
	FirstYearValueEstimate *float64           `json:"first_year_value_estimate,omitempty"`
	ApplicationLink        string             `json:"application_link,omitempty"`
	FMMiniReview           string             `json:"fm_mini_review,omitempty"`
	LastUpdated            string             `json:"last_updated,omitempty"` // MM/DD/YY
	LastUpdatedUTC         string             `json:"last_updated_utc,omitempty"`
}

type RewardMultiplier struct {
	Category   string  `json:"category"`
	Multiplier float64 `json:"multiplier"`
	Notes      string  `json:"notes,omitempty"`
}

type Benefits struct {
	Credits     []CreditBenefit `json:"credits,omitempty"`
	Lounge      []LoungeBenefit `json:"lounge,omitempty"`
	Other       []string        `json:"other,omitempty"`
	Protections Protections     `json:"protections"`
	Status      EliteStatus     `json:"status"`
}

type CreditBenefit struct {
	Type  string  `json:"type"`
	Value float64 `json:"value,omitempty"`
	Notes string  `json:"notes,omitempty"`
}

type LoungeBenefit struct {
	Type  string `json:"type"`
	Notes string `json:"notes,omitempty"`
}

type Protections struct {
	Purchase  []Protection `json:"purchase_protections,omitempty"`
	Travel    []Protection `json:"travel_protections,omitempty"`
	Insurance []Protection `json:"insurance_protections,omitempty"`
}

type Protection struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// EliteStatus groups loyalty-tier benefits by category. A category with no
// entries means the card offers no status of that kind.
type EliteStatus struct {
	Hotel     []StatusEntry `json:"hotel_elite_status,omitempty"`
	Airline   []StatusEntry `json:"airline_elite_status,omitempty"`
	RentalCar []StatusEntry `json:"rental_car_elite_status,omitempty"`
	Other     []StatusEntry `json:"other_elite_status,omitempty"`
}

type StatusEntry struct {
	Program     string `json:"program"`
	Tier        string `json:"tier,omitempty"`
	Description string `json:"description,omitempty"`
}

// CardSearchMatch is one ranked result from the catalog keyword search.
type CardSearchMatch struct {
	CardName        string   `json:"card_name"`
	Issuer          string   `json:"issuer"`
	RewardsCurrency string   `json:"rewards_currency"`
	AnnualFee       float64  `json:"annual_fee"`
	CardType        string   `json:"card_type"`
	Score           int      `json:"score"`
	MatchReasons    []string `json:"match_reasons"`
}

type CardSearchResult struct {
	SearchResults []CardSearchMatch `json:"search_results"`
	TotalResults  int               `json:"total_results"`
	Query         string            `json:"query"`
}

// CardOffer is one entry in the top-offers ranking, ordered by first year
// value estimate.
type CardOffer struct {
	CardName               string   `json:"card_name"`
	Issuer                 string   `json:"issuer"`
	FirstYearValueEstimate float64  `json:"first_year_value_estimate"`
	SignUpBonus            string   `json:"sign_up_bonus"`
	AnnualFee              float64  `json:"annual_fee"`
	ApplicationLink        string   `json:"application_link"`
	RewardsCurrencyType    string   `json:"rewards_currency_type"`
	Benefits               Benefits `json:"benefits"`
	FMMiniReview           string   `json:"fm_mini_review,omitempty"`
}

// BenefitMatch is one card returned by the benefits search.
type BenefitMatch struct {
	CardName              string   `json:"card_name"`
	Issuer                string   `json:"issuer"`
	RewardsCurrency       string   `json:"rewards_currency"`
	AnnualFee             float64  `json:"annual_fee"`
	ForeignTransactionFee float64  `json:"foreign_transaction_fee"`
	FMMiniReview          string   `json:"fm_mini_review,omitempty"`
	Benefits              Benefits `json:"benefits"`
	CardType              string   `json:"card_type"`
	LastUpdatedUTC        string   `json:"last_updated_utc,omitempty"`
}

type BenefitSearchResult struct {
	Matches        []BenefitMatch `json:"matches"`
	Query          string         `json:"query"`
	TotalMatches   int            `json:"total_matches"`
	LastUpdatedUTC string         `json:"last_updated_utc"`
}
