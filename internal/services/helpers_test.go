package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/askmiles/miles-server/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

// testCatalog is a small but realistic slice of the card dataset used across
// the service tests.
func testCatalog() []models.CreditCard {
	return []models.CreditCard{
		{
			CardName:               "The Platinum Card from American Express",
			Issuer:                 "American Express",
			CardType:               "personal",
			RewardsCurrency:        "Membership Rewards",
			AnnualFee:              695,
			SignUpBonus:            "80,000 points after $8,000 spend in 6 months",
			FirstYearValueEstimate: floatPtr(1400),
			LastUpdated:            "01/15/25",
			RewardMultipliers: []models.RewardMultiplier{
				{Category: "Flights booked direct", Multiplier: 5},
			},
			Benefits: models.Benefits{
				Credits: []models.CreditBenefit{
					{Type: "Airline fee credit", Value: 200},
					{Type: "Uber Cash", Value: 200},
				},
				Lounge: []models.LoungeBenefit{
					{Type: "Centurion Lounge"},
					{Type: "Priority Pass Select"},
				},
				Status: models.EliteStatus{
					Hotel: []models.StatusEntry{
						{Program: "Marriott Bonvoy", Tier: "Gold Elite"},
						{Program: "Hilton Honors", Tier: "Gold"},
					},
					RentalCar: []models.StatusEntry{
						{Program: "Hertz", Tier: "Presidents Circle"},
					},
				},
			},
		},
		{
			CardName:               "Chase Sapphire Preferred",
			Issuer:                 "Chase",
			CardType:               "personal",
			RewardsCurrency:        "Ultimate Rewards",
			AnnualFee:              95,
			SignUpBonus:            "60,000 points after $4,000 spend in 3 months",
			FirstYearValueEstimate: floatPtr(900),
			LastUpdated:            "03/02/25",
			RewardMultipliers: []models.RewardMultiplier{
				{Category: "Dining", Multiplier: 3},
				{Category: "Travel", Multiplier: 2},
			},
			Benefits: models.Benefits{
				Credits: []models.CreditBenefit{
					{Type: "Hotel credit", Value: 50},
				},
				Protections: models.Protections{
					Travel: []models.Protection{
						{Type: "Trip delay insurance", Description: "Up to $500 per ticket"},
					},
				},
			},
		},
		{
			CardName:               "Capital One Venture X",
			Issuer:                 "Capital One",
			CardType:               "personal",
			RewardsCurrency:        "Capital One Miles",
			AnnualFee:              395,
			FirstYearValueEstimate: floatPtr(1100),
			LastUpdated:            "11/20/24",
			Benefits: models.Benefits{
				Credits: []models.CreditBenefit{
					{Type: "Travel credit", Value: 300},
				},
				Lounge: []models.LoungeBenefit{
					{Type: "Capital One Lounge"},
				},
				Status: models.EliteStatus{
					Other: []models.StatusEntry{
						{Program: "Hertz", Tier: "Five Star", Description: "Hertz Five Star status"},
					},
				},
			},
		},
		{
			CardName:        "Chase Ink Business Preferred",
			Issuer:          "Chase",
			CardType:        "business",
			RewardsCurrency: "Ultimate Rewards",
			AnnualFee:       95,
			SignUpBonus:     "90,000 points after $8,000 spend in 3 months",
			// No value estimate: must be skipped by top offers.
		},
	}
}

const testPartnersJSON = `{
  "American Express Membership Rewards": [
    {"Loyalty Program": "Avianca LifeMiles", "Ratio": 1.0, "Best": false, "Notes": "Instant", "Bonus": null},
    {"Loyalty Program": "Air Canada Aeroplan", "Ratio": 1.0, "Best": true, "Notes": "Instant", "Bonus": 1.25, "bonus_expiration": "2025-10-01"},
    {"Loyalty Program": "Hilton Honors", "Ratio": 2.0, "Best": false, "Notes": "Instant", "Bonus": "Varies"}
  ],
  "Chase Ultimate Rewards": [
    {"Loyalty Program": "World of Hyatt", "Ratio": 1.0, "Best": true, "Notes": "Instant", "Bonus": "None"},
    {"Loyalty Program": "Air Canada Aeroplan", "Ratio": 1.0, "Best": false, "Notes": "Instant", "Bonus": null},
    {"Loyalty Program": "Virgin Atlantic Flying Club", "Ratio": 1.0, "Best": false, "Notes": "Instant", "Bonus": 1.0}
  ],
  "Capital One Miles": [
    {"Loyalty Program": "Air Canada Aeroplan", "Ratio": 1.0, "Best": true, "Notes": "Instant", "Bonus": 1.1}
  ]
}`

func testValuations() models.ValuationsFile {
	return models.ValuationsFile{
		Version: "1.0",
		Unit:    "cents_per_point",
		Valuations: map[string]models.ValuationEntry{
			"air_canada_aeroplan": {Value: 1.2, DisplayName: "Air Canada Aeroplan", Category: "airline"},
			"world_of_hyatt":      {Value: 1.7, DisplayName: "World of Hyatt", Category: "hotel"},
			"avianca_lifemiles":   {Value: 1.1, DisplayName: "Avianca LifeMiles", Category: "airline"},
			"hilton_honors":       {Value: 0.5, DisplayName: "Hilton Honors", Category: "hotel"},
		},
	}
}

// newTestDataService writes the fixture datasets into a temp directory and
// loads a CardDataService from it at the default fuzzy threshold.
func newTestDataService(t *testing.T, cards []models.CreditCard, partnersJSON string, valuations models.ValuationsFile) *CardDataService {
	t.Helper()

	dir := t.TempDir()
	writeTestJSON(t, dir, "credit_cards.json", cards)
	if partnersJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, "transfer_partners.json"), []byte(partnersJSON), 0o644); err != nil {
			t.Fatalf("failed to write partners fixture: %v", err)
		}
	}
	writeTestJSON(t, dir, "valuations.json", valuations)

	svc, err := NewCardDataService(dir, 85)
	if err != nil {
		t.Fatalf("failed to load test data: %v", err)
	}
	return svc
}

func newDefaultTestDataService(t *testing.T) *CardDataService {
	t.Helper()
	return newTestDataService(t, testCatalog(), testPartnersJSON, testValuations())
}

func writeTestJSON(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}
