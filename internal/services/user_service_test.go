package services

import (
	"errors"
	"testing"

	"github.com/askmiles/miles-server/internal/models"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestDB(t), newDefaultTestDataService(t))
}

func TestAddCardToWalletResolvesName(t *testing.T) {
	svc := newTestUserService(t)

	card, err := svc.AddCardToWallet("Amex Platinum", "my daily driver")
	if err != nil {
		t.Fatalf("AddCardToWallet failed: %v", err)
	}
	if card.CardName != "The Platinum Card from American Express" {
		t.Errorf("stored %q, want the canonical name", card.CardName)
	}

	wallet, err := svc.Wallet()
	if err != nil {
		t.Fatalf("Wallet failed: %v", err)
	}
	if len(wallet) != 1 {
		t.Fatalf("expected 1 wallet entry, got %d", len(wallet))
	}
	if wallet[0].CardName != "The Platinum Card from American Express" {
		t.Errorf("wallet holds %q, want the canonical name", wallet[0].CardName)
	}
	if wallet[0].Note != "my daily driver" {
		t.Errorf("note = %q", wallet[0].Note)
	}
}

func TestAddCardToWalletUnknownCard(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.AddCardToWallet("ZZZZZ QQQQQ XXXXX", "")
	if !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}

func TestAddCardToWalletDuplicateUpdatesNote(t *testing.T) {
	svc := newTestUserService(t)

	if _, err := svc.AddCardToWallet("Chase Sapphire Preferred", "first"); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if _, err := svc.AddCardToWallet("sapphire preferred", "second"); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	wallet, _ := svc.Wallet()
	if len(wallet) != 1 {
		t.Fatalf("expected 1 entry after duplicate add, got %d", len(wallet))
	}
	if wallet[0].Note != "second" {
		t.Errorf("note = %q, want the updated note", wallet[0].Note)
	}
}

func TestRemoveCardFromWallet(t *testing.T) {
	svc := newTestUserService(t)

	if _, err := svc.AddCardToWallet("Capital One Venture X", ""); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	removed, err := svc.RemoveCardFromWallet("capital one venture x")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if !removed {
		t.Error("expected case-insensitive removal to succeed")
	}

	removed, err = svc.RemoveCardFromWallet("Capital One Venture X")
	if err != nil {
		t.Fatalf("second remove failed: %v", err)
	}
	if removed {
		t.Error("removing an absent card must report false")
	}
}

func TestEnrichedWallet(t *testing.T) {
	svc := newTestUserService(t)

	if _, err := svc.AddCardToWallet("Chase Sapphire Preferred", "keep"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	enriched, err := svc.EnrichedWallet()
	if err != nil {
		t.Fatalf("EnrichedWallet failed: %v", err)
	}
	if len(enriched) != 1 {
		t.Fatalf("expected 1 enriched entry, got %d", len(enriched))
	}
	if enriched[0].Issuer != "Chase" {
		t.Errorf("enriched entry missing catalog fields: %+v", enriched[0])
	}
	if enriched[0].UserNote != "keep" {
		t.Errorf("user note = %q", enriched[0].UserNote)
	}
}

func TestEnrichedWalletDropsUnresolvedCards(t *testing.T) {
	data := newDefaultTestDataService(t)
	svc := NewUserService(newTestDB(t), data)

	if _, err := svc.AddCardToWallet("Capital One Venture X", "keep me"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Shrink the catalog so the stored card no longer resolves.
	writeTestJSON(t, data.dataDir, "credit_cards.json", []models.CreditCard{
		{CardName: "Chase Sapphire Preferred", Issuer: "Chase"},
	})
	if err := data.Reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	enriched, err := svc.EnrichedWallet()
	if err != nil {
		t.Fatalf("EnrichedWallet failed: %v", err)
	}
	if len(enriched) != 0 {
		t.Errorf("expected the unresolved card to be dropped from the view, got %d entries", len(enriched))
	}

	// The entry survives in storage for a later catalog refresh.
	wallet, err := svc.Wallet()
	if err != nil {
		t.Fatalf("Wallet failed: %v", err)
	}
	if len(wallet) != 1 || wallet[0].CardName != "Capital One Venture X" {
		t.Errorf("expected the stored entry to survive, got %+v", wallet)
	}
}

func TestMergedValuationsOverridesWin(t *testing.T) {
	svc := newTestUserService(t)

	merged := svc.MergedValuations()
	if merged["world_of_hyatt"] != 1.7 {
		t.Errorf("default hyatt = %v, want 1.7", merged["world_of_hyatt"])
	}

	if _, err := svc.SetCustomValuation("World of Hyatt", 2.3); err != nil {
		t.Fatalf("SetCustomValuation failed: %v", err)
	}

	merged = svc.MergedValuations()
	if merged["world_of_hyatt"] != 2.3 {
		t.Errorf("override hyatt = %v, want 2.3", merged["world_of_hyatt"])
	}
	// Untouched defaults survive the merge.
	if merged["hilton_honors"] != 0.5 {
		t.Errorf("hilton = %v, want 0.5", merged["hilton_honors"])
	}
}

func TestSetCustomValuationNormalizesKey(t *testing.T) {
	svc := newTestUserService(t)

	key, err := svc.SetCustomValuation("Air-Canada Aeroplan", 1.5)
	if err != nil {
		t.Fatalf("SetCustomValuation failed: %v", err)
	}
	if key != "air_canada_aeroplan" {
		t.Errorf("key = %q, want air_canada_aeroplan", key)
	}
}

func TestFilteredValuations(t *testing.T) {
	svc := newTestUserService(t)

	// Match by display name and by key; unknown programs are absent.
	filtered := svc.FilteredValuations([]string{"World of Hyatt", "hilton_honors", "Klingon Miles"})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 filtered valuations, got %d: %v", len(filtered), filtered)
	}
	if filtered["world_of_hyatt"] != 1.7 {
		t.Errorf("hyatt = %v", filtered["world_of_hyatt"])
	}
	if filtered["hilton_honors"] != 0.5 {
		t.Errorf("hilton = %v", filtered["hilton_honors"])
	}
}

func TestMerchantCredits(t *testing.T) {
	svc := newTestUserService(t)

	if err := svc.AddMerchantCredit("Uber"); err != nil {
		t.Fatalf("AddMerchantCredit failed: %v", err)
	}
	if err := svc.AddMerchantCredit("Saks"); err != nil {
		t.Fatalf("AddMerchantCredit failed: %v", err)
	}

	credits, err := svc.Credits()
	if err != nil {
		t.Fatalf("Credits failed: %v", err)
	}
	if len(credits) != 2 {
		t.Fatalf("expected 2 credits, got %d", len(credits))
	}
	if credits["Uber"].AddedAt == "" {
		t.Error("expected an added_at timestamp")
	}

	removed, err := svc.RemoveMerchantCredit("Uber")
	if err != nil || !removed {
		t.Fatalf("RemoveMerchantCredit = %v, %v", removed, err)
	}
	removed, _ = svc.RemoveMerchantCredit("Uber")
	if removed {
		t.Error("second removal must report false")
	}
}

func TestUserData(t *testing.T) {
	svc := newTestUserService(t)

	if _, err := svc.AddCardToWallet("Amex Platinum", ""); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.AddMerchantCredit("Uber"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	data, err := svc.UserData()
	if err != nil {
		t.Fatalf("UserData failed: %v", err)
	}
	if len(data.Wallet) != 1 {
		t.Errorf("wallet size = %d, want 1", len(data.Wallet))
	}
	if data.Valuations.Unit != "cents_per_point" {
		t.Errorf("unit = %q", data.Valuations.Unit)
	}
	if len(data.Valuations.Valuations) == 0 {
		t.Error("expected merged valuations in the payload")
	}
	if _, ok := data.Credits.Credits["Uber"]; !ok {
		t.Error("expected the Uber credit in the payload")
	}
}
