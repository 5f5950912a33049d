package services

import (
	"testing"

	"github.com/askmiles/miles-server/internal/models"
)

func TestResolveCardExact(t *testing.T) {
	svc := newDefaultTestDataService(t)

	card := svc.ResolveCard("Chase Sapphire Preferred")
	if card == nil {
		t.Fatal("expected exact match, got nil")
	}
	if card.CardName != "Chase Sapphire Preferred" {
		t.Errorf("resolved %q, want Chase Sapphire Preferred", card.CardName)
	}
}

func TestResolveCardCaseInsensitive(t *testing.T) {
	svc := newDefaultTestDataService(t)

	card := svc.ResolveCard("chase sapphire preferred")
	if card == nil || card.CardName != "Chase Sapphire Preferred" {
		t.Fatalf("case-insensitive exact match failed: %+v", card)
	}
}

func TestResolveCardFuzzy(t *testing.T) {
	svc := newDefaultTestDataService(t)

	tests := []struct {
		query string
		want  string
	}{
		{"Amex Platinum", "The Platinum Card from American Express"},
		{"Sapphire Preferred", "Chase Sapphire Preferred"},
		{"Venture X", "Capital One Venture X"},
	}
	for _, tt := range tests {
		card := svc.ResolveCard(tt.query)
		if card == nil {
			t.Errorf("ResolveCard(%q) = nil, want %q", tt.query, tt.want)
			continue
		}
		if card.CardName != tt.want {
			t.Errorf("ResolveCard(%q) = %q, want %q", tt.query, card.CardName, tt.want)
		}
	}
}

func TestResolveCardNoMatch(t *testing.T) {
	svc := newDefaultTestDataService(t)

	if card := svc.ResolveCard("ZZZZZ QQQQQ XXXXX"); card != nil {
		t.Errorf("expected nil for gibberish, got %q", card.CardName)
	}
}

func TestResolveCardEmptyQuery(t *testing.T) {
	svc := newDefaultTestDataService(t)

	if card := svc.ResolveCard(""); card != nil {
		t.Errorf("expected nil for empty query, got %q", card.CardName)
	}
	if card := svc.ResolveCard("   "); card != nil {
		t.Errorf("expected nil for whitespace query, got %q", card.CardName)
	}
}

func TestResolveCardEmptyCatalog(t *testing.T) {
	svc := newTestDataService(t, []models.CreditCard{}, "", models.ValuationsFile{})

	if card := svc.ResolveCard("Amex Platinum"); card != nil {
		t.Errorf("expected nil with empty catalog, got %q", card.CardName)
	}
}

func TestResolveCardCached(t *testing.T) {
	svc := newDefaultTestDataService(t)

	first := svc.ResolveCard("Amex Platinum")
	second := svc.ResolveCard("Amex Platinum")
	if first == nil || second == nil {
		t.Fatal("expected repeated fuzzy resolution to succeed")
	}
	if first.CardName != second.CardName {
		t.Errorf("cache returned a different card: %q vs %q", first.CardName, second.CardName)
	}
}
