package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/askmiles/miles-server/internal/models"
)

const maxSearchResults = 50

// SearchCards ranks catalog entries against a free-text query. Each card
// accumulates points across fields (name, issuer, currency, categories,
// credits, lounge, card type); only cards with a positive score are kept,
// sorted by score with catalog order breaking ties. recentlyUpdatedDays of 0
// disables the recency filter.
func (s *CardDataService) SearchCards(query string, maxResults, recentlyUpdatedDays int) ([]models.CardSearchMatch, error) {
	if maxResults < 1 {
		return nil, fmt.Errorf("max_results must be a positive integer")
	}
	if maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}
	if recentlyUpdatedDays < 0 {
		return nil, fmt.Errorf("recently_updated must be a positive integer")
	}

	s.mu.RLock()
	cards := s.cards
	s.mu.RUnlock()

	if recentlyUpdatedDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -recentlyUpdatedDays)
		filtered := make([]models.CreditCard, 0, len(cards))
		for _, card := range cards {
			if card.LastUpdated == "" {
				continue
			}
			updated, err := time.Parse("01/02/06", card.LastUpdated)
			if err != nil {
				// Unparsable dates are excluded, never included.
				continue
			}
			if !updated.Before(cutoff) {
				filtered = append(filtered, card)
			}
		}
		cards = filtered
	}

	matches := make([]models.CardSearchMatch, 0)
	for _, card := range cards {
		score := 0
		var reasons []string

		if card.CardName != "" && containsFold(card.CardName, query) {
			score += 10
			reasons = append(reasons, "Card name match")
		}
		if card.Issuer != "" && containsFold(card.Issuer, query) {
			score += 5
			reasons = append(reasons, "Issuer match")
		}
		if card.RewardsCurrency != "" && containsFold(card.RewardsCurrency, query) {
			score += 3
			reasons = append(reasons, "Rewards currency match")
		}
		for _, mult := range card.RewardMultipliers {
			if mult.Category != "" && containsFold(mult.Category, query) {
				score += 2
				reasons = append(reasons, "Category: "+mult.Category)
			}
		}
		for _, credit := range card.Benefits.Credits {
			if credit.Type != "" && containsFold(credit.Type, query) {
				score += 2
				reasons = append(reasons, "Credit: "+credit.Type)
			}
		}
		for _, lounge := range card.Benefits.Lounge {
			if lounge.Type != "" && containsFold(lounge.Type, query) {
				score += 2
				reasons = append(reasons, "Lounge: "+lounge.Type)
			}
		}
		if card.CardType != "" && containsFold(card.CardType, query) {
			score += 3
			reasons = append(reasons, "Card type match")
		}

		if score > 0 {
			if len(reasons) > 3 {
				reasons = reasons[:3]
			}
			matches = append(matches, models.CardSearchMatch{
				CardName:        card.CardName,
				Issuer:          card.Issuer,
				RewardsCurrency: card.RewardsCurrency,
				AnnualFee:       card.AnnualFee,
				CardType:        card.CardType,
				Score:           score,
				MatchReasons:    reasons,
			})
		}
	}

	// Stable: ties keep relative catalog order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	return matches, nil
}

// TopOffers returns the top n cards by first year value estimate, optionally
// filtered to business or personal cards. Cards without a value estimate are
// skipped.
func (s *CardDataService) TopOffers(n int, cardType string) ([]models.CardOffer, error) {
	if n < 1 {
		return nil, fmt.Errorf("n must be a positive integer")
	}
	if n > maxSearchResults {
		n = maxSearchResults
	}
	if cardType != "business" && cardType != "personal" && cardType != "all" {
		return nil, fmt.Errorf("card_type must be 'business', 'personal', or 'all'")
	}

	s.mu.RLock()
	cards := s.cards
	s.mu.RUnlock()

	offers := make([]models.CardOffer, 0)
	for _, card := range cards {
		if cardType != "all" && !strings.EqualFold(card.CardType, cardType) {
			continue
		}
		if card.FirstYearValueEstimate == nil {
			continue
		}

		offers = append(offers, models.CardOffer{
			CardName:               card.CardName,
			Issuer:                 card.Issuer,
			FirstYearValueEstimate: *card.FirstYearValueEstimate,
			SignUpBonus:            card.SignUpBonus,
			AnnualFee:              card.AnnualFee,
			ApplicationLink:        card.ApplicationLink,
			RewardsCurrencyType:    card.RewardsCurrency,
			Benefits:               card.Benefits,
			FMMiniReview:           card.FMMiniReview,
		})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].FirstYearValueEstimate > offers[j].FirstYearValueEstimate
	})

	if len(offers) > n {
		offers = offers[:n]
	}

	return offers, nil
}
