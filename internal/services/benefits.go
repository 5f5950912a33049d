package services

import (
	"strings"

	"github.com/askmiles/miles-server/internal/models"
)

// statusCategoryKeywords maps query words to elite-status categories.
var statusCategoryKeywords = map[string]string{
	"hotel":   "hotel",
	"airline": "airline",
	"rental":  "rental_car",
	"car":     "rental_car",
}

// SearchBenefits returns every card whose benefit structure satisfies the
// free-text query.
func (s *CardDataService) SearchBenefits(query string) []models.BenefitMatch {
	s.mu.RLock()
	cards := s.cards
	s.mu.RUnlock()

	matches := make([]models.BenefitMatch, 0)
	for _, card := range cards {
		if !cardMatchesBenefit(&card, query) {
			continue
		}
		matches = append(matches, models.BenefitMatch{
			CardName:              card.CardName,
			Issuer:                card.Issuer,
			RewardsCurrency:       card.RewardsCurrency,
			AnnualFee:             card.AnnualFee,
			ForeignTransactionFee: card.ForeignTransactionFee,
			FMMiniReview:          card.FMMiniReview,
			Benefits:              card.Benefits,
			CardType:              card.CardType,
			LastUpdatedUTC:        card.LastUpdatedUTC,
		})
	}
	return matches
}

// cardMatchesBenefit checks each benefit group in order and short-circuits on
// the first hit: credits, lounge, free-text benefits, protections, then the
// elite-status rules.
func cardMatchesBenefit(card *models.CreditCard, query string) bool {
	queryLower := strings.ToLower(query)
	benefits := card.Benefits

	for _, credit := range benefits.Credits {
		if credit.Type != "" && strings.Contains(strings.ToLower(credit.Type), queryLower) {
			return true
		}
	}

	for _, lounge := range benefits.Lounge {
		if lounge.Type != "" && strings.Contains(strings.ToLower(lounge.Type), queryLower) {
			return true
		}
	}

	for _, other := range benefits.Other {
		if strings.Contains(strings.ToLower(other), queryLower) {
			return true
		}
	}

	protectionGroups := [][]models.Protection{
		benefits.Protections.Purchase,
		benefits.Protections.Travel,
		benefits.Protections.Insurance,
	}
	for _, group := range protectionGroups {
		for _, prot := range group {
			if prot.Type != "" && strings.Contains(strings.ToLower(prot.Type), queryLower) {
				return true
			}
			if prot.Description != "" && strings.Contains(strings.ToLower(prot.Description), queryLower) {
				return true
			}
		}
	}

	return matchesEliteStatus(benefits.Status, queryLower)
}

// matchesEliteStatus applies the category-aware status rules. Users asking
// for "airline status" mean every card with any airline status entry, not a
// keyword hit; plain substring search only applies when the query has no
// status vocabulary at all.
func matchesEliteStatus(status models.EliteStatus, queryLower string) bool {
	categories := map[string][]models.StatusEntry{
		"hotel":      status.Hotel,
		"airline":    status.Airline,
		"rental_car": status.RentalCar,
		"other":      status.Other,
	}

	words := strings.Fields(queryLower)
	var targetCategories []string
	var remaining []string
	hasStatusWord := false

	for _, word := range words {
		if cat, ok := statusCategoryKeywords[word]; ok {
			targetCategories = append(targetCategories, cat)
			continue
		}
		if word == "elite" || word == "status" {
			hasStatusWord = true
			continue
		}
		remaining = append(remaining, word)
	}

	// Explicit category: presence test, no keyword required.
	if len(targetCategories) > 0 {
		for _, cat := range targetCategories {
			if len(categories[cat]) > 0 {
				return true
			}
		}
		return false
	}

	// Generic "status"/"elite" query: any category counts; extra keywords
	// must appear in some entry's text.
	if hasStatusWord {
		for _, entries := range categories {
			if len(entries) == 0 {
				continue
			}
			if len(remaining) == 0 {
				return true
			}
			for _, entry := range entries {
				text := statusEntryText(entry)
				for _, word := range remaining {
					if strings.Contains(text, word) {
						return true
					}
				}
			}
		}
		return false
	}

	// No status vocabulary: fall back to plain substring search.
	for _, entries := range categories {
		for _, entry := range entries {
			if strings.Contains(statusEntryText(entry), queryLower) {
				return true
			}
		}
	}
	return false
}

func statusEntryText(entry models.StatusEntry) string {
	return strings.ToLower(entry.Program + " " + entry.Tier + " " + entry.Description)
}
