package services

import (
	"strings"

	"github.com/askmiles/miles-server/internal/metrics"
	"github.com/askmiles/miles-server/internal/models"
)

// ResolveCard resolves a loose card reference ("Amex Platinum", "Sapphire
// Preferred") to its canonical catalog entry, or nil if nothing matches.
//
// Exact case-insensitive matches win immediately. Otherwise the best
// weighted-ratio fuzzy score is taken, accepted only at or above the
// configured threshold. Ties keep the first candidate in catalog order.
func (s *CardDataService) ResolveCard(query string) *models.CreditCard {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.cards) == 0 {
		return nil
	}

	if canonical, ok := s.resolveCache.Get(query); ok {
		if idx, ok := s.cardIndex[canonical]; ok {
			metrics.CardResolutionsTotal.WithLabelValues("cached").Inc()
			card := s.cards[idx]
			return &card
		}
	}

	// Exact match fast path: deterministic and ordering-independent.
	queryLower := strings.ToLower(query)
	for _, name := range s.cardNames {
		if queryLower == strings.ToLower(name) {
			metrics.CardResolutionsTotal.WithLabelValues("exact").Inc()
			card := s.cards[s.cardIndex[name]]
			return &card
		}
	}

	bestScore := 0.0
	bestName := ""
	for _, name := range s.cardNames {
		score := wratio(query, name)
		if score > bestScore {
			bestScore = score
			bestName = name
		}
	}

	if bestName == "" || bestScore < float64(s.fuzzyThreshold) {
		metrics.CardResolutionsTotal.WithLabelValues("miss").Inc()
		return nil
	}

	metrics.CardResolutionsTotal.WithLabelValues("fuzzy").Inc()
	s.resolveCache.Add(query, bestName)
	card := s.cards[s.cardIndex[bestName]]
	return &card
}
