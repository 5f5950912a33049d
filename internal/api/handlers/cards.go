package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askmiles/miles-server/internal/metrics"
	"github.com/askmiles/miles-server/internal/models"
	"github.com/askmiles/miles-server/internal/services"
)

type CardHandler struct {
	data *services.CardDataService
}

func NewCardHandler(data *services.CardDataService) *CardHandler {
	return &CardHandler{data: data}
}

func (h *CardHandler) SearchCards(c *gin.Context) {
	query := c.Query("q")
	if err := validateQuery(query); err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("search_cards", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	maxResults, err := intQuery(c, "max_results", 10)
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("search_cards", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recentDays, err := intQuery(c, "recently_updated_days", 0)
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("search_cards", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matches, err := h.data.SearchCards(query, maxResults, recentDays)
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("search_cards", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics.ToolRequestsTotal.WithLabelValues("search_cards", "ok").Inc()
	c.JSON(http.StatusOK, models.CardSearchResult{
		SearchResults: matches,
		TotalResults:  len(matches),
		Query:         query,
	})
}

func (h *CardHandler) GetCardInfo(c *gin.Context) {
	name := c.Query("name")
	if err := validateCardName(name, "name"); err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("card_info", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card := h.data.ResolveCard(name)
	if card == nil {
		metrics.ToolRequestsTotal.WithLabelValues("card_info", "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "Card '" + name + "' not found",
			"suggestion": "Try the card search endpoint to find the exact card name",
		})
		return
	}

	metrics.ToolRequestsTotal.WithLabelValues("card_info", "ok").Inc()
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) GetTopOffers(c *gin.Context) {
	n, err := intQuery(c, "n", 5)
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("top_offers", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cardType := c.DefaultQuery("card_type", "all")

	offers, err := h.data.TopOffers(n, cardType)
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("top_offers", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics.ToolRequestsTotal.WithLabelValues("top_offers", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"offers":    offers,
		"count":     len(offers),
		"card_type": strings.ToLower(cardType),
	})
}

func (h *CardHandler) SearchBenefits(c *gin.Context) {
	query := c.Query("q")
	if err := validateQuery(query); err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("search_benefits", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matches := h.data.SearchBenefits(query)
	metrics.ToolRequestsTotal.WithLabelValues("search_benefits", "ok").Inc()
	c.JSON(http.StatusOK, models.BenefitSearchResult{
		Matches:        matches,
		Query:          query,
		TotalMatches:   len(matches),
		LastUpdatedUTC: time.Now().UTC().Format(time.RFC3339),
	})
}

// intQuery parses an integer query parameter. An absent parameter falls back
// to def; a present but malformed one is the caller's error.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
