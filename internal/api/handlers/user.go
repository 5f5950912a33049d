package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/askmiles/miles-server/internal/metrics"
	"github.com/askmiles/miles-server/internal/models"
	"github.com/askmiles/miles-server/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetUserData(c *gin.Context) {
	data, err := h.users.UserData()
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("user_data", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.ToolRequestsTotal.WithLabelValues("user_data", "ok").Inc()
	c.JSON(http.StatusOK, data)
}

// GetValuations returns the merged valuation map, optionally restricted to a
// comma-separated list of program names or keys.
func (h *UserHandler) GetValuations(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("programs"))

	var result map[string]float64
	if raw == "" {
		result = h.users.MergedValuations()
	} else {
		var programs []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				programs = append(programs, p)
			}
		}
		result = h.users.FilteredValuations(programs)
	}

	metrics.ToolRequestsTotal.WithLabelValues("valuations", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"valuations": result,
		"count":      len(result),
		"unit":       "cents_per_point",
	})
}

func (h *UserHandler) GetWallet(c *gin.Context) {
	wallet, err := h.users.EnrichedWallet()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet, "count": len(wallet)})
}

func (h *UserHandler) AddWalletCard(c *gin.Context) {
	var req models.AddWalletCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card_name is required"})
		return
	}
	if err := validateCardName(req.CardName, "card_name"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.users.AddCardToWallet(req.CardName, req.Note)
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "Card '" + req.CardName + "' not found",
				"suggestion": "Try the card search endpoint to find the exact card name",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"added": card.CardName})
}

func (h *UserHandler) RemoveWalletCard(c *gin.Context) {
	name := c.Query("card_name")
	if err := validateCardName(name, "card_name"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := h.users.RemoveCardFromWallet(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card '" + name + "' is not in the wallet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": name})
}

func (h *UserHandler) SetValuation(c *gin.Context) {
	var req models.SetValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency is required"})
		return
	}
	if err := validateCardName(req.Currency, "currency"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Value <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be greater than zero"})
		return
	}

	key, err := h.users.SetCustomValuation(req.Currency, req.Value)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"program": key, "value": req.Value})
}

func (h *UserHandler) AddCredit(c *gin.Context) {
	var req models.AddCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "merchant is required"})
		return
	}
	if err := validateCardName(req.Merchant, "merchant"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.AddMerchantCredit(req.Merchant); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": req.Merchant})
}

func (h *UserHandler) RemoveCredit(c *gin.Context) {
	merchant := c.Query("merchant")
	if err := validateCardName(merchant, "merchant"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := h.users.RemoveMerchantCredit(merchant)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "No tracked credit for '" + merchant + "'"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": merchant})
}
