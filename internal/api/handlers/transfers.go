package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askmiles/miles-server/internal/metrics"
	"github.com/askmiles/miles-server/internal/services"
)

type TransferHandler struct {
	transfers *services.TransferService
}

func NewTransferHandler(transfers *services.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

func (h *TransferHandler) LookupPartners(c *gin.Context) {
	program := c.Query("program")
	if err := validateCardName(program, "program"); err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("transfer_partners", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	direction := c.DefaultQuery("direction", "from")
	result, err := h.transfers.LookupPartners(program, direction)
	if err != nil {
		metrics.ToolRequestsTotal.WithLabelValues("transfer_partners", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metrics.ToolRequestsTotal.WithLabelValues("transfer_partners", "ok").Inc()
	c.JSON(http.StatusOK, result)
}

func (h *TransferHandler) GetBonuses(c *gin.Context) {
	fromProgram := c.Query("from_program")
	if fromProgram != "" {
		if err := validateCardName(fromProgram, "from_program"); err != nil {
			metrics.ToolRequestsTotal.WithLabelValues("transfer_bonuses", "invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	metrics.ToolRequestsTotal.WithLabelValues("transfer_bonuses", "ok").Inc()
	c.JSON(http.StatusOK, h.transfers.ActiveBonuses(fromProgram))
}
