package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashup-backend/ledger"
	"cashup-backend/models"
)

type ScanHandler struct {
	ledger *ledger.Ledger
}

func NewScanHandler(l *ledger.Ledger) *ScanHandler {
	return &ScanHandler{ledger: l}
}

// Scan converts a user's recent pending points at an official bin.
func (h *ScanHandler) Scan(c *gin.Context) {
	var req models.ScanBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "user_id and bin_code are required"})
		return
	}

	result, err := h.ledger.ScanBin(c, ledger.ScanBinInput{
		FestivalID: c.Param("festivalId"),
		UserID:     req.UserID,
		BinCode:    req.BinCode,
		Lat:        req.Lat,
		Lng:        req.Lng,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activated":       result.Activated,
		"converted_count": result.ConvertedCount,
		"bin_name":        result.BinName,
		"summary":         result.Summary,
	})
}
