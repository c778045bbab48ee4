package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashup-backend/ledger"
	"cashup-backend/models"
)

type FestivalHandler struct {
	store ledger.Store
}

func NewFestivalHandler(store ledger.Store) *FestivalHandler {
	return &FestivalHandler{store: store}
}

func (h *FestivalHandler) List(c *gin.Context) {
	festivals, err := h.store.ListFestivals(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"festivals": festivals})
}

func (h *FestivalHandler) Get(c *gin.Context) {
	festivalID := c.Param("festivalId")
	festival, err := h.store.GetFestival(c, festivalID)
	if err != nil {
		writeError(c, err)
		return
	}
	bins, err := h.store.ListBins(c, festivalID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"festival": festival, "bins": bins})
}

func (h *FestivalHandler) ListBins(c *gin.Context) {
	bins, err := h.store.ListBins(c, c.Param("festivalId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bins": bins})
}

// ListShops serves the static redemption catalog shown in the wallet.
func (h *FestivalHandler) ListShops(c *gin.Context) {
	shops := []models.Shop{
		{ShopName: "Harbor Tteokbokki", Amount: 2000, Description: "2,000 off purchases of 2,000 or more"},
		{ShopName: "Seaside Cafe", Amount: 3000, Description: "3,000 off any drink, americano included"},
		{ShopName: "Festival Mart", Amount: 1500, Description: "1,500 off snacks"},
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}
