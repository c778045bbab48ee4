package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cashup-backend/ledger"
	"cashup-backend/models"
)

type UserHandler struct {
	ledger *ledger.Ledger
}

func NewUserHandler(l *ledger.Ledger) *UserHandler {
	return &UserHandler{ledger: l}
}

// MockLogin creates a participant keyed by a random external identity. Real
// auth providers plug in the same way: stable provider + provider user id.
func (h *UserHandler) MockLogin(c *gin.Context) {
	var req models.MockLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "nickname is required"})
		return
	}

	external := make([]byte, 6)
	rand.Read(external)
	user := &models.User{
		ID:             uuid.New().String(),
		Provider:       "mock",
		ProviderUserID: hex.EncodeToString(external),
		DisplayName:    req.Nickname,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.ledger.Store().CreateUser(c, user); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) GetSummary(c *gin.Context) {
	userID := c.Param("userId")
	festivalID := c.Query("festivalId")
	if festivalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "festivalId is required"})
		return
	}

	festival, err := h.ledger.Store().GetFestival(c, festivalID)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := h.ledger.Store().GetUser(c, userID); err != nil {
		writeError(c, err)
		return
	}

	summary, err := h.ledger.EnsureSummary(c, userID, festivalID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"festival": festival, "summary": summary})
}

func (h *UserHandler) GetPhotos(c *gin.Context) {
	userID := c.Param("userId")
	festivalID := c.Query("festivalId")
	if festivalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "festivalId is required"})
		return
	}

	photos, err := h.ledger.Store().ListUserPhotos(c, userID, festivalID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

func (h *UserHandler) GetCoupons(c *gin.Context) {
	userID := c.Param("userId")
	festivalID := c.Query("festivalId")
	if festivalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "festivalId is required"})
		return
	}

	coupons, err := h.ledger.Store().ListUserCoupons(c, userID, festivalID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}
