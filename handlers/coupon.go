package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cashup-backend/ledger"
	"cashup-backend/models"
)

type CouponHandler struct {
	ledger *ledger.Ledger
}

func NewCouponHandler(l *ledger.Ledger) *CouponHandler {
	return &CouponHandler{ledger: l}
}

// Issue debits active points and mints a coupon.
func (h *CouponHandler) Issue(c *gin.Context) {
	var req models.IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "user_id, shop_name and amount are required"})
		return
	}

	coupon, err := h.ledger.IssueCoupon(c, ledger.IssueCouponInput{
		FestivalID: c.Param("festivalId"),
		UserID:     req.UserID,
		ShopName:   req.ShopName,
		Amount:     req.Amount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}
