package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cashup-backend/auth"
	"cashup-backend/ledger"
	"cashup-backend/models"
)

type AdminHandler struct {
	store  ledger.Store
	policy auth.Policy
	login  func(password string) (string, error)
}

// NewAdminHandler wires the admin surface. The token policy both issues
// tokens at login and authorizes every admin route.
func NewAdminHandler(store ledger.Store, policy *auth.TokenPolicy, adminPassword string) *AdminHandler {
	return &AdminHandler{
		store:  store,
		policy: policy,
		login: func(password string) (string, error) {
			if !auth.CheckPassword(adminPassword, password) {
				return "", fmt.Errorf("wrong password")
			}
			return policy.Issue(auth.CapabilityAdmin)
		},
	}
}

// RequireAdmin gates a route on the admin capability. The credential comes
// from the X-Admin-Token header.
func RequireAdmin(policy auth.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Admin-Token")
		if token == "" || !policy.Authorize(auth.CapabilityAdmin, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "admin authentication required"})
			return
		}
		c.Next()
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "password is required"})
		return
	}
	token, err := h.login(req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "wrong password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) CreateFestival(c *gin.Context) {
	var req models.CreateFestivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, budget, per_user_daily_cap and per_photo_point are required"})
		return
	}

	festival := &models.Festival{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Budget:          req.Budget,
		PerUserDailyCap: req.PerUserDailyCap,
		PerPhotoPoint:   req.PerPhotoPoint,
		CenterLat:       req.CenterLat,
		CenterLng:       req.CenterLng,
		RadiusMeters:    req.RadiusMeters,
		CreatedAt:       time.Now().UTC(),
	}
	if err := h.store.CreateFestival(c, festival); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"festival": festival})
}

// GenerateBins bulk-creates bins with sequential codes continuing from the
// festival's current count.
func (h *AdminHandler) GenerateBins(c *gin.Context) {
	festivalID := c.Param("festivalId")

	var req models.GenerateBinsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Count <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "a positive bin count is required"})
		return
	}
	if _, err := h.store.GetFestival(c, festivalID); err != nil {
		writeError(c, err)
		return
	}

	existing, err := h.store.CountBins(c, festivalID)
	if err != nil {
		writeError(c, err)
		return
	}

	now := time.Now().UTC()
	bins := make([]models.TrashBin, req.Count)
	for i := range bins {
		seq := existing + i + 1
		bins[i] = models.TrashBin{
			ID:          uuid.New().String(),
			FestivalID:  festivalID,
			Code:        fmt.Sprintf("TRASH_BIN_%02d", seq),
			Name:        fmt.Sprintf("Official bin #%d", seq),
			Description: "Placed by festival operations",
			CreatedAt:   now,
		}
	}
	if err := h.store.CreateBins(c, bins); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bins": bins})
}

func (h *AdminHandler) Summary(c *gin.Context) {
	report, err := h.store.FestivalReport(c, c.Param("festivalId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
