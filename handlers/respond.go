package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"cashup-backend/ledger"
)

// writeError maps ledger errors onto the HTTP contract: missing entities are
// 404, bad input 400, policy rejections 400 (429 for the rate limiter) with a
// machine-readable reason, retry exhaustion 503, everything else 500.
func writeError(c *gin.Context, err error) {
	var notFound ledger.NotFoundError
	var invalid ledger.InvalidInputError
	var policy *ledger.PolicyError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"message": invalid.Error()})
	case errors.As(err, &policy):
		status := http.StatusBadRequest
		if policy.Reason == ledger.ReasonRateLimited {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"message": policy.Message, "reason": policy.Reason})
	case errors.Is(err, ledger.ErrRetryExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "the ledger is busy, please try again"})
	default:
		log.Printf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "unexpected error"})
	}
}
