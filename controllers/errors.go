package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trashure/api-go/services"
)

// respondServiceError maps the settlement error taxonomy onto HTTP statuses.
// Every failure keeps its specific message so callers can tell a retryable
// condition (refetch balance, retry) from a dead end (listing gone).
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrUnauthorized):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrInsufficientFunds):
		status, message = http.StatusPaymentRequired, err.Error()
	case errors.Is(err, services.ErrSelfPurchase),
		errors.Is(err, services.ErrSelfTrade),
		errors.Is(err, services.ErrSelfReport),
		errors.Is(err, services.ErrInvalidListing),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrOwnershipMismatch),
		errors.Is(err, services.ErrMissingBanReason):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrListingUnavailable),
		errors.Is(err, services.ErrAlreadyResolved),
		errors.Is(err, services.ErrOfferExpired),
		errors.Is(err, services.ErrPreconditionFailed),
		errors.Is(err, services.ErrDuplicateReport),
		errors.Is(err, services.ErrAlreadyReviewed):
		status, message = http.StatusConflict, err.Error()
	}

	c.JSON(status, gin.H{"error": message, "success": false})
}
