package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Settlement failures. Controllers match these with errors.Is and map them to
// HTTP statuses; none of them ever accompanies a partially applied result.
var (
	// Precondition violations
	ErrSelfPurchase      = errors.New("cannot purchase your own listing")
	ErrSelfTrade         = errors.New("cannot trade with yourself")
	ErrSelfReport        = errors.New("cannot report yourself")
	ErrOwnershipMismatch = errors.New("listing is not owned by the expected user")
	ErrInvalidListing    = errors.New("listing does not exist or is not active")
	ErrInvalidAmount     = errors.New("credit amount must be non-negative")

	// State conflicts
	ErrListingUnavailable = errors.New("listing is no longer available")
	ErrAlreadyResolved    = errors.New("trade offer has already been resolved")
	ErrOfferExpired       = errors.New("trade offer has expired")
	ErrPreconditionFailed = errors.New("trade preconditions no longer hold")
	ErrDuplicateReport    = errors.New("an outstanding report for this user already exists")
	ErrAlreadyReviewed    = errors.New("report has already been reviewed")

	// Resource / lookup
	ErrInsufficientFunds = errors.New("insufficient credits")
	ErrNotFound          = errors.New("record not found")

	// Authorization
	ErrUnauthorized     = errors.New("not allowed to act on this resource")
	ErrMissingBanReason = errors.New("ban reason is required when banning a user")
)

// isDuplicateKeyError reports whether err is a unique-index violation from
// the store. The pq and sqlite drivers share no typed error for this, so the
// driver message is matched alongside gorm's translated sentinel.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
