package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// operation is a store action that reports failure through its error.
type operation func() error

const defaultMaxRetries = 3

// readWithRetry retries an idempotent read a bounded number of times with an
// incremental backoff. Only reads go through here: a failed settlement
// transaction is never blindly retried, since its preconditions must be
// re-validated against fresh state first.
func readWithRetry(op operation) error {
	return withRetries(op, defaultMaxRetries, isTransientStoreError)
}

func withRetries(op operation, maxRetries int, retryable func(error) bool) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			return err
		}
		time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
	}
	return err
}

// isTransientStoreError separates infrastructure failures (worth retrying)
// from decisions: a missing row or a settlement sentinel is an answer, not an
// outage.
func isTransientStoreError(err error) bool {
	if err == nil {
		return false
	}
	for _, sentinel := range []error{
		gorm.ErrRecordNotFound,
		ErrInsufficientFunds, ErrListingUnavailable, ErrOwnershipMismatch,
		ErrAlreadyResolved, ErrOfferExpired, ErrPreconditionFailed,
		ErrDuplicateReport, ErrAlreadyReviewed, ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	return true
}
