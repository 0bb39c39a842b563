package services

import (
	"errors"

	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/types"
	"gorm.io/gorm"
)

// PurchaseService settles the direct credits-for-listing exchange.
type PurchaseService struct {
	DB      *gorm.DB
	Ledger  *LedgerService
	Economy types.EconomyConfig
}

func NewPurchaseService(db *gorm.DB, ledger *LedgerService, economy types.EconomyConfig) *PurchaseService {
	return &PurchaseService{DB: db, Ledger: ledger, Economy: economy}
}

// Purchase moves the listing price from buyer to seller and marks the listing
// sold. Preconditions are checked twice: optimistically here for a fast
// caller-facing error, then authoritatively inside the transaction against
// re-read rows, because a second buyer can win the race in between.
func (ps *PurchaseService) Purchase(buyerID, listingID uint) (*models.Listing, error) {
	var listing models.Listing
	if err := readWithRetry(func() error { return ps.DB.First(&listing, listingID).Error }); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if listing.UserID == buyerID {
		return nil, ErrSelfPurchase
	}
	if !listing.IsActive() {
		return nil, ErrListingUnavailable
	}

	var buyer models.User
	if err := readWithRetry(func() error { return ps.DB.First(&buyer, buyerID).Error }); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if buyer.Credits < listing.Price {
		return nil, ErrInsufficientFunds
	}

	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		var current models.Listing
		if err := tx.First(&current, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if current.UserID == buyerID {
			return ErrSelfPurchase
		}

		if err := markListingSold(tx, current.ID, current.UserID); err != nil {
			return err
		}
		if err := ps.Ledger.TransferCredits(tx, buyerID, current.UserID, current.Price, models.CreditLogKindPurchase, current.ID); err != nil {
			return err
		}
		if err := ps.Ledger.AdjustTrustScore(tx, buyerID, ps.Economy.PurchaseTrustReward); err != nil {
			return err
		}
		return ps.Ledger.AdjustTrustScore(tx, current.UserID, ps.Economy.PurchaseTrustReward)
	})
	if err != nil {
		return nil, err
	}

	var sold models.Listing
	if err := ps.DB.First(&sold, listingID).Error; err != nil {
		return nil, err
	}
	return &sold, nil
}
