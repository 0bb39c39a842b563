package services

import (
	"errors"

	"github.com/trashure/api-go/models"
	"gorm.io/gorm"
)

// transferListingOwnership reassigns an active listing to a new owner inside
// tx. The update is guarded on live status and ownership, so a listing that
// was sold or edited after the caller's earlier read cannot be moved.
func transferListingOwnership(tx *gorm.DB, listingID, expectedOwnerID, newOwnerID uint) error {
	result := tx.Model(&models.Listing{}).
		Where("id = ? AND status = ? AND user_id = ?", listingID, models.ListingStatusActive, expectedOwnerID).
		Update("user_id", newOwnerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return classifyListingGuardFailure(tx, listingID, expectedOwnerID)
	}
	return nil
}

// markListingSold flips an active listing to sold inside tx, guarded the same
// way as ownership transfer.
func markListingSold(tx *gorm.DB, listingID, expectedOwnerID uint) error {
	result := tx.Model(&models.Listing{}).
		Where("id = ? AND status = ? AND user_id = ?", listingID, models.ListingStatusActive, expectedOwnerID).
		Update("status", models.ListingStatusSold)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return classifyListingGuardFailure(tx, listingID, expectedOwnerID)
	}
	return nil
}

// classifyListingGuardFailure re-reads the listing to turn a zero-row guarded
// update into a specific failure.
func classifyListingGuardFailure(tx *gorm.DB, listingID, expectedOwnerID uint) error {
	var listing models.Listing
	if err := tx.First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if listing.Status != models.ListingStatusActive {
		return ErrListingUnavailable
	}
	if listing.UserID != expectedOwnerID {
		return ErrOwnershipMismatch
	}
	return ErrListingUnavailable
}
