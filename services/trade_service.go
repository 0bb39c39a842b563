package services

import (
	"errors"
	"log"
	"time"

	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/types"
	"gorm.io/gorm"
)

// TradeService runs the trade-offer state machine:
//
//	pending -> accepted | declined | expired
//
// All three outcomes are terminal. Acceptance settles the whole exchange
// (credits, one or two listing transfers, trust rewards) in one transaction,
// re-validating every precondition against freshly read rows.
type TradeService struct {
	DB      *gorm.DB
	Ledger  *LedgerService
	Economy types.EconomyConfig

	// Now is swappable in tests.
	Now func() time.Time
}

func NewTradeService(db *gorm.DB, ledger *LedgerService, economy types.EconomyConfig) *TradeService {
	return &TradeService{
		DB:      db,
		Ledger:  ledger,
		Economy: economy,
		Now:     time.Now,
	}
}

type CreateTradeOfferInput struct {
	ConversationID     uint
	SenderID           uint
	ReceiverID         uint
	RequestedListingID uint
	OfferedListingID   *uint
	AdditionalCredits  int64
}

// CreateOffer validates a proposal and records it as pending. The checks here
// are point-in-time; Accept re-validates all of them before settling.
func (ts *TradeService) CreateOffer(input CreateTradeOfferInput) (*models.TradeOffer, error) {
	if input.SenderID == input.ReceiverID {
		return nil, ErrSelfTrade
	}
	if input.AdditionalCredits < 0 {
		return nil, ErrInvalidAmount
	}

	var requested models.Listing
	if err := ts.DB.First(&requested, input.RequestedListingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidListing
		}
		return nil, err
	}
	if requested.UserID != input.ReceiverID {
		return nil, ErrOwnershipMismatch
	}
	if !requested.IsActive() {
		return nil, ErrInvalidListing
	}

	if input.OfferedListingID != nil {
		var offered models.Listing
		if err := ts.DB.First(&offered, *input.OfferedListingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidListing
			}
			return nil, err
		}
		if offered.UserID != input.SenderID {
			return nil, ErrOwnershipMismatch
		}
		if !offered.IsActive() {
			return nil, ErrInvalidListing
		}
	}

	var sender models.User
	if err := ts.DB.First(&sender, input.SenderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sender.Credits < input.AdditionalCredits {
		return nil, ErrInsufficientFunds
	}

	now := ts.Now()
	offer := models.TradeOffer{
		ConversationID:     input.ConversationID,
		SenderID:           input.SenderID,
		ReceiverID:         input.ReceiverID,
		RequestedListingID: input.RequestedListingID,
		OfferedListingID:   input.OfferedListingID,
		AdditionalCredits:  input.AdditionalCredits,
		Status:             models.TradeOfferStatusPending,
		ExpiresAt:          now.Add(ts.Economy.OfferTTL),
	}
	if err := ts.DB.Create(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// Accept settles a pending offer on behalf of its receiver. Precondition
// violations leave the offer pending so the sender can fix them and the
// receiver can retry; only expiry flips the status as a side effect.
func (ts *TradeService) Accept(offerID, callerID uint) (*models.TradeOffer, error) {
	now := ts.Now()

	var offer models.TradeOffer
	err := ts.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&offer, offerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if offer.ReceiverID != callerID {
			return ErrUnauthorized
		}
		if offer.Status != models.TradeOfferStatusPending {
			return ErrAlreadyResolved
		}
		if offer.IsExpired(now) {
			return ErrOfferExpired
		}

		// Re-validate the creation-time preconditions against live rows.
		var sender models.User
		if err := tx.First(&sender, offer.SenderID).Error; err != nil {
			return ErrPreconditionFailed
		}
		if sender.Credits < offer.AdditionalCredits {
			return ErrPreconditionFailed
		}

		var requested models.Listing
		if err := tx.First(&requested, offer.RequestedListingID).Error; err != nil {
			return ErrPreconditionFailed
		}
		if !requested.IsActive() || requested.UserID != offer.ReceiverID {
			return ErrPreconditionFailed
		}

		if offer.OfferedListingID != nil {
			var offered models.Listing
			if err := tx.First(&offered, *offer.OfferedListingID).Error; err != nil {
				return ErrPreconditionFailed
			}
			if !offered.IsActive() || offered.UserID != offer.SenderID {
				return ErrPreconditionFailed
			}
		}

		// Settle. The status update is guarded so a concurrent accept or
		// sweep on the same row cannot settle twice.
		result := tx.Model(&models.TradeOffer{}).
			Where("id = ? AND status = ?", offer.ID, models.TradeOfferStatusPending).
			Update("status", models.TradeOfferStatusAccepted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyResolved
		}

		if err := ts.Ledger.TransferCredits(tx, offer.SenderID, offer.ReceiverID, offer.AdditionalCredits, models.CreditLogKindTrade, offer.ID); err != nil {
			return err
		}
		if err := transferListingOwnership(tx, offer.RequestedListingID, offer.ReceiverID, offer.SenderID); err != nil {
			return err
		}
		if offer.OfferedListingID != nil {
			if err := transferListingOwnership(tx, *offer.OfferedListingID, offer.SenderID, offer.ReceiverID); err != nil {
				return err
			}
		}
		if err := ts.Ledger.AdjustTrustScore(tx, offer.SenderID, ts.Economy.TradeTrustReward); err != nil {
			return err
		}
		if err := ts.Ledger.AdjustTrustScore(tx, offer.ReceiverID, ts.Economy.TradeTrustReward); err != nil {
			return err
		}

		offer.Status = models.TradeOfferStatusAccepted
		return nil
	})
	if errors.Is(err, ErrOfferExpired) {
		// Materialize the expiry outside the rolled-back transaction.
		ts.markExpired(offerID)
		return nil, ErrOfferExpired
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// Decline resolves a pending offer with no economic side effects.
func (ts *TradeService) Decline(offerID, callerID uint) (*models.TradeOffer, error) {
	now := ts.Now()

	var offer models.TradeOffer
	if err := ts.DB.First(&offer, offerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if offer.ReceiverID != callerID {
		return nil, ErrUnauthorized
	}
	if offer.Status != models.TradeOfferStatusPending {
		return nil, ErrAlreadyResolved
	}
	if offer.IsExpired(now) {
		ts.markExpired(offerID)
		return nil, ErrAlreadyResolved
	}

	result := ts.DB.Model(&models.TradeOffer{}).
		Where("id = ? AND status = ?", offer.ID, models.TradeOfferStatusPending).
		Update("status", models.TradeOfferStatusDeclined)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyResolved
	}

	offer.Status = models.TradeOfferStatusDeclined
	return &offer, nil
}

// ListForConversation returns a conversation's offers, newest first,
// materializing expiry on any stale pending rows before reading.
func (ts *TradeService) ListForConversation(conversationID uint) ([]models.TradeOffer, error) {
	now := ts.Now()
	if err := ts.DB.Model(&models.TradeOffer{}).
		Where("conversation_id = ? AND status = ? AND expires_at < ?", conversationID, models.TradeOfferStatusPending, now).
		Update("status", models.TradeOfferStatusExpired).Error; err != nil {
		return nil, err
	}

	var offers []models.TradeOffer
	err := ts.DB.
		Preload("OfferedListing").
		Preload("RequestedListing").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

// ExpireStale bulk-transitions every overdue pending offer. Idempotent: the
// guard on status means re-running it, or racing an accept, affects no row
// twice.
func (ts *TradeService) ExpireStale() (int64, error) {
	now := ts.Now()
	result := ts.DB.Model(&models.TradeOffer{}).
		Where("status = ? AND expires_at < ?", models.TradeOfferStatusPending, now).
		Update("status", models.TradeOfferStatusExpired)
	return result.RowsAffected, result.Error
}

func (ts *TradeService) markExpired(offerID uint) {
	result := ts.DB.Model(&models.TradeOffer{}).
		Where("id = ? AND status = ?", offerID, models.TradeOfferStatusPending).
		Update("status", models.TradeOfferStatusExpired)
	if result.Error != nil {
		// The caller already owes its actor an expiry answer; the next
		// sweep or lazy read picks the row up again.
		log.Printf("failed to expire trade offer %d: %v", offerID, result.Error)
	}
}
