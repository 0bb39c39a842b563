package services

import (
	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/types"
	"gorm.io/gorm"
)

// LedgerService owns the two mutable economic fields on a user: the credit
// balance and the trust score. Both primitives operate on the transaction
// handle passed in, never on a connection of their own, so a caller can fold
// them into a larger settlement and get all-or-nothing behaviour for free.
type LedgerService struct {
	Economy types.EconomyConfig
}

func NewLedgerService(economy types.EconomyConfig) *LedgerService {
	return &LedgerService{Economy: economy}
}

// TransferCredits moves amount from one user to another and appends an audit
// row, all on tx. The debit is a guarded update against the live balance, so
// a stale balance read earlier in the request can never overdraw the sender.
// A zero amount is a valid no-op.
func (ls *LedgerService) TransferCredits(tx *gorm.DB, fromUserID, toUserID uint, amount int64, kind string, referenceID uint) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}

	debit := tx.Model(&models.User{}).
		Where("id = ? AND credits >= ?", fromUserID, amount).
		Update("credits", gorm.Expr("credits - ?", amount))
	if debit.Error != nil {
		return debit.Error
	}
	if debit.RowsAffected == 0 {
		return ErrInsufficientFunds
	}

	credit := tx.Model(&models.User{}).
		Where("id = ?", toUserID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if credit.Error != nil {
		return credit.Error
	}
	if credit.RowsAffected == 0 {
		return ErrNotFound
	}

	log := models.CreditLog{
		FromUserID:  fromUserID,
		ToUserID:    toUserID,
		Amount:      amount,
		Kind:        kind,
		ReferenceID: referenceID,
	}
	return tx.Create(&log).Error
}

// AdjustTrustScore applies delta to a user's trust score, clamped to
// [MIN_TRUST_SCORE, MAX_TRUST_SCORE]. The clamp and the increment run in a
// single statement against the live row, so two settlements rewarding the
// same user never lose an update to a stale read.
func (ls *LedgerService) AdjustTrustScore(tx *gorm.DB, userID uint, delta int) error {
	result := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("trust_score", gorm.Expr(
			"CASE WHEN trust_score + ? < ? THEN ? WHEN trust_score + ? > ? THEN ? ELSE trust_score + ? END",
			delta, types.MIN_TRUST_SCORE, types.MIN_TRUST_SCORE,
			delta, types.MAX_TRUST_SCORE, types.MAX_TRUST_SCORE,
			delta,
		))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
