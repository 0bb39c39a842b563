package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/trashure/api-go/models"
	"github.com/trashure/api-go/types"
	"gorm.io/gorm"
)

// Report review actions
const (
	ReviewActionApprove = "approve"
	ReviewActionDismiss = "dismiss"
)

// ModerationService turns user reports into trust penalties and bans. The
// penalty formula runs exactly once per report, when a moderator approves it;
// filing only records the complaint.
type ModerationService struct {
	DB      *gorm.DB
	Ledger  *LedgerService
	Economy types.EconomyConfig

	Now func() time.Time
}

func NewModerationService(db *gorm.DB, ledger *LedgerService, economy types.EconomyConfig) *ModerationService {
	return &ModerationService{
		DB:      db,
		Ledger:  ledger,
		Economy: economy,
		Now:     time.Now,
	}
}

// FileReport records a complaint against another user. One report per
// (reporter, reported) pair; the reverse direction is a distinct pair.
func (ms *ModerationService) FileReport(reporterID, reportedID uint, reason, description string) (*models.Report, error) {
	if reporterID == reportedID {
		return nil, ErrSelfReport
	}

	var reported models.User
	if err := readWithRetry(func() error { return ms.DB.First(&reported, reportedID).Error }); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var existing models.Report
	err := ms.DB.Where("reporter_user_id = ? AND reported_user_id = ?", reporterID, reportedID).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateReport
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	report := models.Report{
		ReporterUserID: reporterID,
		ReportedUserID: reportedID,
		Reason:         reason,
		Description:    description,
		Status:         models.ReportStatusPending,
	}
	if err := ms.DB.Create(&report).Error; err != nil {
		// A concurrent filing for the same pair can slip past the check
		// above; the unique index still rejects it, so surface the same
		// typed failure either way.
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateReport
		}
		return nil, err
	}
	return &report, nil
}

type ReviewReportInput struct {
	ReportID   uint
	ReviewerID uint
	Action     string // approve, dismiss
	AdminNotes string
	BanUser    bool
	BanReason  string
}

// ReviewReport resolves or dismisses a pending report. Approval applies the
// trust penalty and optionally bans the reported user; both happen in the
// same transaction as the status flip, so a failure leaves the report
// pending and the target untouched.
func (ms *ModerationService) ReviewReport(input ReviewReportInput) (*models.Report, error) {
	if input.Action != ReviewActionApprove && input.Action != ReviewActionDismiss {
		return nil, fmt.Errorf("unknown review action %q", input.Action)
	}
	if input.BanUser && input.BanReason == "" {
		return nil, ErrMissingBanReason
	}

	now := ms.Now()
	var report models.Report
	err := ms.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, input.ReportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if report.Status != models.ReportStatusPending {
			return ErrAlreadyReviewed
		}

		status := models.ReportStatusDismissed
		if input.Action == ReviewActionApprove {
			status = models.ReportStatusResolved

			penalty, err := ms.computePenalty(tx, report.ReportedUserID, now)
			if err != nil {
				return err
			}
			if err := ms.Ledger.AdjustTrustScore(tx, report.ReportedUserID, -penalty); err != nil {
				return err
			}

			if input.BanUser {
				if err := tx.Model(&models.User{}).
					Where("id = ?", report.ReportedUserID).
					Updates(map[string]interface{}{
						"is_banned":  true,
						"ban_reason": input.BanReason,
					}).Error; err != nil {
					return err
				}
			}
		}

		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", report.ID, models.ReportStatusPending).
			Updates(map[string]interface{}{
				"status":      status,
				"admin_notes": input.AdminNotes,
				"reviewed_by": input.ReviewerID,
				"reviewed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}

		report.Status = status
		report.AdminNotes = input.AdminNotes
		report.ReviewedBy = &input.ReviewerID
		report.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// computePenalty implements
//
//	min(total*PenaltyPerReport + recent*PenaltyPerRecentReport, PenaltyCap)
//
// over all reports currently on file against the user.
func (ms *ModerationService) computePenalty(tx *gorm.DB, userID uint, now time.Time) (int, error) {
	var total int64
	if err := tx.Model(&models.Report{}).
		Where("reported_user_id = ?", userID).
		Count(&total).Error; err != nil {
		return 0, err
	}

	var recent int64
	if err := tx.Model(&models.Report{}).
		Where("reported_user_id = ? AND created_at > ?", userID, now.Add(-ms.Economy.RecentReportWindow)).
		Count(&recent).Error; err != nil {
		return 0, err
	}

	penalty := int(total)*ms.Economy.PenaltyPerReport + int(recent)*ms.Economy.PenaltyPerRecentReport
	if penalty > ms.Economy.PenaltyCap {
		penalty = ms.Economy.PenaltyCap
	}
	return penalty, nil
}

// ListReports returns reports for the admin queue, optionally filtered by
// status.
func (ms *ModerationService) ListReports(status string) ([]models.Report, error) {
	query := ms.DB.
		Preload("ReporterUser").
		Preload("ReportedUser").
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []models.Report
	err := query.Find(&reports).Error
	return reports, err
}
