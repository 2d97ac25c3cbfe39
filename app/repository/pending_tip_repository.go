package repository

import (
	"strings"

	"github.com/ivanacostarubio/strike-slack/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pendingTipRepository implements the PendingTipRepository interface
type pendingTipRepository struct {
	db *gorm.DB
}

// NewPendingTipRepository creates a new pending tip repository instance
func NewPendingTipRepository(db *gorm.DB) PendingTipRepository {
	return &pendingTipRepository{db: db}
}

// Upsert stores the pending tip keyed by the clicking Slack user, replacing
// the target and amount of an earlier pending tip if one exists.
func (r *pendingTipRepository) Upsert(slackID, targetSlackID, amount string) error {
	pending := &models.PendingTip{
		SlackID:       strings.TrimSpace(slackID),
		TargetSlackID: strings.TrimSpace(targetSlackID),
		Amount:        strings.TrimSpace(amount),
	}
	if err := pending.Validate(); err != nil {
		return err
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slack_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_slack_id", "amount", "updated_at"}),
	}).Create(pending).Error
}

// Consume returns the pending tip keyed by the clicking Slack user and
// deletes it. Returns gorm.ErrRecordNotFound when no tip is pending.
func (r *pendingTipRepository) Consume(slackID string) (*models.PendingTip, error) {
	var pending models.PendingTip
	if err := r.db.Where("slack_id = ?", slackID).First(&pending).Error; err != nil {
		return nil, err
	}
	if err := r.db.Delete(&models.PendingTip{}, pending.ID).Error; err != nil {
		return nil, err
	}
	return &pending, nil
}
