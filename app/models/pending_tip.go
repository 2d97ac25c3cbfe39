package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// PendingTip remembers a tip request whose target had no stored Strike
// handle yet. It is created when the handle-prompt modal opens and consumed
// when the modal is submitted, so the tipped user and the amount survive
// the suspension. The row is keyed by the Slack user who clicked the
// shortcut, because the modal opens for them and their submission is the
// only event that comes back; TargetSlackID is the message author being
// tipped. At most one pending tip exists per clicker; a newer shortcut
// replaces it.
type PendingTip struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SlackID       string    `gorm:"uniqueIndex;type:varchar(32)" json:"slack_id" validate:"required,max=32"`
	TargetSlackID string    `gorm:"type:varchar(32)" json:"target_slack_id" validate:"required,max=32"`
	Amount        string    `gorm:"type:varchar(32)" json:"amount" validate:"required"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *PendingTip) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
