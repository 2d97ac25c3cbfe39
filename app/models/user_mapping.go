package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// UserMapping links a Slack user to their Strike payment handle. A mapping is
// written once on the first modal submission and never updated afterwards.
type UserMapping struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SlackID      string    `gorm:"uniqueIndex;type:varchar(32)" json:"slack_id" validate:"required,max=32"`
	StrikeHandle string    `gorm:"type:varchar(150)" json:"strike_handle" validate:"required,max=150"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *UserMapping) Validate() error {
	v := validator.New()

	return v.Struct(m)
}
