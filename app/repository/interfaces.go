package repository

import (
	"github.com/ivanacostarubio/strike-slack/app/models"
	"gorm.io/gorm"
)

// UserMappingRepository defines the database operations for Slack-to-Strike
// identity mappings.
type UserMappingRepository interface {
	GetBySlackID(slackID string) (*models.UserMapping, error)
	CreateIfAbsent(slackID, strikeHandle string) (*models.UserMapping, error)
	Count() (int64, error)
}

// PendingTipRepository defines the database operations for tip requests that
// are suspended while the requester's Strike handle is being collected.
type PendingTipRepository interface {
	Upsert(slackID, targetSlackID, amount string) error
	Consume(slackID string) (*models.PendingTip, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	UserMapping UserMappingRepository
	PendingTip  PendingTipRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		UserMapping: NewUserMappingRepository(db),
		PendingTip:  NewPendingTipRepository(db),
	}
}
