package repository

import (
	"strings"

	"github.com/ivanacostarubio/strike-slack/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userMappingRepository implements the UserMappingRepository interface
type userMappingRepository struct {
	db *gorm.DB
}

// NewUserMappingRepository creates a new user mapping repository instance
func NewUserMappingRepository(db *gorm.DB) UserMappingRepository {
	return &userMappingRepository{db: db}
}

// GetBySlackID retrieves a mapping by the Slack user id
func (r *userMappingRepository) GetBySlackID(slackID string) (*models.UserMapping, error) {
	var mapping models.UserMapping
	err := r.db.Where("slack_id = ?", slackID).First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// CreateIfAbsent atomically finds or creates the mapping, keyed on the Slack
// user id alone. A second call with a different handle returns the stored
// mapping unchanged; a mapping is never rewritten once created.
func (r *userMappingRepository) CreateIfAbsent(slackID, strikeHandle string) (*models.UserMapping, error) {
	mapping := &models.UserMapping{
		SlackID:      strings.TrimSpace(slackID),
		StrikeHandle: strings.TrimSpace(strikeHandle),
	}
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slack_id"}},
		DoNothing: true,
	}).Create(mapping).Error; err != nil {
		return nil, err
	}

	// Re-read so the caller always sees the stored row, created or not.
	var stored models.UserMapping
	if err := r.db.Where("slack_id = ?", mapping.SlackID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// Count returns the total number of stored mappings
func (r *userMappingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.UserMapping{}).Count(&count).Error
	return count, err
}
