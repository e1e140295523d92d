package repository

import (
	"waterball_lms_backend/internal/model"

	"gorm.io/gorm"
)

type UserJourneyRepository struct {
	DB *gorm.DB
}

func NewUserJourneyRepository(db *gorm.DB) *UserJourneyRepository {
	return &UserJourneyRepository{DB: db}
}

func (r *UserJourneyRepository) FindOwnership(userID, journeyID uint) (*model.UserJourney, error) {
	var ownership model.UserJourney
	err := r.DB.Where("user_id = ? AND journey_id = ?", userID, journeyID).
		First(&ownership).Error
	if err != nil {
		return nil, err
	}
	return &ownership, nil
}

func (r *UserJourneyRepository) Grant(ownership *model.UserJourney) error {
	return r.DB.Create(ownership).Error
}

// OwnerUserIDs 返回持有课程的用户 ID（有效期在读取侧判断）
func (r *UserJourneyRepository) OwnerUserIDs(journeyID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.UserJourney{}).
		Where("journey_id = ? AND access_kind <> ?", journeyID, model.AccessNone).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *UserJourneyRepository) ListByUser(userID uint) ([]model.UserJourney, error) {
	var ownerships []model.UserJourney
	err := r.DB.Where("user_id = ?", userID).Find(&ownerships).Error
	return ownerships, err
}
