package repository

import (
	"waterball_lms_backend/internal/model"

	"gorm.io/gorm"
)

type GymRepository struct {
	DB *gorm.DB
}

func NewGymRepository(db *gorm.DB) *GymRepository {
	return &GymRepository{DB: db}
}

func (r *GymRepository) FindRecord(userID, gymID uint) (*model.GymChallengeRecord, error) {
	var record model.GymChallengeRecord
	err := r.DB.Where("user_id = ? AND gym_id = ?", userID, gymID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GymRepository) Create(record *model.GymChallengeRecord) error {
	return r.DB.Create(record).Error
}

func (r *GymRepository) Save(record *model.GymChallengeRecord) error {
	return r.DB.Save(record).Error
}

func (r *GymRepository) ListByUserAndJourney(userID, journeyID uint) ([]model.GymChallengeRecord, error) {
	var records []model.GymChallengeRecord
	err := r.DB.
		Joins("JOIN gyms ON gyms.id = gym_challenge_records.gym_id").
		Where("gym_challenge_records.user_id = ? AND gyms.journey_id = ?", userID, journeyID).
		Order("gyms.gym_order ASC").
		Find(&records).Error
	return records, err
}

// PassedRecordsByUserAndJourney 返回用户在课程内已通关的记录
func (r *GymRepository) PassedRecordsByUserAndJourney(userID, journeyID uint) ([]model.GymChallengeRecord, error) {
	var records []model.GymChallengeRecord
	err := r.DB.
		Joins("JOIN gyms ON gyms.id = gym_challenge_records.gym_id").
		Where("gym_challenge_records.user_id = ? AND gym_challenge_records.status = ? AND gyms.journey_id = ?",
			userID, model.GymPassed, journeyID).
		Find(&records).Error
	return records, err
}

type gymUserCount struct {
	UserID uint
	Count  int
}

// PassedCountByUser 统计每个用户通关的道馆数；journeyID 非空时只统计该课程
func (r *GymRepository) PassedCountByUser(journeyID *uint) (map[uint]int, error) {
	query := r.DB.Model(&model.GymChallengeRecord{}).
		Select("gym_challenge_records.user_id AS user_id, COUNT(*) AS count").
		Where("gym_challenge_records.status = ?", model.GymPassed).
		Group("gym_challenge_records.user_id")
	if journeyID != nil {
		query = query.
			Joins("JOIN gyms ON gyms.id = gym_challenge_records.gym_id").
			Where("gyms.journey_id = ?", *journeyID)
	}

	var rows []gymUserCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}
