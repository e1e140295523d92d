package repository

import (
	"time"

	"waterball_lms_backend/internal/model"

	"gorm.io/gorm"
)

type RewardRepository struct {
	DB *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{DB: db}
}

func (r *RewardRepository) FindGrant(userID uint, source model.RewardSource, sourceID uint) (*model.RewardGrant, error) {
	var grant model.RewardGrant
	err := r.DB.Where("user_id = ? AND source = ? AND source_id = ?", userID, source, sourceID).
		First(&grant).Error
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

func (r *RewardRepository) ListByUser(userID uint) ([]model.RewardGrant, error) {
	var grants []model.RewardGrant
	err := r.DB.Where("user_id = ?", userID).
		Order("granted_at ASC").Find(&grants).Error
	return grants, err
}

func (r *RewardRepository) SumByUser(userID uint) (int, error) {
	var total int64
	err := r.DB.Model(&model.RewardGrant{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(exp_amount), 0)").
		Scan(&total).Error
	return int(total), err
}

type userSum struct {
	UserID uint
	Total  int
}

// SumSinceByUser 统计 since 之后每个用户获得的经验值，用于周/月排行的增量
func (r *RewardRepository) SumSinceByUser(since time.Time) (map[uint]int, error) {
	var rows []userSum
	err := r.DB.Model(&model.RewardGrant{}).
		Select("user_id AS user_id, COALESCE(SUM(exp_amount), 0) AS total").
		Where("granted_at >= ?", since).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[uint]int, len(rows))
	for _, row := range rows {
		sums[row.UserID] = row.Total
	}
	return sums, nil
}
