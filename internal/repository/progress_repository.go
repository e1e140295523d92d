package repository

import (
	"waterball_lms_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserAndLesson(userID, lessonID uint) (*model.LessonProgress, error) {
	var progress model.LessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.LessonProgress, error) {
	var progresses []model.LessonProgress
	err := r.DB.Where("user_id = ?", userID).
		Order("lesson_id ASC").Find(&progresses).Error
	return progresses, err
}

func (r *ProgressRepository) Create(progress *model.LessonProgress) error {
	return r.DB.Create(progress).Error
}

func (r *ProgressRepository) Save(progress *model.LessonProgress) error {
	return r.DB.Save(progress).Error
}

// CompletedLessonIDs 返回用户在一组单元里已完成的单元 ID 集合
func (r *ProgressRepository) CompletedLessonIDs(userID uint, lessonIDs []uint) (map[uint]bool, error) {
	completed := make(map[uint]bool, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return completed, nil
	}
	var ids []uint
	err := r.DB.Model(&model.LessonProgress{}).
		Where("user_id = ? AND lesson_id IN ? AND completed = ?", userID, lessonIDs, true).
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

func (r *ProgressRepository) CountCompletedByUserInJourney(userID, journeyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.user_id = ? AND lesson_progresses.completed = ? AND lessons.journey_id = ?",
			userID, true, journeyID).
		Count(&count).Error
	return count, err
}

type userCount struct {
	UserID uint
	Count  int
}

// CompletedCountByUser 统计每个用户已完成的单元数；journeyID 非空时只统计该课程
func (r *ProgressRepository) CompletedCountByUser(journeyID *uint) (map[uint]int, error) {
	query := r.DB.Model(&model.LessonProgress{}).
		Select("lesson_progresses.user_id AS user_id, COUNT(*) AS count").
		Where("lesson_progresses.completed = ?", true).
		Group("lesson_progresses.user_id")
	if journeyID != nil {
		query = query.
			Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
			Where("lessons.journey_id = ?", *journeyID)
	}

	var rows []userCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Count
	}
	return counts, nil
}
