package repository

import (
	"waterball_lms_backend/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository 提供课程目录（课程/章节/单元/道馆）的只读访问。
// 目录内容由外部系统维护，这里不提供写接口。
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) ListJourneys() ([]model.Journey, error) {
	var journeys []model.Journey
	err := r.DB.Find(&journeys).Error
	return journeys, err
}

func (r *CatalogRepository) FindJourney(id uint) (*model.Journey, error) {
	var journey model.Journey
	err := r.DB.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapter_order ASC")
		}).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_order ASC")
		}).
		Preload("Chapters.Gyms", func(db *gorm.DB) *gorm.DB {
			return db.Order("gym_order ASC")
		}).
		First(&journey, id).Error
	if err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *CatalogRepository) FindLesson(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CatalogRepository) FindGym(id uint) (*model.Gym, error) {
	var gym model.Gym
	if err := r.DB.First(&gym, id).Error; err != nil {
		return nil, err
	}
	return &gym, nil
}

// LessonIDsByChapter 返回章节内按顺序排列的单元 ID
func (r *CatalogRepository) LessonIDsByChapter(chapterID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Lesson{}).
		Where("chapter_id = ?", chapterID).
		Order("lesson_order ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *CatalogRepository) ListGymsByJourney(journeyID uint) ([]model.Gym, error) {
	var gyms []model.Gym
	err := r.DB.Where("journey_id = ?", journeyID).
		Order("gym_order ASC").Find(&gyms).Error
	return gyms, err
}

func (r *CatalogRepository) CountLessonsByJourney(journeyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).
		Where("journey_id = ?", journeyID).Count(&count).Error
	return count, err
}
