package service

import (
	"errors"

	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/util"

	"gorm.io/gorm"
)

// AccessService 回答“用户现在能否接触某个单元/道馆”。
// 只读，不落任何状态；道馆解锁的落库由状态机在自己的转移里完成。
type AccessService struct {
	CatalogRepo  *repository.CatalogRepository
	ProgressRepo *repository.ProgressRepository
	Progress     *ProgressService
}

func NewAccessService(
	catalogRepo *repository.CatalogRepository,
	progressRepo *repository.ProgressRepository,
	progress *ProgressService,
) *AccessService {
	return &AccessService{
		CatalogRepo:  catalogRepo,
		ProgressRepo: progressRepo,
		Progress:     progress,
	}
}

// CanAccessLesson 依章节内顺序判断单元可达性
func (s *AccessService) CanAccessLesson(userID, lessonID uint) (bool, error) {
	lesson, err := s.CatalogRepo.FindLesson(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrNotFound
		}
		return false, err
	}

	chapterLessons, err := s.CatalogRepo.LessonIDsByChapter(lesson.ChapterID)
	if err != nil {
		return false, err
	}

	order := lesson.Order
	for i, id := range chapterLessons {
		if id == lessonID {
			order = i + 1
			break
		}
	}

	return s.Progress.IsAccessible(userID, order, chapterLessons), nil
}

// GymUnlockable 判断道馆是否满足解锁条件：所属章节的全部单元已完成
func (s *AccessService) GymUnlockable(userID uint, gym *model.Gym) (bool, error) {
	chapterLessons, err := s.CatalogRepo.LessonIDsByChapter(gym.ChapterID)
	if err != nil {
		return false, err
	}

	completed, err := s.ProgressRepo.CompletedLessonIDs(userID, chapterLessons)
	if err != nil {
		return false, err
	}

	for _, id := range chapterLessons {
		if !completed[id] {
			return false, nil
		}
	}
	return true, nil
}
