package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/util"
	"waterball_lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// ProgressService 维护每个 (用户, 单元) 的观看进度。
// 所有写操作按 key 串行化，completed 一旦为 true 不再回退。
type ProgressService struct {
	ProgressRepo  *repository.ProgressRepository
	CatalogRepo   *repository.CatalogRepository
	OwnershipRepo *repository.UserJourneyRepository
	Locks         *util.KeyedMutex
	Cfg           *config.Config
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	catalogRepo *repository.CatalogRepository,
	ownershipRepo *repository.UserJourneyRepository,
	locks *util.KeyedMutex,
	cfg *config.Config,
) *ProgressService {
	return &ProgressService{
		ProgressRepo:  progressRepo,
		CatalogRepo:   catalogRepo,
		OwnershipRepo: ownershipRepo,
		Locks:         locks,
		Cfg:           cfg,
	}
}

func lessonKey(userID, lessonID uint) string {
	return fmt.Sprintf("lesson:%d:%d", userID, lessonID)
}

// RecordProgress 记录一次播放进度回报。
// duration 首次写入后不可变，之后的回报只取 currentTime；
// 完成状态单调，低于阈值的后续回报不会撤销 completed。
func (s *ProgressService) RecordProgress(userID, lessonID uint, currentTime, duration float64) (*model.LessonProgress, error) {
	lesson, err := s.CatalogRepo.FindLesson(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	if lesson.PremiumOnly {
		if err := s.checkJourneyAccess(userID, lesson.JourneyID); err != nil {
			return nil, err
		}
	}

	key := lessonKey(userID, lessonID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	progress, err := s.ProgressRepo.FindByUserAndLesson(userID, lessonID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		progress = &model.LessonProgress{UserID: userID, LessonID: lessonID}
	}

	// duration 建立后即锁定，避免事后改动使已有的完成状态失效
	effectiveDuration := progress.Duration
	if effectiveDuration <= 0 {
		if duration <= 0 {
			return nil, fmt.Errorf("%w: duration must be positive", util.ErrInvalidInput)
		}
		effectiveDuration = duration
	}

	if currentTime < 0 {
		currentTime = 0
	}
	if currentTime > effectiveDuration {
		currentTime = effectiveDuration
	}

	percentage := math.Min(100, currentTime/effectiveDuration*100)

	wasCompleted := progress.Completed
	progress.CurrentTime = currentTime
	progress.Duration = effectiveDuration
	progress.Percentage = percentage
	progress.Completed = wasCompleted || percentage >= s.Cfg.Progress.CompletionThreshold
	progress.LastUpdated = time.Now()

	if err := s.ProgressRepo.Save(progress); err != nil {
		return nil, err
	}

	if progress.Completed && !wasCompleted {
		monitoring.LessonsCompleted.Inc()
	}

	return progress, nil
}

func (s *ProgressService) GetProgress(userID, lessonID uint) (*model.LessonProgress, error) {
	progress, err := s.ProgressRepo.FindByUserAndLesson(userID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) ListProgress(userID uint) ([]model.LessonProgress, error) {
	return s.ProgressRepo.ListByUser(userID)
}

// IsAccessible 判断章节内第 lessonOrder 个单元是否可访问。
// 第一个单元总是可访问；其余单元要求前一个单元已完成。
// 前置单元没有进度记录时视为可访问（沿用原有的宽松策略）。
func (s *ProgressService) IsAccessible(userID uint, lessonOrder int, chapterLessons []uint) bool {
	if lessonOrder <= 1 {
		return true
	}
	if lessonOrder-2 >= len(chapterLessons) {
		return true
	}

	previousLessonID := chapterLessons[lessonOrder-2]
	progress, err := s.ProgressRepo.FindByUserAndLesson(userID, previousLessonID)
	if err != nil {
		return true
	}
	return progress.Completed
}

type JourneyCompletion struct {
	CompletedLessons int `json:"completedLessons"`
	TotalLessons     int `json:"totalLessons"`
	Percentage       int `json:"percentage"`
}

func (s *ProgressService) JourneyCompletion(userID, journeyID uint) (*JourneyCompletion, error) {
	total, err := s.CatalogRepo.CountLessonsByJourney(journeyID)
	if err != nil {
		return nil, err
	}
	completed, err := s.ProgressRepo.CountCompletedByUserInJourney(userID, journeyID)
	if err != nil {
		return nil, err
	}

	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(completed) / float64(total) * 100))
	}

	return &JourneyCompletion{
		CompletedLessons: int(completed),
		TotalLessons:     int(total),
		Percentage:       percentage,
	}, nil
}

func (s *ProgressService) checkJourneyAccess(userID, journeyID uint) error {
	ownership, err := s.OwnershipRepo.FindOwnership(userID, journeyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPremiumRequired
		}
		return err
	}
	if !ownership.Valid(time.Now()) {
		return util.ErrPremiumRequired
	}
	return nil
}
