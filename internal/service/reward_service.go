package service

import (
	"errors"
	"time"

	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/util"
	"waterball_lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// 每 1000 经验值升 1 级
const expPerLevel = 1000

// RewardService 是经验值的唯一发放口。
// 同一 (用户, 来源) 至多发放一次：key 锁 + 事务内复查 + 唯一索引三重保证。
type RewardService struct {
	RewardRepo   *repository.RewardRepository
	ProgressRepo *repository.ProgressRepository
	CatalogRepo  *repository.CatalogRepository
	UserRepo     *repository.UserRepository
	Locks        *util.KeyedMutex
	DB           *gorm.DB
}

func NewRewardService(
	rewardRepo *repository.RewardRepository,
	progressRepo *repository.ProgressRepository,
	catalogRepo *repository.CatalogRepository,
	userRepo *repository.UserRepository,
	locks *util.KeyedMutex,
	db *gorm.DB,
) *RewardService {
	return &RewardService{
		RewardRepo:   rewardRepo,
		ProgressRepo: progressRepo,
		CatalogRepo:  catalogRepo,
		UserRepo:     userRepo,
		Locks:        locks,
		DB:           db,
	}
}

type DeliverResult struct {
	ExpGained int                `json:"expGained"`
	Grant     *model.RewardGrant `json:"grant"`
	User      *model.User        `json:"user"`
}

// Deliver 交付已完成的单元并发放经验值
func (s *RewardService) Deliver(userID, lessonID uint) (*DeliverResult, error) {
	lesson, err := s.CatalogRepo.FindLesson(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}

	key := lessonKey(userID, lessonID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	var result *DeliverResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var progress model.LessonProgress
		if err := tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
			First(&progress).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrNotFound
			}
			return err
		}

		if !progress.Completed {
			return util.ErrNotCompleted
		}
		if progress.Delivered {
			return util.ErrAlreadyDelivered
		}

		var existing model.RewardGrant
		err := tx.Where("user_id = ? AND source = ? AND source_id = ?",
			userID, model.RewardSourceLesson, lessonID).First(&existing).Error
		if err == nil {
			return util.ErrAlreadyDelivered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		grant := &model.RewardGrant{
			UserID:    userID,
			Source:    model.RewardSourceLesson,
			SourceID:  lessonID,
			ExpAmount: lesson.RewardExp,
			GrantedAt: time.Now(),
		}
		if err := tx.Create(grant).Error; err != nil {
			return err
		}

		progress.Delivered = true
		if err := tx.Save(&progress).Error; err != nil {
			return err
		}

		user, err := addExperience(tx, userID, lesson.RewardExp)
		if err != nil {
			return err
		}

		result = &DeliverResult{ExpGained: lesson.RewardExp, Grant: grant, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.ExpGranted.WithLabelValues(string(model.RewardSourceLesson)).
		Add(float64(result.ExpGained))
	return result, nil
}

// GrantForGym 为道馆通关发放经验值。
// 只允许道馆状态机在 PASS 转移时调用，调用方已持有该道馆的 key 锁。
func (s *RewardService) GrantForGym(userID, gymID uint, amount int) (*model.RewardGrant, error) {
	var grant *model.RewardGrant
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.RewardGrant
		err := tx.Where("user_id = ? AND source = ? AND source_id = ?",
			userID, model.RewardSourceGym, gymID).First(&existing).Error
		if err == nil {
			return util.ErrAlreadyDelivered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		grant = &model.RewardGrant{
			UserID:    userID,
			Source:    model.RewardSourceGym,
			SourceID:  gymID,
			ExpAmount: amount,
			GrantedAt: time.Now(),
		}
		if err := tx.Create(grant).Error; err != nil {
			return err
		}

		_, err = addExperience(tx, userID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	monitoring.ExpGranted.WithLabelValues(string(model.RewardSourceGym)).
		Add(float64(amount))
	return grant, nil
}

// TotalExp 返回账本内该用户全部发放记录之和
func (s *RewardService) TotalExp(userID uint) (int, error) {
	return s.RewardRepo.SumByUser(userID)
}

func (s *RewardService) ListGrants(userID uint) ([]model.RewardGrant, error) {
	return s.RewardRepo.ListByUser(userID)
}

// addExperience 累加用户经验值并在事务内重算等级，等级只升不降
func addExperience(tx *gorm.DB, userID uint, amount int) (*model.User, error) {
	var user model.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, err
	}

	user.Exp += amount
	if newLevel := CalculateLevel(user.Exp); newLevel > user.Level {
		user.Level = newLevel
	}

	if err := tx.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CalculateLevel 根据经验值计算等级，最低 1 级
func CalculateLevel(exp int) int {
	if exp < 0 {
		return 1
	}
	return exp/expPerLevel + 1
}

// ExpForNextLevel 升到下一级所需的总经验值
func ExpForNextLevel(level int) int {
	return level * expPerLevel
}

// LevelProgress 当前等级内的进度百分比
func LevelProgress(exp, level int) int {
	expForCurrentLevel := (level - 1) * expPerLevel
	expNeeded := expPerLevel
	expInCurrentLevel := exp - expForCurrentLevel

	if expInCurrentLevel <= 0 {
		return 0
	}
	progress := expInCurrentLevel * 100 / expNeeded
	if progress > 100 {
		return 100
	}
	return progress
}
