package service

import (
	"errors"
	"fmt"
	"time"

	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/util"
	"waterball_lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// GymService 实现道馆挑战状态机：
// LOCKED → AVAILABLE → IN_PROGRESS → PASSED（终态）。
// 提交不及格回到 AVAILABLE；attempts 只在发起挑战时累加。
type GymService struct {
	GymRepo     *repository.GymRepository
	CatalogRepo *repository.CatalogRepository
	Access      *AccessService
	Reward      *RewardService
	Locks       *util.KeyedMutex
	Cfg         *config.Config
}

func NewGymService(
	gymRepo *repository.GymRepository,
	catalogRepo *repository.CatalogRepository,
	access *AccessService,
	reward *RewardService,
	locks *util.KeyedMutex,
	cfg *config.Config,
) *GymService {
	return &GymService{
		GymRepo:     gymRepo,
		CatalogRepo: catalogRepo,
		Access:      access,
		Reward:      reward,
		Locks:       locks,
		Cfg:         cfg,
	}
}

func gymKey(userID, gymID uint) string {
	return fmt.Sprintf("gym:%d:%d", userID, gymID)
}

// Record 返回用户对道馆的挑战记录，首次评估时惰性创建。
// 解锁单调：LOCKED 记录在满足条件后提升为 AVAILABLE，反向不发生。
func (s *GymService) Record(userID, gymID uint) (*model.GymChallengeRecord, error) {
	gym, err := s.findGym(gymID)
	if err != nil {
		return nil, err
	}

	key := gymKey(userID, gymID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	return s.recordLocked(userID, gym)
}

// StartAttempt 发起一次挑战：AVAILABLE/IN_PROGRESS → IN_PROGRESS，attempts+1
func (s *GymService) StartAttempt(userID, gymID uint) (*model.GymChallengeRecord, error) {
	gym, err := s.findGym(gymID)
	if err != nil {
		return nil, err
	}

	key := gymKey(userID, gymID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	record, err := s.recordLocked(userID, gym)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case model.GymLocked:
		return nil, util.ErrGymLocked
	case model.GymPassed:
		return nil, util.ErrAlreadyPassed
	}

	now := time.Now()
	record.Status = model.GymInProgress
	record.Attempts++
	record.LastAttemptAt = &now
	record.LastUpdated = now

	if err := s.GymRepo.Save(record); err != nil {
		return nil, err
	}

	monitoring.GymAttempts.Inc()
	return record, nil
}

// SubmitAttempt 提交挑战结果。
// score ≥ 及格线转 PASSED 并经账本发放奖励；否则回到 AVAILABLE，attempts 不变。
func (s *GymService) SubmitAttempt(userID, gymID uint, score int) (*model.GymChallengeRecord, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: score must be within [0, 100]", util.ErrInvalidInput)
	}

	gym, err := s.findGym(gymID)
	if err != nil {
		return nil, err
	}

	key := gymKey(userID, gymID)
	s.Locks.Lock(key)
	defer s.Locks.Unlock(key)

	record, err := s.recordLocked(userID, gym)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case model.GymPassed:
		return nil, util.ErrAlreadyPassed
	case model.GymInProgress:
		// 只有进行中的挑战可以提交
	default:
		return nil, util.ErrInvalidState
	}

	now := time.Now()
	record.Score = &score
	record.LastUpdated = now

	if score >= s.Cfg.Progress.GymPassingScore {
		record.Status = model.GymPassed
		record.PassedAt = &now

		// 先走账本再落状态：重复提交会被 AlreadyPassed 拦住，
		// 账本的唯一性保证即使落库失败重试也不会重复加经验
		if _, err := s.Reward.GrantForGym(userID, gymID, gym.RewardExp); err != nil &&
			!errors.Is(err, util.ErrAlreadyDelivered) {
			return nil, err
		}
		monitoring.GymPasses.Inc()
	} else {
		record.Status = model.GymAvailable
	}

	if err := s.GymRepo.Save(record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecords 返回课程内全部道馆的挑战记录，未评估过的会被惰性创建
func (s *GymService) ListRecords(userID, journeyID uint) ([]model.GymChallengeRecord, error) {
	gyms, err := s.CatalogRepo.ListGymsByJourney(journeyID)
	if err != nil {
		return nil, err
	}

	records := make([]model.GymChallengeRecord, 0, len(gyms))
	for i := range gyms {
		record, err := s.Record(userID, gyms[i].ID)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// JourneyGymProgress 汇总用户在课程内的道馆战绩与徽章
func (s *GymService) JourneyGymProgress(userID, journeyID uint) (*model.UserGymProgress, error) {
	gyms, err := s.CatalogRepo.ListGymsByJourney(journeyID)
	if err != nil {
		return nil, err
	}
	passed, err := s.GymRepo.PassedRecordsByUserAndJourney(userID, journeyID)
	if err != nil {
		return nil, err
	}

	gymByID := make(map[uint]*model.Gym, len(gyms))
	for i := range gyms {
		gymByID[gyms[i].ID] = &gyms[i]
	}

	progress := &model.UserGymProgress{
		UserID:    userID,
		JourneyID: journeyID,
		TotalGyms: len(gyms),
		Badges:    []model.GymBadge{},
	}
	for _, record := range passed {
		gym, ok := gymByID[record.GymID]
		if !ok {
			continue
		}
		progress.PassedGyms++
		switch gym.Type {
		case model.GymWhite:
			progress.WhitePassedGyms++
		case model.GymBlack:
			progress.BlackPassedGyms++
		}
		if record.PassedAt != nil {
			progress.Badges = append(progress.Badges, model.GymBadge{
				Name:      gym.BadgeName,
				GymID:     gym.ID,
				ImageURL:  gym.BadgeURL,
				JourneyID: gym.JourneyID,
				ChapterID: gym.ChapterID,
				EarnedAt:  *record.PassedAt,
			})
		}
	}
	return progress, nil
}

func (s *GymService) findGym(gymID uint) (*model.Gym, error) {
	gym, err := s.CatalogRepo.FindGym(gymID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	return gym, nil
}

// recordLocked 取出或创建挑战记录，调用方必须已持有该 key 的锁
func (s *GymService) recordLocked(userID uint, gym *model.Gym) (*model.GymChallengeRecord, error) {
	record, err := s.GymRepo.FindRecord(userID, gym.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		unlockable, err := s.Access.GymUnlockable(userID, gym)
		if err != nil {
			return nil, err
		}
		status := model.GymLocked
		if unlockable {
			status = model.GymAvailable
		}

		record = &model.GymChallengeRecord{
			UserID:      userID,
			GymID:       gym.ID,
			Status:      status,
			LastUpdated: time.Now(),
		}
		if err := s.GymRepo.Create(record); err != nil {
			return nil, err
		}
		return record, nil
	}

	if record.Status == model.GymLocked {
		unlockable, err := s.Access.GymUnlockable(userID, gym)
		if err != nil {
			return nil, err
		}
		if unlockable {
			record.Status = model.GymAvailable
			record.LastUpdated = time.Now()
			if err := s.GymRepo.Save(record); err != nil {
				return nil, err
			}
		}
	}

	return record, nil
}
