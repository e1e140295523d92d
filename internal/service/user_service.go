package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo      *repository.UserRepository
	ProgressRepo  *repository.ProgressRepository
	GymRepo       *repository.GymRepository
	RewardRepo    *repository.RewardRepository
	OwnershipRepo *repository.UserJourneyRepository
	Storage       *StorageService
}

func NewUserService(
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	gymRepo *repository.GymRepository,
	rewardRepo *repository.RewardRepository,
	ownershipRepo *repository.UserJourneyRepository,
	storage *StorageService,
) *UserService {
	return &UserService{
		UserRepo:      userRepo,
		ProgressRepo:  progressRepo,
		GymRepo:       gymRepo,
		RewardRepo:    rewardRepo,
		OwnershipRepo: ownershipRepo,
		Storage:       storage,
	}
}

// UserProfile 个人主页数据：账号信息 + 等级进度 + 学习统计
// swagger:model UserProfile
type UserProfile struct {
	User             *model.User         `json:"user"`
	ExpForNextLevel  int                 `json:"expForNextLevel"`
	LevelProgress    int                 `json:"levelProgress"`
	LessonsCompleted int                 `json:"lessonsCompleted"`
	GymsPassed       int                 `json:"gymsPassed"`
	Journeys         []model.UserJourney `json:"journeys"`
}

func (s *UserService) Profile(userID uint) (*UserProfile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	lessonCounts, err := s.ProgressRepo.CompletedCountByUser(nil)
	if err != nil {
		return nil, err
	}
	gymCounts, err := s.GymRepo.PassedCountByUser(nil)
	if err != nil {
		return nil, err
	}
	journeys, err := s.OwnershipRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		User:             user,
		ExpForNextLevel:  ExpForNextLevel(user.Level),
		LevelProgress:    LevelProgress(user.Exp, user.Level),
		LessonsCompleted: lessonCounts[userID],
		GymsPassed:       gymCounts[userID],
		Journeys:         journeys,
	}, nil
}

type ProfileUpdate struct {
	Nickname   string           `json:"nickname"`
	Occupation model.Occupation `json:"occupation"`
}

func (s *UserService) UpdateProfile(userID uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if update.Nickname != "" {
		user.Nickname = update.Nickname
	}
	if update.Occupation != "" {
		user.Occupation = update.Occupation
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadAvatar 上传头像并更新用户的 pictureUrl
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.Storage == nil {
		return "", errors.New("object storage is not configured")
	}

	ext := filepath.Ext(filename)
	objectName := fmt.Sprintf("avatars/%d/%s%s", userID, model.GenerateUUID(), ext)

	url, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", err
	}
	if err := s.UserRepo.UpdateAvatar(userID, url); err != nil {
		return "", err
	}
	return url, nil
}

// GrantJourney 授予课程持有权；expiresAt 为空表示永久持有
func (s *UserService) GrantJourney(userID, journeyID uint, expiresAt *time.Time) (*model.UserJourney, error) {
	kind := model.AccessPermanent
	if expiresAt != nil {
		kind = model.AccessExpiring
	}

	ownership := &model.UserJourney{
		UserID:     userID,
		JourneyID:  journeyID,
		AccessKind: kind,
		ExpiresAt:  expiresAt,
	}
	if err := s.OwnershipRepo.Grant(ownership); err != nil {
		return nil, err
	}
	return ownership, nil
}

func (s *UserService) Touch(userID uint) error {
	return s.UserRepo.UpdateLastSeen(userID)
}
