package service

import (
	"testing"
	"time"

	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/util"
	"waterball_lms_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db            *gorm.DB
	cfg           *config.Config
	userRepo      *repository.UserRepository
	catalogRepo   *repository.CatalogRepository
	progressRepo  *repository.ProgressRepository
	rewardRepo    *repository.RewardRepository
	gymRepo       *repository.GymRepository
	ownershipRepo *repository.UserJourneyRepository
	progress      *ProgressService
	reward        *RewardService
	access        *AccessService
	gym           *GymService
	leaderboard   *LeaderboardService
	user          *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.Progress.CompletionThreshold = 100
	cfg.Progress.GymPassingScore = 60
	cfg.Leaderboard.CacheTTLSeconds = 60
	cfg.Leaderboard.DefaultLimit = 100

	env := &testEnv{
		db:            db,
		cfg:           cfg,
		userRepo:      repository.NewUserRepository(db),
		catalogRepo:   repository.NewCatalogRepository(db),
		progressRepo:  repository.NewProgressRepository(db),
		rewardRepo:    repository.NewRewardRepository(db),
		gymRepo:       repository.NewGymRepository(db),
		ownershipRepo: repository.NewUserJourneyRepository(db),
	}

	locks := util.NewKeyedMutex()
	env.progress = NewProgressService(env.progressRepo, env.catalogRepo, env.ownershipRepo, locks, cfg)
	env.reward = NewRewardService(env.rewardRepo, env.progressRepo, env.catalogRepo, env.userRepo, locks, db)
	env.access = NewAccessService(env.catalogRepo, env.progressRepo, env.progress)
	env.gym = NewGymService(env.gymRepo, env.catalogRepo, env.access, env.reward, locks, cfg)
	env.leaderboard = NewLeaderboardService(
		env.userRepo, env.progressRepo, env.rewardRepo, env.gymRepo, env.ownershipRepo, nil, cfg)
	env.user = NewUserService(
		env.userRepo, env.progressRepo, env.gymRepo, env.rewardRepo, env.ownershipRepo, nil)

	return env
}

type fixture struct {
	journey  model.Journey
	chapter1 model.Chapter
	chapter2 model.Chapter
	lesson1  model.Lesson
	lesson2  model.Lesson
	lesson3  model.Lesson
	gym1     model.Gym
	gym2     model.Gym
	alice    model.User
	bob      model.User
}

func seedFixture(t *testing.T, env *testEnv) *fixture {
	t.Helper()
	f := &fixture{}

	f.journey = model.Journey{Name: "設計模式精通之旅", Slug: "design-patterns", IsPremium: true}
	require.NoError(t, env.db.Create(&f.journey).Error)

	f.chapter1 = model.Chapter{JourneyID: f.journey.ID, Name: "物件導向基礎", Order: 1}
	f.chapter2 = model.Chapter{JourneyID: f.journey.ID, Name: "經典設計模式", Order: 2}
	require.NoError(t, env.db.Create(&f.chapter1).Error)
	require.NoError(t, env.db.Create(&f.chapter2).Error)

	f.lesson1 = model.Lesson{ChapterID: f.chapter1.ID, JourneyID: f.journey.ID,
		Name: "類別與物件", Order: 1, VideoSeconds: 600, RewardExp: 100}
	f.lesson2 = model.Lesson{ChapterID: f.chapter1.ID, JourneyID: f.journey.ID,
		Name: "封裝與介面", Order: 2, VideoSeconds: 720, RewardExp: 100}
	f.lesson3 = model.Lesson{ChapterID: f.chapter2.ID, JourneyID: f.journey.ID,
		Name: "策略模式", Order: 1, VideoSeconds: 900, RewardExp: 150, PremiumOnly: true}
	require.NoError(t, env.db.Create(&f.lesson1).Error)
	require.NoError(t, env.db.Create(&f.lesson2).Error)
	require.NoError(t, env.db.Create(&f.lesson3).Error)

	f.gym1 = model.Gym{ChapterID: f.chapter1.ID, JourneyID: f.journey.ID,
		Name: "OOP 白色道館", Type: model.GymWhite, Order: 1, RewardExp: 300, BadgeName: "OOP 白帶"}
	f.gym2 = model.Gym{ChapterID: f.chapter2.ID, JourneyID: f.journey.ID,
		Name: "設計模式黑色道館", Type: model.GymBlack, Order: 1, RewardExp: 500, BadgeName: "設計模式黑帶"}
	require.NoError(t, env.db.Create(&f.gym1).Error)
	require.NoError(t, env.db.Create(&f.gym2).Error)

	f.alice = model.User{Username: "alice", Email: "alice@example.com", Password: "x", Level: 1}
	f.bob = model.User{Username: "bob", Email: "bob@example.com", Password: "x", Level: 1}
	require.NoError(t, env.db.Create(&f.alice).Error)
	require.NoError(t, env.db.Create(&f.bob).Error)

	return f
}

func grantOwnership(t *testing.T, env *testEnv, userID, journeyID uint, kind model.AccessKind, expiresAt *time.Time) {
	t.Helper()
	require.NoError(t, env.ownershipRepo.Grant(&model.UserJourney{
		UserID:     userID,
		JourneyID:  journeyID,
		AccessKind: kind,
		ExpiresAt:  expiresAt,
	}))
}

// completeLesson 把单元进度推到 100% 使其完成
func completeLesson(t *testing.T, env *testEnv, userID uint, lesson *model.Lesson) {
	t.Helper()
	progress, err := env.progress.RecordProgress(userID, lesson.ID, lesson.VideoSeconds, lesson.VideoSeconds)
	require.NoError(t, err)
	require.True(t, progress.Completed)
}
