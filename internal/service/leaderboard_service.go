package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/repository"
	"waterball_lms_backend/internal/util"
	"waterball_lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// LeaderboardService 生成全站/课程两种范围的排行榜。
// 排名计算是纯函数；Redis 只做结果缓存，缓存不可用时直接回源
type LeaderboardService struct {
	UserRepo      *repository.UserRepository
	ProgressRepo  *repository.ProgressRepository
	RewardRepo    *repository.RewardRepository
	GymRepo       *repository.GymRepository
	OwnershipRepo *repository.UserJourneyRepository
	Redis         *redis.Client
	Cfg           *config.Config
}

func NewLeaderboardService(
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	rewardRepo *repository.RewardRepository,
	gymRepo *repository.GymRepository,
	ownershipRepo *repository.UserJourneyRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LeaderboardService {
	return &LeaderboardService{
		UserRepo:      userRepo,
		ProgressRepo:  progressRepo,
		RewardRepo:    rewardRepo,
		GymRepo:       gymRepo,
		OwnershipRepo: ownershipRepo,
		Redis:         redisClient,
		Cfg:           cfg,
	}
}

// LeaderboardQuery 排行榜查询参数，零值字段取默认
type LeaderboardQuery struct {
	Type      model.LeaderboardType
	TimeRange model.LeaderboardTimeRange
	SortBy    model.LeaderboardSortBy
	JourneyID uint
	Limit     int
	UserID    uint
}

// Get 返回排行榜。同一组 (type, journey, timeRange, sortBy) 的榜单
// 在 TTL 内共享缓存；IsCurrentUser 标记在缓存之外按请求者补齐
func (s *LeaderboardService) Get(ctx context.Context, query LeaderboardQuery) (*model.LeaderboardResponse, error) {
	if err := s.normalize(&query); err != nil {
		return nil, err
	}

	entries, err := s.cachedEntries(ctx, query)
	if err != nil {
		return nil, err
	}

	response := &model.LeaderboardResponse{
		Type:         query.Type,
		TimeRange:    query.TimeRange,
		SortBy:       query.SortBy,
		TotalEntries: len(entries),
		UpdatedAt:    time.Now(),
	}

	limit := query.Limit
	if limit > len(entries) {
		limit = len(entries)
	}
	response.Entries = make([]model.LeaderboardEntry, limit)
	copy(response.Entries, entries[:limit])

	if query.UserID != 0 {
		for i := range response.Entries {
			if response.Entries[i].UserID == query.UserID {
				response.Entries[i].IsCurrentUser = true
			}
		}
		if entry := FindUserRank(entries, query.UserID); entry != nil {
			marked := *entry
			marked.IsCurrentUser = true
			response.CurrentUserEntry = &marked
		}
	}

	return response, nil
}

// Nearby 返回请求者前后各 radius 名的榜单切片
func (s *LeaderboardService) Nearby(ctx context.Context, query LeaderboardQuery, radius int) ([]model.LeaderboardEntry, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative", util.ErrInvalidInput)
	}
	if err := s.normalize(&query); err != nil {
		return nil, err
	}

	entries, err := s.cachedEntries(ctx, query)
	if err != nil {
		return nil, err
	}

	nearby := NearbyRanks(entries, query.UserID, radius)
	for i := range nearby {
		if nearby[i].UserID == query.UserID {
			nearby[i].IsCurrentUser = true
		}
	}
	return nearby, nil
}

func (s *LeaderboardService) normalize(query *LeaderboardQuery) error {
	if query.Type == "" {
		query.Type = model.LeaderboardGlobal
	}
	if query.TimeRange == "" {
		query.TimeRange = model.TimeRangeAllTime
	}
	if query.SortBy == "" {
		query.SortBy = model.SortByExp
	}
	if query.Limit <= 0 {
		query.Limit = s.Cfg.Leaderboard.DefaultLimit
	}

	switch query.Type {
	case model.LeaderboardGlobal, model.LeaderboardJourney:
	default:
		return fmt.Errorf("%w: unknown leaderboard type %q", util.ErrInvalidInput, query.Type)
	}
	if query.Type == model.LeaderboardJourney && query.JourneyID == 0 {
		return fmt.Errorf("%w: journey leaderboard requires journeyId", util.ErrInvalidInput)
	}

	switch query.TimeRange {
	case model.TimeRangeAllTime:
	case model.TimeRangeThisWeek, model.TimeRangeThisMonth:
		// 周期榜只有增量经验有意义，其余维度一律归一到 EXP_GAINED
		query.SortBy = model.SortByExpGained
	default:
		return fmt.Errorf("%w: unknown time range %q", util.ErrInvalidInput, query.TimeRange)
	}

	switch query.SortBy {
	case model.SortByExp, model.SortByLevel, model.SortByLessonsCompleted,
		model.SortByGymsPassed, model.SortByExpGained:
	default:
		return fmt.Errorf("%w: unknown sort key %q", util.ErrInvalidInput, query.SortBy)
	}

	return nil
}

func (s *LeaderboardService) cacheKey(query LeaderboardQuery) string {
	return fmt.Sprintf("leaderboard:%s:%d:%s:%s",
		query.Type, query.JourneyID, query.TimeRange, query.SortBy)
}

func (s *LeaderboardService) cachedEntries(ctx context.Context, query LeaderboardQuery) ([]model.LeaderboardEntry, error) {
	if s.Redis == nil {
		return s.buildEntries(query)
	}

	key := s.cacheKey(query)
	cached, err := s.Redis.Get(ctx, key).Result()
	if err == nil {
		var entries []model.LeaderboardEntry
		if err := json.Unmarshal([]byte(cached), &entries); err == nil {
			return entries, nil
		}
		logger.Warn("排行榜缓存数据损坏，回源重建", zap.String("key", key))
	} else if err != redis.Nil {
		logger.Warn("读取排行榜缓存失败", zap.String("key", key), zap.Error(err))
	}

	entries, err := s.buildEntries(query)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(entries); err == nil {
		ttl := time.Duration(s.Cfg.Leaderboard.CacheTTLSeconds) * time.Second
		if err := s.Redis.Set(ctx, key, payload, ttl).Err(); err != nil {
			logger.Warn("写入排行榜缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return entries, nil
}

func (s *LeaderboardService) buildEntries(query LeaderboardQuery) ([]model.LeaderboardEntry, error) {
	snapshots, err := s.buildSnapshots(query)
	if err != nil {
		return nil, err
	}
	return Rank(snapshots, query.SortBy), nil
}

// buildSnapshots 汇集参与排名的用户统计快照。
// JOURNEY 榜只包含持有该课程的用户，统计也限定在课程范围内
func (s *LeaderboardService) buildSnapshots(query LeaderboardQuery) ([]model.RankSnapshot, error) {
	var users []model.User
	var journeyID *uint
	var err error

	if query.Type == model.LeaderboardJourney {
		journeyID = &query.JourneyID
		ids, err := s.OwnershipRepo.OwnerUserIDs(query.JourneyID)
		if err != nil {
			return nil, err
		}
		users, err = s.UserRepo.ListByIDs(ids)
		if err != nil {
			return nil, err
		}
	} else {
		users, err = s.UserRepo.ListAll()
		if err != nil {
			return nil, err
		}
	}

	lessonCounts, err := s.ProgressRepo.CompletedCountByUser(journeyID)
	if err != nil {
		return nil, err
	}
	gymCounts, err := s.GymRepo.PassedCountByUser(journeyID)
	if err != nil {
		return nil, err
	}

	var gainedExp map[uint]int
	if query.TimeRange != model.TimeRangeAllTime {
		gainedExp, err = s.RewardRepo.SumSinceByUser(periodStart(query.TimeRange, time.Now()))
		if err != nil {
			return nil, err
		}
	}

	snapshots := make([]model.RankSnapshot, 0, len(users))
	for i := range users {
		user := &users[i]
		snapshots = append(snapshots, model.RankSnapshot{
			UserID:           user.ID,
			Username:         user.Username,
			Nickname:         user.Nickname,
			PictureURL:       user.PictureURL,
			Occupation:       user.Occupation,
			Level:            user.Level,
			Exp:              user.Exp,
			LessonsCompleted: lessonCounts[user.ID],
			GymsPassed:       gymCounts[user.ID],
			PeriodGainedExp:  gainedExp[user.ID],
			IsPremium:        user.IsPremium,
		})
	}
	return snapshots, nil
}

// periodStart 计算时间范围的起点。周从周一 00:00 起算
func periodStart(timeRange model.LeaderboardTimeRange, now time.Time) time.Time {
	switch timeRange {
	case model.TimeRangeThisWeek:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		day := now.AddDate(0, 0, -(weekday - 1))
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
	case model.TimeRangeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// Rank 按指定维度降序排名。同分按 userID 升序保证结果确定，
// 名次从 1 起连续无间断，同分也各占一个名次
func Rank(snapshots []model.RankSnapshot, sortBy model.LeaderboardSortBy) []model.LeaderboardEntry {
	sorted := make([]model.RankSnapshot, len(snapshots))
	copy(sorted, snapshots)

	sort.Slice(sorted, func(i, j int) bool {
		mi, mj := metricOf(&sorted[i], sortBy), metricOf(&sorted[j], sortBy)
		if mi != mj {
			return mi > mj
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	entries := make([]model.LeaderboardEntry, len(sorted))
	for i := range sorted {
		entries[i] = model.LeaderboardEntry{Rank: i + 1, RankSnapshot: sorted[i]}
	}
	return entries
}

func metricOf(s *model.RankSnapshot, sortBy model.LeaderboardSortBy) int {
	switch sortBy {
	case model.SortByLevel:
		return s.Level
	case model.SortByLessonsCompleted:
		return s.LessonsCompleted
	case model.SortByGymsPassed:
		return s.GymsPassed
	case model.SortByExpGained:
		return s.PeriodGainedExp
	default:
		return s.Exp
	}
}

// FindUserRank 在已排名的榜单里查找用户，找不到返回 nil
func FindUserRank(entries []model.LeaderboardEntry, userID uint) *model.LeaderboardEntry {
	for i := range entries {
		if entries[i].UserID == userID {
			entry := entries[i]
			return &entry
		}
	}
	return nil
}

// NearbyRanks 返回用户前后各 radius 名的切片，用户不在榜上时返回空
func NearbyRanks(entries []model.LeaderboardEntry, userID uint, radius int) []model.LeaderboardEntry {
	index := -1
	for i := range entries {
		if entries[i].UserID == userID {
			index = i
			break
		}
	}
	if index < 0 {
		return []model.LeaderboardEntry{}
	}

	start := index - radius
	if start < 0 {
		start = 0
	}
	end := index + radius + 1
	if end > len(entries) {
		end = len(entries)
	}

	nearby := make([]model.LeaderboardEntry, end-start)
	copy(nearby, entries[start:end])
	return nearby
}
