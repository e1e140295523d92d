package model

import "time"

type LeaderboardType string

const (
	LeaderboardGlobal  LeaderboardType = "GLOBAL"
	LeaderboardJourney LeaderboardType = "JOURNEY"
)

type LeaderboardTimeRange string

const (
	TimeRangeAllTime   LeaderboardTimeRange = "ALL_TIME"
	TimeRangeThisWeek  LeaderboardTimeRange = "THIS_WEEK"
	TimeRangeThisMonth LeaderboardTimeRange = "THIS_MONTH"
)

type LeaderboardSortBy string

const (
	SortByExp              LeaderboardSortBy = "EXP"
	SortByLevel            LeaderboardSortBy = "LEVEL"
	SortByLessonsCompleted LeaderboardSortBy = "LESSONS_COMPLETED"
	SortByGymsPassed       LeaderboardSortBy = "GYMS_PASSED"
	SortByExpGained        LeaderboardSortBy = "EXP_GAINED"
)

// RankSnapshot 排行榜输入：单个用户的统计快照
type RankSnapshot struct {
	UserID           uint       `json:"userId"`
	Username         string     `json:"username"`
	Nickname         string     `json:"nickname,omitempty"`
	PictureURL       string     `json:"pictureUrl"`
	Occupation       Occupation `json:"occupation"`
	Level            int        `json:"level"`
	Exp              int        `json:"exp"`
	LessonsCompleted int        `json:"lessonsCompleted"`
	GymsPassed       int        `json:"gymsPassed"`
	PeriodGainedExp  int        `json:"expGained"`
	IsPremium        bool       `json:"isPremium"`
}

// LeaderboardEntry 排行榜条目，rank 从 1 起连续无间断
// swagger:model LeaderboardEntry
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	RankSnapshot
	IsCurrentUser bool `json:"isCurrentUser,omitempty"`
}

// swagger:model LeaderboardResponse
type LeaderboardResponse struct {
	Type             LeaderboardType      `json:"type"`
	TimeRange        LeaderboardTimeRange `json:"timeRange"`
	SortBy           LeaderboardSortBy    `json:"sortBy"`
	Entries          []LeaderboardEntry   `json:"entries"`
	TotalEntries     int                  `json:"totalEntries"`
	CurrentUserEntry *LeaderboardEntry    `json:"currentUserEntry,omitempty"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}
