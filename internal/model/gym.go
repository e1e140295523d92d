package model

import "time"

type GymType string

const (
	GymWhite GymType = "white" // 白段，一般难度
	GymBlack GymType = "black" // 黑段，高难度
)

// swagger:model Gym
type Gym struct {
	BaseModel
	ChapterID   uint    `gorm:"index" json:"chapterId"`
	JourneyID   uint    `gorm:"index" json:"journeyId"`
	Name        string  `gorm:"size:200;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Type        GymType `gorm:"size:8;default:'white'" json:"type"`
	Difficulty  int     `json:"difficulty"` // 1-5 星
	Order       int     `gorm:"column:gym_order" json:"order"`
	RewardExp   int     `json:"rewardExp"`
	BadgeName   string  `gorm:"size:100" json:"badgeName"`
	BadgeURL    string  `gorm:"size:255" json:"badgeUrl"`
}

func (Gym) TableName() string {
	return "gyms"
}

type GymChallengeStatus string

const (
	GymLocked     GymChallengeStatus = "LOCKED"
	GymAvailable  GymChallengeStatus = "AVAILABLE"
	GymInProgress GymChallengeStatus = "IN_PROGRESS"
	GymPassed     GymChallengeStatus = "PASSED" // 终态
)

// GymChallengeRecord 按 (userId, gymId) 记录挑战状态。
// attempts 只在发起挑战时递增；PASSED 后不再变化。
// swagger:model GymChallengeRecord
type GymChallengeRecord struct {
	BaseModel
	UserID        uint               `gorm:"uniqueIndex:idx_user_gym" json:"userId"`
	GymID         uint               `gorm:"uniqueIndex:idx_user_gym" json:"gymId"`
	Status        GymChallengeStatus `gorm:"size:16;default:'LOCKED'" json:"status"`
	Attempts      int                `gorm:"default:0" json:"attempts"`
	Score         *int               `json:"score,omitempty"` // 0-100
	PassedAt      *time.Time         `json:"passedAt,omitempty"`
	LastAttemptAt *time.Time         `json:"lastAttemptAt,omitempty"`
	LastUpdated   time.Time          `json:"lastUpdated"`
}

func (GymChallengeRecord) TableName() string {
	return "gym_challenge_records"
}

func (r *GymChallengeRecord) Passed() bool {
	return r.Status == GymPassed
}

// GymBadge 道馆徽章，通关即获得
type GymBadge struct {
	Name      string    `json:"name"`
	GymID     uint      `json:"gymId"`
	ImageURL  string    `json:"imageUrl"`
	JourneyID uint      `json:"journeyId"`
	ChapterID uint      `json:"chapterId"`
	EarnedAt  time.Time `json:"earnedAt"`
}

// UserGymProgress 用户在单一课程内的道馆总览
type UserGymProgress struct {
	UserID          uint       `json:"userId"`
	JourneyID       uint       `json:"journeyId"`
	TotalGyms       int        `json:"totalGyms"`
	PassedGyms      int        `json:"passedGyms"`
	WhitePassedGyms int        `json:"whitePassedGyms"`
	BlackPassedGyms int        `json:"blackPassedGyms"`
	Badges          []GymBadge `json:"badges"`
}
