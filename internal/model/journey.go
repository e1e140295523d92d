package model

import "time"

// swagger:model Journey
type Journey struct {
	BaseModel
	Name         string `gorm:"size:200;not null" json:"name"`
	Slug         string `gorm:"size:100;uniqueIndex" json:"slug"`
	Description  string `gorm:"type:text" json:"description"`
	ThumbnailURL string `gorm:"size:255" json:"thumbnailUrl"`
	Author       string `gorm:"size:100" json:"author"`
	IsPremium    bool   `gorm:"default:false" json:"isPremium"`

	Chapters []Chapter `json:"chapters,omitempty"`
}

func (Journey) TableName() string {
	return "journeys"
}

// swagger:model Chapter
type Chapter struct {
	BaseModel
	JourneyID uint   `gorm:"index" json:"journeyId"`
	Name      string `gorm:"size:200;not null" json:"name"`
	Order     int    `gorm:"column:chapter_order;index" json:"order"`
	RewardExp int    `json:"rewardExp"`

	Lessons []Lesson `json:"lessons,omitempty"`
	Gyms    []Gym    `json:"gyms,omitempty"`
}

func (Chapter) TableName() string {
	return "chapters"
}

type LessonType string

const (
	LessonTypeVideo   LessonType = "video"
	LessonTypeArticle LessonType = "article"
)

// swagger:model Lesson
type Lesson struct {
	BaseModel
	ChapterID   uint       `gorm:"index" json:"chapterId"`
	JourneyID   uint       `gorm:"index" json:"journeyId"`
	Name        string     `gorm:"size:200;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Type        LessonType `gorm:"size:16;default:'video'" json:"type"`
	Order       int        `gorm:"column:lesson_order;index" json:"order"`
	PremiumOnly bool       `gorm:"default:false" json:"premiumOnly"`
	// 影片长度（秒），作为前端回报 duration 的参考值
	VideoSeconds float64 `json:"videoSeconds"`
	RewardExp    int     `json:"rewardExp"`
}

func (Lesson) TableName() string {
	return "lessons"
}

type AccessKind string

const (
	AccessPermanent AccessKind = "permanent"
	AccessExpiring  AccessKind = "expiring"
	AccessNone      AccessKind = "none"
)

// UserJourney 记录用户对课程的持有状态。
// 到期与否在读取时对照当前时间判断，不做缓存。
type UserJourney struct {
	BaseModel
	UserID     uint       `gorm:"uniqueIndex:idx_user_journey" json:"userId"`
	JourneyID  uint       `gorm:"uniqueIndex:idx_user_journey" json:"journeyId"`
	AccessKind AccessKind `gorm:"size:16;default:'none'" json:"accessKind"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

func (UserJourney) TableName() string {
	return "user_journeys"
}

// Valid 判断持有状态在 now 时刻是否有效
func (uj *UserJourney) Valid(now time.Time) bool {
	switch uj.AccessKind {
	case AccessPermanent:
		return true
	case AccessExpiring:
		return uj.ExpiresAt != nil && now.Before(*uj.ExpiresAt)
	default:
		return false
	}
}
