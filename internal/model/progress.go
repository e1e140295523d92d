package model

import "time"

type LessonStatus string

const (
	LessonNotStarted LessonStatus = "NOT_STARTED"
	LessonInProgress LessonStatus = "IN_PROGRESS"
	LessonCompleted  LessonStatus = "COMPLETED"
	LessonDelivered  LessonStatus = "DELIVERED"
)

// LessonProgress 按 (userId, lessonId) 记录观看进度。
// completed 单调：一旦为 true 不再回退；delivered 蕴含 completed。
// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex:idx_user_lesson" json:"userId"`
	LessonID    uint      `gorm:"uniqueIndex:idx_user_lesson" json:"lessonId"`
	CurrentTime float64   `json:"currentTime"` // 秒
	Duration    float64   `json:"duration"`    // 秒，首次写入后不可变
	Percentage  float64   `json:"percentage"`  // 0-100
	Completed   bool      `gorm:"default:false" json:"completed"`
	Delivered   bool      `gorm:"default:false" json:"delivered"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (LessonProgress) TableName() string {
	return "lesson_progresses"
}

// Status 由进度推导单元状态
func (p *LessonProgress) Status() LessonStatus {
	switch {
	case p.Delivered:
		return LessonDelivered
	case p.Completed || p.Percentage >= 100:
		return LessonCompleted
	case p.Percentage > 0:
		return LessonInProgress
	default:
		return LessonNotStarted
	}
}
