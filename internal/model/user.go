package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

type Occupation string

const (
	OccupationJuniorProgrammer Occupation = "junior_programmer"
	OccupationProgrammer       Occupation = "programmer"
	OccupationSeniorProgrammer Occupation = "senior_programmer"
	OccupationTechLead         Occupation = "tech_lead"
	OccupationArchitect        Occupation = "architect"
)

// swagger:model User
type User struct {
	BaseModel
	Username   string     `gorm:"size:100;not null" json:"username"`
	Nickname   string     `gorm:"size:100" json:"nickname"`
	Email      string     `gorm:"size:100;unique;not null" json:"email"`
	Password   string     `gorm:"size:100;not null" json:"-"`
	Role       UserRole   `gorm:"size:16;default:'student'" json:"role"`
	Occupation Occupation `gorm:"size:32;default:'junior_programmer'" json:"occupation"`
	PictureURL string     `gorm:"size:255" json:"pictureUrl"`
	Exp        int        `gorm:"default:0" json:"exp"`   // 总经验值，仅由奖励账本写入
	Level      int        `gorm:"default:1" json:"level"` // 由经验值推导，单调递增
	IsPremium  bool       `gorm:"default:false" json:"isPremium"`
	LastLogin  time.Time  `json:"lastLogin"`
	LastSeen   time.Time  `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
