package model

import "time"

type RewardSource string

const (
	RewardSourceLesson RewardSource = "LESSON"
	RewardSourceGym    RewardSource = "GYM"
)

// RewardGrant 经验值发放记录。
// (user_id, source, source_id) 唯一，保证同一来源至多发放一次；创建后不可变。
// swagger:model RewardGrant
type RewardGrant struct {
	BaseModel
	UserID    uint         `gorm:"uniqueIndex:idx_user_source" json:"userId"`
	Source    RewardSource `gorm:"size:16;uniqueIndex:idx_user_source" json:"source"`
	SourceID  uint         `gorm:"uniqueIndex:idx_user_source" json:"sourceId"`
	ExpAmount int          `json:"expAmount"`
	GrantedAt time.Time    `gorm:"index" json:"grantedAt"`
}

func (RewardGrant) TableName() string {
	return "reward_grants"
}
