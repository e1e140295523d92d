package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")

	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("record not found")
	ErrNotCompleted     = errors.New("单元尚未完成")
	ErrAlreadyDelivered = errors.New("已经交付过此单元")
	ErrPremiumRequired  = errors.New("premium lesson requires a valid journey subscription")
	ErrGymLocked        = errors.New("gym is locked")
	ErrInvalidState     = errors.New("no attempt in progress")
	ErrAlreadyPassed    = errors.New("gym already passed")
)
