package service

import (
	"errors"
	"sync"
	"testing"

	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	t.Run("rejects incomplete lesson", func(t *testing.T) {
		_, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 100, 600)
		require.NoError(t, err)

		_, err = env.reward.Deliver(f.alice.ID, f.lesson1.ID)
		assert.ErrorIs(t, err, util.ErrNotCompleted)
	})

	t.Run("delivers completed lesson once", func(t *testing.T) {
		completeLesson(t, env, f.alice.ID, &f.lesson1)

		result, err := env.reward.Deliver(f.alice.ID, f.lesson1.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, result.ExpGained)
		assert.Equal(t, 100, result.User.Exp)
		assert.Equal(t, 1, result.User.Level)

		progress, err := env.progress.GetProgress(f.alice.ID, f.lesson1.ID)
		require.NoError(t, err)
		assert.True(t, progress.Delivered)
		assert.Equal(t, model.LessonDelivered, progress.Status())

		_, err = env.reward.Deliver(f.alice.ID, f.lesson1.ID)
		assert.ErrorIs(t, err, util.ErrAlreadyDelivered)
	})

	t.Run("no progress record", func(t *testing.T) {
		_, err := env.reward.Deliver(f.bob.ID, f.lesson1.ID)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		_, err := env.reward.Deliver(f.alice.ID, 99999)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

func TestDeliverConcurrent(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	completeLesson(t, env, f.alice.ID, &f.lesson1)

	const workers = 8
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.reward.Deliver(f.alice.ID, f.lesson1.ID)
		}(i)
	}
	wg.Wait()

	delivered := 0
	for _, err := range errs {
		if err == nil {
			delivered++
		} else {
			assert.True(t, errors.Is(err, util.ErrAlreadyDelivered))
		}
	}
	assert.Equal(t, 1, delivered)

	// 经验值只进账一次
	total, err := env.reward.TotalExp(f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.lesson1.RewardExp, total)

	user, err := env.userRepo.FindByID(f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.lesson1.RewardExp, user.Exp)
}

func TestGrantForGym(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	grant, err := env.reward.GrantForGym(f.alice.ID, f.gym1.ID, 300)
	require.NoError(t, err)
	assert.Equal(t, model.RewardSourceGym, grant.Source)
	assert.Equal(t, 300, grant.ExpAmount)

	_, err = env.reward.GrantForGym(f.alice.ID, f.gym1.ID, 300)
	assert.ErrorIs(t, err, util.ErrAlreadyDelivered)

	total, err := env.reward.TotalExp(f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, total)
}

func TestLevelFromExp(t *testing.T) {
	tests := []struct {
		exp   int
		level int
	}{
		{-10, 1},
		{0, 1},
		{999, 1},
		{1000, 2},
		{2500, 3},
		{10000, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, CalculateLevel(tt.exp), "exp=%d", tt.exp)
	}

	assert.Equal(t, 1000, ExpForNextLevel(1))
	assert.Equal(t, 3000, ExpForNextLevel(3))

	assert.Equal(t, 0, LevelProgress(0, 1))
	assert.Equal(t, 50, LevelProgress(500, 1))
	assert.Equal(t, 50, LevelProgress(1500, 2))
	assert.Equal(t, 100, LevelProgress(5000, 2))
}

func TestLevelRaisesOnDeliver(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	// 积累到 1000 经验后升到 2 级
	require.NoError(t, env.db.Model(&model.User{}).
		Where("id = ?", f.alice.ID).Update("exp", 950).Error)

	completeLesson(t, env, f.alice.ID, &f.lesson1)
	result, err := env.reward.Deliver(f.alice.ID, f.lesson1.ID)
	require.NoError(t, err)

	assert.Equal(t, 1050, result.User.Exp)
	assert.Equal(t, 2, result.User.Level)
}
