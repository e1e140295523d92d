package service

import (
	"testing"

	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeChapterOne(t *testing.T, env *testEnv, f *fixture, userID uint) {
	t.Helper()
	completeLesson(t, env, userID, &f.lesson1)
	completeLesson(t, env, userID, &f.lesson2)
}

func TestGymRecord(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	t.Run("locked before chapter lessons complete", func(t *testing.T) {
		record, err := env.gym.Record(f.alice.ID, f.gym1.ID)
		require.NoError(t, err)
		assert.Equal(t, model.GymLocked, record.Status)
		assert.Equal(t, 0, record.Attempts)
	})

	t.Run("promotes to available once unlockable", func(t *testing.T) {
		completeChapterOne(t, env, f, f.alice.ID)

		record, err := env.gym.Record(f.alice.ID, f.gym1.ID)
		require.NoError(t, err)
		assert.Equal(t, model.GymAvailable, record.Status)
	})

	t.Run("unknown gym", func(t *testing.T) {
		_, err := env.gym.Record(f.alice.ID, 99999)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

func TestStartAttempt(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	t.Run("locked gym rejects attempt", func(t *testing.T) {
		_, err := env.gym.StartAttempt(f.alice.ID, f.gym1.ID)
		assert.ErrorIs(t, err, util.ErrGymLocked)
	})

	t.Run("attempts accumulate", func(t *testing.T) {
		completeChapterOne(t, env, f, f.alice.ID)

		record, err := env.gym.StartAttempt(f.alice.ID, f.gym1.ID)
		require.NoError(t, err)
		assert.Equal(t, model.GymInProgress, record.Status)
		assert.Equal(t, 1, record.Attempts)
		assert.NotNil(t, record.LastAttemptAt)

		// 进行中再次发起也算一次新的尝试
		record, err = env.gym.StartAttempt(f.alice.ID, f.gym1.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, record.Attempts)
	})
}

func TestSubmitAttempt(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	completeChapterOne(t, env, f, f.alice.ID)

	t.Run("score range validated", func(t *testing.T) {
		_, err := env.gym.SubmitAttempt(f.alice.ID, f.gym1.ID, -1)
		assert.ErrorIs(t, err, util.ErrInvalidInput)

		_, err = env.gym.SubmitAttempt(f.alice.ID, f.gym1.ID, 101)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
	})

	t.Run("submit without attempt in progress", func(t *testing.T) {
		_, err := env.gym.SubmitAttempt(f.alice.ID, f.gym1.ID, 80)
		assert.ErrorIs(t, err, util.ErrInvalidState)
	})

	t.Run("failed submit returns to available", func(t *testing.T) {
		_, err := env.gym.StartAttempt(f.alice.ID, f.gym1.ID)
		require.NoError(t, err)

		record, err := env.gym.SubmitAttempt(f.alice.ID, f.gym1.ID, 40)
		require.NoError(t, err)
		assert.Equal(t, model.GymAvailable, record.Status)
		assert.Equal(t, 1, record.Attempts)
		require.NotNil(t, record.Score)
		assert.Equal(t, 40, *record.Score)
		assert.Nil(t, record.PassedAt)

		// 失败不发经验
		total, err := env.reward.TotalExp(f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})

	t.Run("passing submit grants reward", func(t *testing.T) {
		_, err := env.gym.StartAttempt(f.alice.ID, f.gym1.ID)
		require.NoError(t, err)

		record, err := env.gym.SubmitAttempt(f.alice.ID, f.gym1.ID, 85)
		require.NoError(t, err)
		assert.Equal(t, model.GymPassed, record.Status)
		assert.Equal(t, 2, record.Attempts)
		assert.NotNil(t, record.PassedAt)

		total, err := env.reward.TotalExp(f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, f.gym1.RewardExp, total)
	})

	t.Run("passed is terminal", func(t *testing.T) {
		_, err := env.gym.StartAttempt(f.alice.ID, f.gym1.ID)
		assert.ErrorIs(t, err, util.ErrAlreadyPassed)

		_, err = env.gym.SubmitAttempt(f.alice.ID, f.gym1.ID, 90)
		assert.ErrorIs(t, err, util.ErrAlreadyPassed)

		// 通关后的经验不变
		total, err := env.reward.TotalExp(f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, f.gym1.RewardExp, total)
	})
}

func TestListRecords(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	grantOwnership(t, env, f.alice.ID, f.journey.ID, model.AccessPermanent, nil)

	records, err := env.gym.ListRecords(f.alice.ID, f.journey.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.GymLocked, records[0].Status)
	assert.Equal(t, model.GymLocked, records[1].Status)

	completeChapterOne(t, env, f, f.alice.ID)

	records, err = env.gym.ListRecords(f.alice.ID, f.journey.ID)
	require.NoError(t, err)

	statusByGym := map[uint]model.GymChallengeStatus{}
	for _, record := range records {
		statusByGym[record.GymID] = record.Status
	}
	assert.Equal(t, model.GymAvailable, statusByGym[f.gym1.ID])
	// 第二章单元未完成，黑色道馆仍然锁定
	assert.Equal(t, model.GymLocked, statusByGym[f.gym2.ID])
}

func TestJourneyGymProgress(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	completeChapterOne(t, env, f, f.alice.ID)

	_, err := env.gym.StartAttempt(f.alice.ID, f.gym1.ID)
	require.NoError(t, err)
	_, err = env.gym.SubmitAttempt(f.alice.ID, f.gym1.ID, 90)
	require.NoError(t, err)

	progress, err := env.gym.JourneyGymProgress(f.alice.ID, f.journey.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, progress.TotalGyms)
	assert.Equal(t, 1, progress.PassedGyms)
	assert.Equal(t, 1, progress.WhitePassedGyms)
	assert.Equal(t, 0, progress.BlackPassedGyms)
	require.Len(t, progress.Badges, 1)
	assert.Equal(t, "OOP 白帶", progress.Badges[0].Name)
	assert.Equal(t, f.gym1.ID, progress.Badges[0].GymID)
}
