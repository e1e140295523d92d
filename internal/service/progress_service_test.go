package service

import (
	"testing"
	"time"

	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordProgress(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	t.Run("records partial progress", func(t *testing.T) {
		progress, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 300, 600)
		require.NoError(t, err)

		assert.Equal(t, 300.0, progress.CurrentTime)
		assert.Equal(t, 600.0, progress.Duration)
		assert.Equal(t, 50.0, progress.Percentage)
		assert.False(t, progress.Completed)
		assert.Equal(t, model.LessonInProgress, progress.Status())
	})

	t.Run("marks completed at threshold", func(t *testing.T) {
		progress, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 600, 600)
		require.NoError(t, err)

		assert.Equal(t, 100.0, progress.Percentage)
		assert.True(t, progress.Completed)
	})

	t.Run("completed does not revert on rewind", func(t *testing.T) {
		progress, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 10, 600)
		require.NoError(t, err)

		assert.Equal(t, 10.0, progress.CurrentTime)
		assert.True(t, progress.Completed)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		_, err := env.progress.RecordProgress(f.alice.ID, 99999, 10, 600)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

func TestRecordProgressDuration(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	t.Run("rejects non-positive duration on first report", func(t *testing.T) {
		_, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 10, 0)
		assert.ErrorIs(t, err, util.ErrInvalidInput)

		_, err = env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 10, -5)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
	})

	t.Run("duration immutable after first write", func(t *testing.T) {
		_, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 100, 600)
		require.NoError(t, err)

		// 之后回报更短的 duration 不生效
		progress, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 200, 100)
		require.NoError(t, err)
		assert.Equal(t, 600.0, progress.Duration)
	})

	t.Run("clamps currentTime into range", func(t *testing.T) {
		progress, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 9999, 600)
		require.NoError(t, err)
		assert.Equal(t, 600.0, progress.CurrentTime)
		assert.Equal(t, 100.0, progress.Percentage)

		progress, err = env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, -50, 600)
		require.NoError(t, err)
		assert.Equal(t, 0.0, progress.CurrentTime)
	})
}

func TestRecordProgressPremiumGate(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	t.Run("premium lesson requires ownership", func(t *testing.T) {
		_, err := env.progress.RecordProgress(f.alice.ID, f.lesson3.ID, 10, 900)
		assert.ErrorIs(t, err, util.ErrPremiumRequired)
	})

	t.Run("expired ownership is rejected", func(t *testing.T) {
		expired := time.Now().Add(-time.Hour)
		grantOwnership(t, env, f.bob.ID, f.journey.ID, model.AccessExpiring, &expired)

		_, err := env.progress.RecordProgress(f.bob.ID, f.lesson3.ID, 10, 900)
		assert.ErrorIs(t, err, util.ErrPremiumRequired)
	})

	t.Run("permanent ownership passes", func(t *testing.T) {
		grantOwnership(t, env, f.alice.ID, f.journey.ID, model.AccessPermanent, nil)

		progress, err := env.progress.RecordProgress(f.alice.ID, f.lesson3.ID, 10, 900)
		require.NoError(t, err)
		assert.Equal(t, 10.0, progress.CurrentTime)
	})
}

func TestIsAccessible(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	chapterLessons := []uint{f.lesson1.ID, f.lesson2.ID}

	t.Run("first lesson always accessible", func(t *testing.T) {
		assert.True(t, env.progress.IsAccessible(f.alice.ID, 1, chapterLessons))
	})

	t.Run("blocked while predecessor incomplete", func(t *testing.T) {
		_, err := env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 100, 600)
		require.NoError(t, err)
		assert.False(t, env.progress.IsAccessible(f.alice.ID, 2, chapterLessons))
	})

	t.Run("accessible once predecessor completed", func(t *testing.T) {
		completeLesson(t, env, f.alice.ID, &f.lesson1)
		assert.True(t, env.progress.IsAccessible(f.alice.ID, 2, chapterLessons))
	})

	t.Run("missing predecessor record is permissive", func(t *testing.T) {
		assert.True(t, env.progress.IsAccessible(f.bob.ID, 2, chapterLessons))
	})
}

func TestCanAccessLesson(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	accessible, err := env.access.CanAccessLesson(f.alice.ID, f.lesson1.ID)
	require.NoError(t, err)
	assert.True(t, accessible)

	_, err = env.progress.RecordProgress(f.alice.ID, f.lesson1.ID, 100, 600)
	require.NoError(t, err)

	accessible, err = env.access.CanAccessLesson(f.alice.ID, f.lesson2.ID)
	require.NoError(t, err)
	assert.False(t, accessible)

	completeLesson(t, env, f.alice.ID, &f.lesson1)

	accessible, err = env.access.CanAccessLesson(f.alice.ID, f.lesson2.ID)
	require.NoError(t, err)
	assert.True(t, accessible)

	_, err = env.access.CanAccessLesson(f.alice.ID, 99999)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestJourneyCompletion(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	grantOwnership(t, env, f.alice.ID, f.journey.ID, model.AccessPermanent, nil)

	completion, err := env.progress.JourneyCompletion(f.alice.ID, f.journey.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, completion.CompletedLessons)
	assert.Equal(t, 3, completion.TotalLessons)
	assert.Equal(t, 0, completion.Percentage)

	completeLesson(t, env, f.alice.ID, &f.lesson1)
	completeLesson(t, env, f.alice.ID, &f.lesson2)

	completion, err = env.progress.JourneyCompletion(f.alice.ID, f.journey.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, completion.CompletedLessons)
	assert.Equal(t, 67, completion.Percentage)
}
