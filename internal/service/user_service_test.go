package service

import (
	"testing"
	"time"

	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)
	grantOwnership(t, env, f.alice.ID, f.journey.ID, model.AccessPermanent, nil)

	completeLesson(t, env, f.alice.ID, &f.lesson1)
	_, err := env.reward.Deliver(f.alice.ID, f.lesson1.ID)
	require.NoError(t, err)

	profile, err := env.user.Profile(f.alice.ID)
	require.NoError(t, err)

	assert.Equal(t, 100, profile.User.Exp)
	assert.Equal(t, 1, profile.User.Level)
	assert.Equal(t, 1000, profile.ExpForNextLevel)
	assert.Equal(t, 10, profile.LevelProgress)
	assert.Equal(t, 1, profile.LessonsCompleted)
	assert.Equal(t, 0, profile.GymsPassed)
	require.Len(t, profile.Journeys, 1)
	assert.Equal(t, f.journey.ID, profile.Journeys[0].JourneyID)

	_, err = env.user.Profile(99999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	user, err := env.user.UpdateProfile(f.alice.ID, ProfileUpdate{
		Nickname:   "水球同學",
		Occupation: model.OccupationSeniorProgrammer,
	})
	require.NoError(t, err)
	assert.Equal(t, "水球同學", user.Nickname)
	assert.Equal(t, model.OccupationSeniorProgrammer, user.Occupation)

	// 空字段不覆盖
	user, err = env.user.UpdateProfile(f.alice.ID, ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "水球同學", user.Nickname)
}

func TestGrantJourney(t *testing.T) {
	env := newTestEnv(t)
	f := seedFixture(t, env)

	t.Run("permanent grant", func(t *testing.T) {
		ownership, err := env.user.GrantJourney(f.alice.ID, f.journey.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, model.AccessPermanent, ownership.AccessKind)
		assert.True(t, ownership.Valid(time.Now()))
	})

	t.Run("expiring grant", func(t *testing.T) {
		expiresAt := time.Now().Add(24 * time.Hour)
		ownership, err := env.user.GrantJourney(f.bob.ID, f.journey.ID, &expiresAt)
		require.NoError(t, err)
		assert.Equal(t, model.AccessExpiring, ownership.AccessKind)
		assert.True(t, ownership.Valid(time.Now()))
		assert.False(t, ownership.Valid(time.Now().Add(48*time.Hour)))
	})
}
