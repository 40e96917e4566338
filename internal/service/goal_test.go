package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalhub/goalhub/internal/cache"
	"github.com/goalhub/goalhub/internal/db"
	"github.com/goalhub/goalhub/internal/model"
	"github.com/goalhub/goalhub/internal/repository"
)

type testServices struct {
	goals *GoalService
	users *UserService
	auth  *AuthService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	users := NewUserService(
		repository.NewUserRepository(database),
		cache.NewTTL[int64, *model.User](time.Minute),
	)
	return &testServices{
		goals: NewGoalService(repository.NewGoalRepository(database), users),
		users: users,
		auth:  NewAuthService(users, "test-secret", false, time.Hour, 720*time.Hour),
	}
}

func registerUser(t *testing.T, ts *testServices, name string) *model.User {
	t.Helper()

	user, err := ts.auth.Register(name, name+"@example.com", "password")
	require.NoError(t, err)
	return user
}

func TestGoalCreate(t *testing.T) {
	ts := newTestServices(t)
	alice := registerUser(t, ts, "alice")

	goal, err := ts.goals.Create(alice.ID, "learn piano", "thirty minutes a day", model.PriorityMedium, nil, nil)
	require.NoError(t, err)
	require.NotZero(t, goal.ID)
	assert.Equal(t, model.StatusNew, goal.Status)
	require.NotNil(t, goal.Created)
	assert.Nil(t, goal.Started)
	assert.Nil(t, goal.Ended)
	assert.Nil(t, goal.ExecutorID)

	got, err := ts.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "learn piano", got.Name)
	assert.Equal(t, "alice", got.CreatorName)
	assert.Empty(t, got.ExecutorName)
}

func TestGoalCreateValidation(t *testing.T) {
	ts := newTestServices(t)
	alice := registerUser(t, ts, "alice")

	tests := []struct {
		name     string
		goalName string
		desc     string
		priority model.Priority
		wantErr  error
	}{
		{"empty name", "", "desc", model.PriorityLow, ErrNameRequired},
		{"blank name", "   ", "desc", model.PriorityLow, ErrNameRequired},
		{"empty description", "name", "", model.PriorityLow, ErrDescriptionRequired},
		{"unknown priority", "name", "desc", model.Priority("Urgent"), ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.goals.Create(alice.ID, tt.goalName, tt.desc, tt.priority, nil, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("unknown creator", func(t *testing.T) {
		_, err := ts.goals.Create(99999, "name", "desc", model.PriorityLow, nil, nil)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}

func TestGoalClaimIsUnconditional(t *testing.T) {
	ts := newTestServices(t)
	alice := registerUser(t, ts, "alice")
	bob := registerUser(t, ts, "bob")
	carol := registerUser(t, ts, "carol")

	goal, err := ts.goals.Create(alice.ID, "g", "d", model.PriorityLow, nil, nil)
	require.NoError(t, err)

	require.NoError(t, ts.goals.Claim(goal.ID, bob.ID))
	require.NoError(t, ts.goals.Start(goal.ID, bob.ID))
	require.NoError(t, ts.goals.Complete(goal.ID))

	// Re-claiming a completed goal overwrites the executor
	require.NoError(t, ts.goals.Claim(goal.ID, carol.ID))

	got, err := ts.goals.ByID(goal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ExecutorID)
	assert.Equal(t, carol.ID, *got.ExecutorID)
	assert.Equal(t, "carol", got.ExecutorName)

	assert.ErrorIs(t, ts.goals.Claim(99999, bob.ID), repository.ErrGoalNotFound)
}

func TestGoalStart(t *testing.T) {
	ts := newTestServices(t)
	alice := registerUser(t, ts, "alice")
	bob := registerUser(t, ts, "bob")

	goal, err := ts.goals.Create(alice.ID, "g", "d", model.PriorityLow, nil, nil)
	require.NoError(t, err)

	// The creator check comes before the status check
	assert.ErrorIs(t, ts.goals.Start(goal.ID, alice.ID), ErrCreatorCannotStart)

	require.NoError(t, ts.goals.Start(goal.ID, bob.ID))

	got, err := ts.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	require.NotNil(t, got.Started)
	firstStarted := *got.Started

	// Already in progress: rejected, Started unchanged
	assert.ErrorIs(t, ts.goals.Start(goal.ID, bob.ID), ErrInvalidTransition)
	// Still rejected for the creator, even out of New
	assert.ErrorIs(t, ts.goals.Start(goal.ID, alice.ID), ErrCreatorCannotStart)

	got, err = ts.goals.ByID(goal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Started)
	assert.Equal(t, firstStarted, *got.Started)

	assert.ErrorIs(t, ts.goals.Start(99999, bob.ID), repository.ErrGoalNotFound)
}

func TestGoalComplete(t *testing.T) {
	ts := newTestServices(t)
	alice := registerUser(t, ts, "alice")
	bob := registerUser(t, ts, "bob")

	goal, err := ts.goals.Create(alice.ID, "g", "d", model.PriorityLow, nil, nil)
	require.NoError(t, err)

	// Not started yet
	assert.ErrorIs(t, ts.goals.Complete(goal.ID), ErrInvalidTransition)

	got, err := ts.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, got.Status)
	assert.Nil(t, got.Ended)

	require.NoError(t, ts.goals.Start(goal.ID, bob.ID))
	require.NoError(t, ts.goals.Complete(goal.ID))

	got, err = ts.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	require.NotNil(t, got.Ended)

	// Completing twice is rejected
	assert.ErrorIs(t, ts.goals.Complete(goal.ID), ErrInvalidTransition)

	assert.ErrorIs(t, ts.goals.Complete(99999), repository.ErrGoalNotFound)
}

func TestGoalEdit(t *testing.T) {
	ts := newTestServices(t)
	alice := registerUser(t, ts, "alice")
	bob := registerUser(t, ts, "bob")

	goal, err := ts.goals.Create(alice.ID, "g", "d", model.PriorityLow, nil, nil)
	require.NoError(t, err)

	require.NoError(t, ts.goals.Edit(goal.ID, "renamed", model.PriorityHigh, "updated", bob.ID))

	got, err := ts.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.Equal(t, "updated", got.Description)
	assert.Equal(t, bob.ID, got.CreatorID)
	assert.Equal(t, model.StatusNew, got.Status)

	assert.ErrorIs(t, ts.goals.Edit(goal.ID, "x", model.PriorityLow, "y", 99999), repository.ErrUserNotFound)
	assert.ErrorIs(t, ts.goals.Edit(goal.ID, "", model.PriorityLow, "y", bob.ID), ErrNameRequired)

	require.NoError(t, ts.goals.Start(goal.ID, alice.ID))
	assert.ErrorIs(t, ts.goals.Edit(goal.ID, "too late", model.PriorityLow, "z", bob.ID), ErrGoalLocked)

	require.NoError(t, ts.goals.Complete(goal.ID))
	assert.ErrorIs(t, ts.goals.Edit(goal.ID, "too late", model.PriorityLow, "z", bob.ID), ErrGoalLocked)

	got, err = ts.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestGoalDelete(t *testing.T) {
	ts := newTestServices(t)
	alice := registerUser(t, ts, "alice")

	goal, err := ts.goals.Create(alice.ID, "g", "d", model.PriorityLow, nil, nil)
	require.NoError(t, err)

	require.NoError(t, ts.goals.Delete(goal.ID))

	_, err = ts.goals.ByID(goal.ID)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	assert.ErrorIs(t, ts.goals.Delete(goal.ID), repository.ErrGoalNotFound)
}

func TestGoalListPager(t *testing.T) {
	ts := newTestServices(t)
	alice := registerUser(t, ts, "alice")

	for i := 0; i < 12; i++ {
		_, err := ts.goals.Create(alice.ID, "g", "d", model.PriorityLow, nil, nil)
		require.NoError(t, err)
	}

	goals, pager, err := ts.goals.List(repository.GoalFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, goals, 2)
	assert.Equal(t, 12, pager.TotalItems)
	assert.Equal(t, 2, pager.TotalPages)
	assert.Equal(t, 2, pager.CurrentPage)
	assert.True(t, pager.HasPrev())
	assert.False(t, pager.HasNext())

	// Page below 1 is clamped to the first page
	goals, pager, err = ts.goals.List(repository.GoalFilter{Page: 0})
	require.NoError(t, err)
	assert.Len(t, goals, 10)
	assert.Equal(t, 1, pager.CurrentPage)
}
