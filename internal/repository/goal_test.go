package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalhub/goalhub/internal/db"
	"github.com/goalhub/goalhub/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	t.Cleanup(func() { database.Close() })
	return database
}

func seedUser(t *testing.T, database *sqlx.DB, name string) *model.User {
	t.Helper()

	user := &model.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	}
	err := NewUserRepository(database).Create(user)
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	return user
}

func seedGoal(t *testing.T, repo GoalRepository, creatorID int64, name string, priority model.Priority, created time.Time) *model.Goal {
	t.Helper()

	goal := &model.Goal{
		Name:        name,
		Description: "description of " + name,
		Priority:    priority,
		Status:      model.StatusNew,
		Created:     &created,
		CreatorID:   creatorID,
	}
	err := repo.Create(goal)
	require.NoError(t, err)
	return goal
}

func TestGoalCreateByIDRoundTrip(t *testing.T) {
	database := newTestDB(t)
	repo := NewGoalRepository(database)
	user := seedUser(t, database, "alice")

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	pv := 2
	goal := &model.Goal{
		Name:          "write report",
		Description:   "quarterly report",
		Priority:      model.PriorityHigh,
		PriorityValue: &pv,
		Status:        model.StatusNew,
		Created:       &created,
		CreatorID:     user.ID,
	}
	require.NoError(t, repo.Create(goal))
	require.NotZero(t, goal.ID)

	got, err := repo.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, goal.Name, got.Name)
	assert.Equal(t, goal.Description, got.Description)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	require.NotNil(t, got.PriorityValue)
	assert.Equal(t, 2, *got.PriorityValue)
	assert.Equal(t, model.StatusNew, got.Status)
	assert.Nil(t, got.Started)
	assert.Nil(t, got.Ended)
	assert.Nil(t, got.ExecutorID)
	assert.Equal(t, user.ID, got.CreatorID)
}

func TestGoalByIDNotFound(t *testing.T) {
	repo := NewGoalRepository(newTestDB(t))

	_, err := repo.ByID(12345)
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestGoalListFilters(t *testing.T) {
	database := newTestDB(t)
	repo := NewGoalRepository(database)
	user := seedUser(t, database, "alice")

	a := seedGoal(t, repo, user.ID, "A", model.PriorityHigh, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := seedGoal(t, repo, user.ID, "B", model.PriorityLow, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	t.Run("priority filter", func(t *testing.T) {
		high := model.PriorityHigh
		goals, total, err := repo.List(GoalFilter{Priority: &high, Page: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, goals, 1)
		assert.Equal(t, a.ID, goals[0].ID)
	})

	t.Run("created desc", func(t *testing.T) {
		goals, total, err := repo.List(GoalFilter{Sort: GoalSortCreatedDesc, Page: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, goals, 2)
		assert.Equal(t, b.ID, goals[0].ID)
		assert.Equal(t, a.ID, goals[1].ID)
	})

	t.Run("search matches exact name", func(t *testing.T) {
		goals, _, err := repo.List(GoalFilter{Search: "A", Page: 1})
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, a.ID, goals[0].ID)
	})

	t.Run("search matches description substring", func(t *testing.T) {
		goals, _, err := repo.List(GoalFilter{Search: "of B", Page: 1})
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, b.ID, goals[0].ID)
	})

	t.Run("date range inclusive", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
		goals, _, err := repo.List(GoalFilter{StartDate: &start, EndDate: &end, Page: 1})
		require.NoError(t, err)
		require.Len(t, goals, 1)
		assert.Equal(t, a.ID, goals[0].ID)
	})

	t.Run("status All is no filter", func(t *testing.T) {
		_, total, err := repo.List(GoalFilter{Status: model.StatusAll, Page: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("status filter", func(t *testing.T) {
		ok, err := repo.Start(a.ID, time.Now())
		require.NoError(t, err)
		require.True(t, ok)

		goals, total, err := repo.List(GoalFilter{Status: string(model.StatusInProgress), Page: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, goals, 1)
		assert.Equal(t, a.ID, goals[0].ID)
	})
}

func TestGoalListPagination(t *testing.T) {
	database := newTestDB(t)
	repo := NewGoalRepository(database)
	user := seedUser(t, database, "alice")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var wantIDs []int64
	for i := 0; i < 25; i++ {
		g := seedGoal(t, repo, user.ID, "goal", model.PriorityMedium, base.Add(time.Duration(i)*time.Hour))
		wantIDs = append(wantIDs, g.ID)
	}

	var gotIDs []int64
	for page := 1; page <= 3; page++ {
		goals, total, err := repo.List(GoalFilter{Sort: GoalSortCreatedAsc, Page: page})
		require.NoError(t, err)
		assert.Equal(t, 25, total)

		wantLen := GoalPageSize
		if page == 3 {
			wantLen = 5
		}
		require.Len(t, goals, wantLen)
		for _, g := range goals {
			gotIDs = append(gotIDs, g.ID)
		}
	}

	// All pages concatenated reproduce the full result set exactly once
	assert.Equal(t, wantIDs, gotIDs)

	// A page past the end is empty, not an error
	goals, total, err := repo.List(GoalFilter{Sort: GoalSortCreatedAsc, Page: 4})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, goals)
}

func TestGoalListNameTiebreakDeterministic(t *testing.T) {
	database := newTestDB(t)
	repo := NewGoalRepository(database)
	user := seedUser(t, database, "alice")

	now := time.Now()
	g1 := seedGoal(t, repo, user.ID, "same", model.PriorityLow, now)
	g2 := seedGoal(t, repo, user.ID, "same", model.PriorityLow, now)

	goals, _, err := repo.List(GoalFilter{Sort: GoalSortNameAsc, Page: 1})
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, g1.ID, goals[0].ID)
	assert.Equal(t, g2.ID, goals[1].ID)
}

func TestGoalStartConditional(t *testing.T) {
	database := newTestDB(t)
	repo := NewGoalRepository(database)
	user := seedUser(t, database, "alice")
	goal := seedGoal(t, repo, user.ID, "g", model.PriorityLow, time.Now())

	ok, err := repo.Start(goal.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.NotNil(t, got.Started)

	// Second start loses the conditional update
	ok, err = repo.Start(goal.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGoalCompleteConditional(t *testing.T) {
	database := newTestDB(t)
	repo := NewGoalRepository(database)
	user := seedUser(t, database, "alice")
	goal := seedGoal(t, repo, user.ID, "g", model.PriorityLow, time.Now())

	// Not InProgress yet
	ok, err := repo.Complete(goal.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Start(goal.ID, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Complete(goal.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.NotNil(t, got.Ended)
}

func TestGoalSetExecutor(t *testing.T) {
	database := newTestDB(t)
	repo := NewGoalRepository(database)
	alice := seedUser(t, database, "alice")
	bob := seedUser(t, database, "bob")
	goal := seedGoal(t, repo, alice.ID, "g", model.PriorityLow, time.Now())

	require.NoError(t, repo.SetExecutor(goal.ID, bob.ID))

	got, err := repo.ByID(goal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ExecutorID)
	assert.Equal(t, bob.ID, *got.ExecutorID)

	assert.ErrorIs(t, repo.SetExecutor(99999, bob.ID), ErrGoalNotFound)
}

func TestGoalDelete(t *testing.T) {
	database := newTestDB(t)
	repo := NewGoalRepository(database)
	user := seedUser(t, database, "alice")
	goal := seedGoal(t, repo, user.ID, "g", model.PriorityLow, time.Now())

	require.NoError(t, repo.Delete(goal.ID))

	_, err := repo.ByID(goal.ID)
	assert.ErrorIs(t, err, ErrGoalNotFound)

	assert.ErrorIs(t, repo.Delete(goal.ID), ErrGoalNotFound)
}
