package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/goalhub/goalhub/internal/model"
)

const GoalPageSize = 10

// Sort keys for the goal list. Exactly one is active at a time.
const (
	GoalSortNameAsc      = "name_asc"
	GoalSortNameDesc     = "name_desc"
	GoalSortPriorityAsc  = "priority_asc"
	GoalSortPriorityDesc = "priority_desc"
	GoalSortStatusAsc    = "status_asc"
	GoalSortStatusDesc   = "status_desc"
	GoalSortCreatedAsc   = "created_asc"
	GoalSortCreatedDesc  = "created_desc"
)

// orderClauses whitelists ORDER BY fragments per sort key. Ties are broken
// by id ascending so page slices are deterministic.
var orderClauses = map[string]string{
	GoalSortNameAsc:      "name ASC, id ASC",
	GoalSortNameDesc:     "name DESC, id ASC",
	GoalSortPriorityAsc:  "priority_value ASC, id ASC",
	GoalSortPriorityDesc: "priority_value DESC, id ASC",
	GoalSortStatusAsc:    "status_value ASC, id ASC",
	GoalSortStatusDesc:   "status_value DESC, id ASC",
	GoalSortCreatedAsc:   "created ASC, id ASC",
	GoalSortCreatedDesc:  "created DESC, id ASC",
}

var ErrGoalNotFound = errors.New("goal not found")

// GoalFilter narrows the goal list. All set filters apply conjunctively.
type GoalFilter struct {
	// Search matches name exactly or description as a substring.
	Search string
	// StartDate and EndDate bound the creation date, inclusive.
	StartDate *time.Time
	EndDate   *time.Time
	Priority  *model.Priority
	// Status is ignored when empty or "All".
	Status string

	Sort string
	Page int
}

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(id int64) (*model.Goal, error)
	List(f GoalFilter) ([]*model.Goal, int, error)
	UpdateDetails(goal *model.Goal) error
	SetExecutor(goalID, userID int64) error
	Start(goalID int64, now time.Time) (bool, error)
	Complete(goalID int64, now time.Time) (bool, error)
	Delete(id int64) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (name, description, priority, priority_value, status, status_value, created, started, ended, creator_id, executor_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	result, err := r.db.Exec(query,
		goal.Name,
		goal.Description,
		goal.Priority,
		goal.PriorityValue,
		goal.Status,
		goal.StatusValue,
		goal.Created,
		goal.Started,
		goal.Ended,
		goal.CreatorID,
		goal.ExecutorID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err == nil {
		goal.ID = id
	}

	return nil
}

func (r *goalRepository) ByID(id int64) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1`

	err := r.db.Get(goal, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}

	return goal, err
}

// List returns one page of goals matching the filter plus the total match
// count. Requesting a page past the end yields an empty slice.
func (r *goalRepository) List(f GoalFilter) ([]*model.Goal, int, error) {
	where, args := buildGoalFilter(f)

	var total int
	err := r.db.Get(&total, `SELECT COUNT(*) FROM goals`+where, args...)
	if err != nil {
		return nil, 0, err
	}

	orderBy, ok := orderClauses[f.Sort]
	if !ok {
		orderBy = orderClauses[GoalSortNameAsc]
	}

	page := f.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`SELECT * FROM goals%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		where, orderBy, len(args)+1, len(args)+2)
	args = append(args, GoalPageSize, (page-1)*GoalPageSize)

	var goals []*model.Goal
	err = r.db.Select(&goals, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return goals, total, nil
}

func buildGoalFilter(f GoalFilter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p1 := arg(f.Search)
		p2 := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(name = %s OR description LIKE %s)", p1, p2))
	}
	if f.StartDate != nil {
		conds = append(conds, fmt.Sprintf("created >= %s", arg(*f.StartDate)))
	}
	if f.EndDate != nil {
		conds = append(conds, fmt.Sprintf("created <= %s", arg(*f.EndDate)))
	}
	if f.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = %s", arg(*f.Priority)))
	}
	if f.Status != "" && f.Status != model.StatusAll {
		conds = append(conds, fmt.Sprintf("status = %s", arg(f.Status)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// UpdateDetails overwrites the fields editable while a goal is New.
// Status, the sort values and the lifecycle dates are untouched.
func (r *goalRepository) UpdateDetails(goal *model.Goal) error {
	query := `UPDATE goals SET name = $1, priority = $2, description = $3, creator_id = $4 WHERE id = $5`

	result, err := r.db.Exec(query, goal.Name, goal.Priority, goal.Description, goal.CreatorID, goal.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

func (r *goalRepository) SetExecutor(goalID, userID int64) error {
	query := `UPDATE goals SET executor_id = $1 WHERE id = $2`

	result, err := r.db.Exec(query, userID, goalID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// Start moves a goal from New to InProgress. The status check is part of the
// update, so two concurrent calls cannot both succeed.
func (r *goalRepository) Start(goalID int64, now time.Time) (bool, error) {
	query := `UPDATE goals SET status = $1, started = $2 WHERE id = $3 AND status = $4`

	result, err := r.db.Exec(query, model.StatusInProgress, now, goalID, model.StatusNew)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// Complete moves a goal from InProgress to Completed, conditionally like Start.
func (r *goalRepository) Complete(goalID int64, now time.Time) (bool, error) {
	query := `UPDATE goals SET status = $1, ended = $2 WHERE id = $3 AND status = $4`

	result, err := r.db.Exec(query, model.StatusCompleted, now, goalID, model.StatusInProgress)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *goalRepository) Delete(id int64) error {
	query := `DELETE FROM goals WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
