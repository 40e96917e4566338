package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goalhub/goalhub/internal/model"
	"github.com/goalhub/goalhub/internal/repository"
)

var (
	ErrNameRequired        = errors.New("name is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidPriority     = errors.New("invalid priority")

	// ErrCreatorCannotStart rejects a creator starting their own goal.
	ErrCreatorCannotStart = errors.New("creator cannot execute their own goal")

	// ErrGoalLocked rejects edits once a goal has left the New state.
	ErrGoalLocked = errors.New("goal can no longer be edited in its current state")

	// ErrInvalidTransition rejects Start/Complete from a wrong state.
	ErrInvalidTransition = errors.New("transition not allowed from the current state")
)

// GoalService owns the goal lifecycle (create, claim, start, complete, edit,
// delete) and the filtered, sorted, paginated list view. The acting user is
// always an explicit parameter, never ambient state.
type GoalService struct {
	repo        repository.GoalRepository
	userService *UserService
}

func NewGoalService(repo repository.GoalRepository, userService *UserService) *GoalService {
	return &GoalService{
		repo:        repo,
		userService: userService,
	}
}

func validateGoal(name, description string, priority model.Priority) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionRequired
	}
	if !priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

func (s *GoalService) Create(creatorID int64, name, description string, priority model.Priority, priorityValue, statusValue *int) (*model.Goal, error) {
	err := validateGoal(name, description, priority)
	if err != nil {
		return nil, err
	}

	_, err = s.userService.ByID(creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator: %w", err)
	}

	now := time.Now()
	goal := &model.Goal{
		Name:          name,
		Description:   description,
		Priority:      priority,
		PriorityValue: priorityValue,
		Status:        model.StatusNew,
		StatusValue:   statusValue,
		Created:       &now,
		CreatorID:     creatorID,
	}

	err = s.repo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

func (s *GoalService) ByID(goalID int64) (*model.Goal, error) {
	goal, err := s.repo.ByID(goalID)
	if err != nil {
		return nil, err
	}

	s.fillUserNames(goal)
	return goal, nil
}

// List returns one page of goals matching the filter plus pagination
// metadata. Pages are 1-based and clamped to 1; a page past the end is an
// empty slice, not an error.
func (s *GoalService) List(f repository.GoalFilter) ([]*model.Goal, model.Pager, error) {
	goals, total, err := s.repo.List(f)
	if err != nil {
		return nil, model.Pager{}, fmt.Errorf("failed to list goals: %w", err)
	}

	for _, goal := range goals {
		s.fillUserNames(goal)
	}

	return goals, model.NewPager(total, f.Page, repository.GoalPageSize), nil
}

// Claim assigns userID as the goal's executor. The assignment is
// unconditional: neither the current status nor an existing executor blocks
// it. That mirrors the observed product behavior and is flagged as an open
// product question in DESIGN.md.
func (s *GoalService) Claim(goalID, userID int64) error {
	err := s.repo.SetExecutor(goalID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return err
		}
		return fmt.Errorf("failed to claim goal: %w", err)
	}

	return nil
}

// Start moves a goal from New to InProgress and stamps Started. The creator
// is rejected regardless of status. The underlying update is conditional on
// status, so concurrent starts cannot both succeed.
func (s *GoalService) Start(goalID, userID int64) error {
	goal, err := s.repo.ByID(goalID)
	if err != nil {
		return err
	}

	if goal.CreatorID == userID {
		return ErrCreatorCannotStart
	}

	ok, err := s.repo.Start(goalID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to start goal: %w", err)
	}
	if !ok {
		return ErrInvalidTransition
	}

	return nil
}

// Complete moves a goal from InProgress to Completed and stamps Ended.
func (s *GoalService) Complete(goalID int64) error {
	_, err := s.repo.ByID(goalID)
	if err != nil {
		return err
	}

	ok, err := s.repo.Complete(goalID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to complete goal: %w", err)
	}
	if !ok {
		return ErrInvalidTransition
	}

	return nil
}

// Edit overwrites name, priority, description and creator. Edits are only
// permitted while the goal is New; status, the sort values and the lifecycle
// dates are never touched.
func (s *GoalService) Edit(goalID int64, name string, priority model.Priority, description string, creatorID int64) error {
	goal, err := s.repo.ByID(goalID)
	if err != nil {
		return err
	}

	if goal.Status != model.StatusNew {
		return ErrGoalLocked
	}

	err = validateGoal(name, description, priority)
	if err != nil {
		return err
	}

	_, err = s.userService.ByID(creatorID)
	if err != nil {
		return fmt.Errorf("failed to resolve creator: %w", err)
	}

	goal.Name = name
	goal.Priority = priority
	goal.Description = description
	goal.CreatorID = creatorID

	err = s.repo.UpdateDetails(goal)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	return nil
}

func (s *GoalService) Delete(goalID int64) error {
	_, err := s.repo.ByID(goalID)
	if err != nil {
		return err
	}

	err = s.repo.Delete(goalID)
	if err != nil && !errors.Is(err, repository.ErrGoalNotFound) {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	return nil
}

func (s *GoalService) fillUserNames(goal *model.Goal) {
	creator, err := s.userService.ByID(goal.CreatorID)
	if err != nil {
		slog.Warn("failed to resolve goal creator", "error", err, "goal_id", goal.ID, "creator_id", goal.CreatorID)
	} else {
		goal.CreatorName = creator.Name
	}

	if goal.ExecutorID != nil {
		executor, err := s.userService.ByID(*goal.ExecutorID)
		if err != nil {
			slog.Warn("failed to resolve goal executor", "error", err, "goal_id", goal.ID, "executor_id", *goal.ExecutorID)
		} else {
			goal.ExecutorName = executor.Name
		}
	}
}
