package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goalhub/goalhub/internal/ctxkeys"
	"github.com/goalhub/goalhub/internal/model"
	"github.com/goalhub/goalhub/internal/repository"
	"github.com/goalhub/goalhub/internal/service"
	"github.com/goalhub/goalhub/internal/ui"
)

var priorities = []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh}
var statuses = []model.Status{model.StatusNew, model.StatusInProgress, model.StatusCompleted}

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type goalListData struct {
	Goals []*model.Goal
	Pager model.Pager

	Search     string
	StartDate  string
	EndDate    string
	Priority   string
	Status     string
	Sort       string
	Priorities []model.Priority
	Statuses   []model.Status

	// Toggled sort keys for the column header links
	NameSort     string
	PrioritySort string
	StatusSort   string
	CreatedSort  string

	// Query carries the active filters into sort/page links
	Query template.URL
}

func toggleSort(current, asc, desc string) string {
	if current == asc {
		return desc
	}
	return asc
}

func parseGoalFilter(r *http.Request) repository.GoalFilter {
	q := r.URL.Query()

	f := repository.GoalFilter{
		Search: q.Get("searchWords"),
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
	}

	if f.Sort == "" {
		f.Sort = repository.GoalSortNameAsc
	}

	if v, err := time.Parse("2006-01-02", q.Get("startDate")); err == nil {
		f.StartDate = &v
	}
	if v, err := time.Parse("2006-01-02", q.Get("endDate")); err == nil {
		f.EndDate = &v
	}
	if p := model.Priority(q.Get("priority")); p.Valid() {
		f.Priority = &p
	}

	f.Page, _ = strconv.Atoi(q.Get("pg"))
	if f.Page < 1 {
		f.Page = 1
	}

	return f
}

func (h *GoalHandler) listData(f repository.GoalFilter, goals []*model.Goal, pager model.Pager) goalListData {
	q := url.Values{}
	if f.Search != "" {
		q.Set("searchWords", f.Search)
	}
	if f.StartDate != nil {
		q.Set("startDate", f.StartDate.Format("2006-01-02"))
	}
	if f.EndDate != nil {
		q.Set("endDate", f.EndDate.Format("2006-01-02"))
	}
	priority := ""
	if f.Priority != nil {
		priority = string(*f.Priority)
		q.Set("priority", priority)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}

	return goalListData{
		Goals:        goals,
		Pager:        pager,
		Search:       f.Search,
		StartDate:    q.Get("startDate"),
		EndDate:      q.Get("endDate"),
		Priority:     priority,
		Status:       f.Status,
		Sort:         f.Sort,
		Priorities:   priorities,
		Statuses:     statuses,
		NameSort:     toggleSort(f.Sort, repository.GoalSortNameAsc, repository.GoalSortNameDesc),
		PrioritySort: toggleSort(f.Sort, repository.GoalSortPriorityAsc, repository.GoalSortPriorityDesc),
		StatusSort:   toggleSort(f.Sort, repository.GoalSortStatusAsc, repository.GoalSortStatusDesc),
		CreatedSort:  toggleSort(f.Sort, repository.GoalSortCreatedAsc, repository.GoalSortCreatedDesc),
		Query:        template.URL(q.Encode()),
	}
}

func (h *GoalHandler) renderList(w http.ResponseWriter, r *http.Request, formErrors ...string) {
	f := parseGoalFilter(r)

	goals, pager, err := h.goalService.List(f)
	if err != nil {
		slog.Error("failed to list goals", "error", err)
		http.Error(w, "Failed to load goals", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, "goals", ui.Page{
		Title:  "Goals",
		Errors: formErrors,
		Data:   h.listData(f, goals, pager),
	})
}

func (h *GoalHandler) GoalsPage(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r)
}

func (h *GoalHandler) GoalDetailPage(w http.ResponseWriter, r *http.Request) {
	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	goal, err := h.goalService.ByID(goalID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ui.Render(w, r, "goal_detail", ui.Page{
		Title: goal.Name,
		Data:  struct{ Goal *model.Goal }{goal},
	})
}

type goalFormData struct {
	Goal       *model.Goal
	Priorities []model.Priority
}

func (h *GoalHandler) NewGoalPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, "goal_form", ui.Page{
		Title: "New goal",
		Data:  goalFormData{Goal: &model.Goal{Priority: model.PriorityMedium}, Priorities: priorities},
	})
}

func optionalInt(value string) *int {
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	name := r.FormValue("name")
	description := r.FormValue("description")
	priority := model.Priority(r.FormValue("priority"))
	priorityValue := optionalInt(r.FormValue("priority_value"))
	statusValue := optionalInt(r.FormValue("status_value"))

	_, err := h.goalService.Create(user.ID, name, description, priority, priorityValue, statusValue)
	if err != nil {
		goal := &model.Goal{
			Name:          name,
			Description:   description,
			Priority:      priority,
			PriorityValue: priorityValue,
			StatusValue:   statusValue,
		}
		ui.Render(w, r, "goal_form", ui.Page{
			Title:  "New goal",
			Errors: []string{displayError(err)},
			Data:   goalFormData{Goal: goal, Priorities: priorities},
		})
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (h *GoalHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	goal, err := h.goalService.ByID(goalID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ui.Render(w, r, "goal_form", ui.Page{
		Title: "Edit goal",
		Data:  goalFormData{Goal: goal, Priorities: priorities},
	})
}

func (h *GoalHandler) Edit(w http.ResponseWriter, r *http.Request) {
	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	goal, err := h.goalService.ByID(goalID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	name := r.FormValue("name")
	description := r.FormValue("description")
	priority := model.Priority(r.FormValue("priority"))

	err = h.goalService.Edit(goalID, name, priority, description, goal.CreatorID)
	if err != nil {
		goal.Name = name
		goal.Description = description
		goal.Priority = priority
		ui.Render(w, r, "goal_form", ui.Page{
			Title:  "Edit goal",
			Errors: []string{displayError(err)},
			Data:   goalFormData{Goal: goal, Priorities: priorities},
		})
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.goalService.Delete(goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to delete goal", "error", err, "goal_id", goalID)
		h.renderList(w, r, displayError(err))
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (h *GoalHandler) Claim(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.goalService.Claim(goalID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to claim goal", "error", err, "goal_id", goalID, "user_id", user.ID)
		h.renderList(w, r, displayError(err))
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (h *GoalHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.goalService.Start(goalID, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderList(w, r, displayError(err))
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

func (h *GoalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	err = h.goalService.Complete(goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderList(w, r, displayError(err))
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

// displayError picks the user-facing message: domain errors read well as-is,
// persistence errors are reduced to their innermost cause.
func displayError(err error) string {
	switch {
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrDescriptionRequired),
		errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrCreatorCannotStart),
		errors.Is(err, service.ErrGoalLocked),
		errors.Is(err, service.ErrInvalidTransition):
		return err.Error()
	}

	return rootCause(err).Error()
}

func rootCause(err error) error {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err
		}
		err = inner
	}
}
