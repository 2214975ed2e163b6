package handlers

import (
	"log"
	"net/http"

	"simple-budget/internal/forms"
	"simple-budget/internal/models"
	"simple-budget/internal/storage"

	"github.com/gorilla/csrf"
)

// GoalItem represents a goal in the index view.
type GoalItem struct {
	ID         string
	Name       string
	Target     string
	TargetDate string
	Recurrence string
}

// GoalsIndexViewModel is the data passed to the goals index template.
type GoalsIndexViewModel struct {
	Goals     []GoalItem
	CSRFToken string
}

// GoalFormViewModel is the data passed to the goal create/edit form
// templates.
type GoalFormViewModel struct {
	ID         string
	Name       string
	Target     string
	TargetDate string
	Recurrence string
	Errors     []string
	IsEdit     bool
	CSRFToken  string
}

// ListGoals renders the goals index. Database errors degrade to an empty
// list rather than failing the page.
func (h *Handlers) ListGoals(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	goals, err := h.db.ListGoals(user.ID)
	if err != nil {
		log.Printf("ListGoals error: %v", err)
		goals = nil
	}

	items := make([]GoalItem, 0, len(goals))
	for _, g := range goals {
		items = append(items, GoalItem{
			ID:         g.ID,
			Name:       g.Name,
			Target:     formatAmount(g.Target),
			TargetDate: g.TargetDate.Format(forms.DateLayout),
			Recurrence: g.Recurrence,
		})
	}

	h.render(w, r, "goals/index.html", GoalsIndexViewModel{
		Goals:     items,
		CSRFToken: csrf.Token(r),
	})
}

// CreateGoalForm renders the form to create a new goal.
func (h *Handlers) CreateGoalForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "goals/new.html", GoalFormViewModel{
		CSRFToken: csrf.Token(r),
	})
}

// CreateGoal handles the creation of a new goal.
func (h *Handlers) CreateGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := forms.NewGoalForm(r.PostForm)
	if errs := form.Validate(); len(errs) > 0 {
		h.renderStatus(w, r, http.StatusBadRequest, "goals/new.html", "goals/form.turbo.html", GoalFormViewModel{
			Name:       form.Name,
			Target:     form.RawTarget,
			TargetDate: form.RawTargetDate,
			Recurrence: form.Recurrence,
			Errors:     errs,
			CSRFToken:  csrf.Token(r),
		})
		return
	}

	goal := &models.Goal{
		UserID:     user.ID,
		Name:       form.Name,
		Target:     form.Target,
		TargetDate: form.TargetDate,
		Recurrence: form.Recurrence,
	}
	if _, err := h.db.CreateGoal(goal); err != nil {
		respondError(w, err)
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

// EditGoalForm renders the form to edit an existing goal.
func (h *Handlers) EditGoalForm(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := storage.ParseID(r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	goal, err := h.db.GetGoal(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}

	h.render(w, r, "goals/edit.html", GoalFormViewModel{
		ID:         goal.ID,
		Name:       goal.Name,
		Target:     formatAmount(goal.Target),
		TargetDate: goal.TargetDate.Format(forms.DateLayout),
		Recurrence: goal.Recurrence,
		IsEdit:     true,
		CSRFToken:  csrf.Token(r),
	})
}

// UpdateGoal handles the update of an existing goal.
func (h *Handlers) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := storage.ParseID(r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := forms.NewGoalForm(r.PostForm)
	if errs := form.Validate(); len(errs) > 0 {
		h.renderStatus(w, r, http.StatusBadRequest, "goals/edit.html", "goals/form.turbo.html", GoalFormViewModel{
			ID:         id,
			Name:       form.Name,
			Target:     form.RawTarget,
			TargetDate: form.RawTargetDate,
			Recurrence: form.Recurrence,
			Errors:     errs,
			IsEdit:     true,
			CSRFToken:  csrf.Token(r),
		})
		return
	}

	goal := &models.Goal{
		ID:         id,
		Name:       form.Name,
		Target:     form.Target,
		TargetDate: form.TargetDate,
		Recurrence: form.Recurrence,
	}
	if err := h.db.UpdateGoal(user.ID, goal); err != nil {
		respondError(w, err)
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

// DeleteGoal handles the deletion of a goal, checking the delete result.
func (h *Handlers) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := storage.ParseID(r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.db.GetGoal(user.ID, id); err != nil {
		respondError(w, err)
		return
	}

	if err := h.db.DeleteGoal(user.ID, id); err != nil {
		respondError(w, err)
		return
	}

	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}
