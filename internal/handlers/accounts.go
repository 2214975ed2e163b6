package handlers

import (
	"log"
	"net/http"
	"strconv"

	"simple-budget/internal/forms"
	"simple-budget/internal/models"
	"simple-budget/internal/storage"

	"github.com/gorilla/csrf"
	"github.com/shopspring/decimal"
)

// AccountItem represents an account in the index view.
type AccountItem struct {
	ID     string
	Name   string
	Amount string
	Debt   bool
}

// AccountsIndexViewModel is the data passed to the accounts index template.
type AccountsIndexViewModel struct {
	Accounts  []AccountItem
	Total     string
	CSRFToken string
}

// AccountFormViewModel is the data passed to the account create/edit form
// templates. Field values are the raw submitted strings so an invalid form
// comes back exactly as the user typed it.
type AccountFormViewModel struct {
	ID        string
	Name      string
	Amount    string
	Debt      bool
	Errors    []string
	IsEdit    bool
	CSRFToken string
}

// formatAmount renders a monetary value with two decimal places.
func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ListAccounts renders the accounts index with the user's net total.
// Database errors degrade to an empty list rather than failing the page.
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	accounts, err := h.db.ListAccounts(user.ID)
	if err != nil {
		log.Printf("ListAccounts error: %v", err)
		accounts = nil
	}

	var debt, nonDebt float64
	items := make([]AccountItem, 0, len(accounts))
	for _, a := range accounts {
		if a.Debt {
			debt += a.Amount
		} else {
			nonDebt += a.Amount
		}
		items = append(items, AccountItem{
			ID:     a.ID,
			Name:   a.Name,
			Amount: formatAmount(a.Amount),
			Debt:   a.Debt,
		})
	}

	h.render(w, r, "accounts/index.html", AccountsIndexViewModel{
		Accounts:  items,
		Total:     formatAmount(nonDebt - debt),
		CSRFToken: csrf.Token(r),
	})
}

// CreateAccountForm renders the form to create a new account.
func (h *Handlers) CreateAccountForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "accounts/new.html", AccountFormViewModel{
		CSRFToken: csrf.Token(r),
	})
}

// CreateAccount handles the creation of a new account.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := forms.NewAccountForm(r.PostForm)
	if errs := form.Validate(); len(errs) > 0 {
		h.renderStatus(w, r, http.StatusBadRequest, "accounts/new.html", "accounts/form.turbo.html", AccountFormViewModel{
			Name:      form.Name,
			Amount:    form.RawAmount,
			Debt:      form.Debt,
			Errors:    errs,
			CSRFToken: csrf.Token(r),
		})
		return
	}

	account := &models.Account{
		UserID: user.ID,
		Name:   form.Name,
		Amount: form.Amount,
		Debt:   form.Debt,
	}
	if _, err := h.db.CreateAccount(account); err != nil {
		respondError(w, err)
		return
	}

	http.Redirect(w, r, "/accounts", http.StatusSeeOther)
}

// EditAccountForm renders the form to edit an existing account.
func (h *Handlers) EditAccountForm(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := storage.ParseID(r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	account, err := h.db.GetAccount(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}

	h.render(w, r, "accounts/edit.html", AccountFormViewModel{
		ID:        account.ID,
		Name:      account.Name,
		Amount:    strconv.FormatFloat(account.Amount, 'f', -1, 64),
		Debt:      account.Debt,
		IsEdit:    true,
		CSRFToken: csrf.Token(r),
	})
}

// UpdateAccount handles the update of an existing account.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
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

	form := forms.NewAccountForm(r.PostForm)
	if errs := form.Validate(); len(errs) > 0 {
		h.renderStatus(w, r, http.StatusBadRequest, "accounts/edit.html", "accounts/form.turbo.html", AccountFormViewModel{
			ID:        id,
			Name:      form.Name,
			Amount:    form.RawAmount,
			Debt:      form.Debt,
			Errors:    errs,
			IsEdit:    true,
			CSRFToken: csrf.Token(r),
		})
		return
	}

	account := &models.Account{
		ID:     id,
		Name:   form.Name,
		Amount: form.Amount,
		Debt:   form.Debt,
	}
	if err := h.db.UpdateAccount(user.ID, account); err != nil {
		respondError(w, err)
		return
	}

	http.Redirect(w, r, "/accounts", http.StatusSeeOther)
}

// DeleteAccount handles the deletion of an account. The delete result is
// checked so a failed delete surfaces instead of silently redirecting.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	id, err := storage.ParseID(r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.db.GetAccount(user.ID, id); err != nil {
		respondError(w, err)
		return
	}

	if err := h.db.DeleteAccount(user.ID, id); err != nil {
		respondError(w, err)
		return
	}

	http.Redirect(w, r, "/accounts", http.StatusSeeOther)
}
