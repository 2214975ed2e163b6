// Package forms holds the submitted form values for each resource and the
// declarative field rules evaluated before anything is persisted.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DateLayout is the wire format for submitted calendar dates.
const DateLayout = "2006-01-02"

// AccountForm carries a submitted account form. Raw values are kept so an
// invalid submission can be re-rendered exactly as the user typed it.
type AccountForm struct {
	Name      string `validate:"required,min=5"`
	RawAmount string `validate:"-"`
	Amount    float64
	Debt      bool
}

// NewAccountForm extracts account fields from submitted form values.
func NewAccountForm(values url.Values) *AccountForm {
	return &AccountForm{
		Name:      strings.TrimSpace(values.Get("name")),
		RawAmount: strings.TrimSpace(values.Get("amount")),
		Debt:      parseCheckbox(values.Get("debt")),
	}
}

// Validate evaluates the field rules and returns one message per failing
// field. An empty result means the parsed fields are safe to persist.
func (f *AccountForm) Validate() []string {
	var errs []string

	amount, err := strconv.ParseFloat(f.RawAmount, 64)
	if err != nil {
		errs = append(errs, "amount must be a number")
	} else {
		f.Amount = amount
	}

	errs = append(errs, fieldErrors(validate.Struct(f))...)
	return errs
}

// GoalForm carries a submitted goal form.
type GoalForm struct {
	Name          string `validate:"required,min=5"`
	RawTarget     string `validate:"-"`
	Target        float64
	RawTargetDate string `validate:"-"`
	TargetDate    time.Time
	Recurrence    string
}

// NewGoalForm extracts goal fields from submitted form values.
func NewGoalForm(values url.Values) *GoalForm {
	return &GoalForm{
		Name:          strings.TrimSpace(values.Get("name")),
		RawTarget:     strings.TrimSpace(values.Get("target")),
		RawTargetDate: strings.TrimSpace(values.Get("target_date")),
		Recurrence:    strings.TrimSpace(values.Get("recurrence")),
	}
}

// Validate evaluates the field rules and returns one message per failing
// field. The target date is normalized to midnight UTC.
func (f *GoalForm) Validate() []string {
	var errs []string

	target, err := strconv.ParseFloat(f.RawTarget, 64)
	switch {
	case err != nil:
		errs = append(errs, "target must be a number")
	case target < 0:
		errs = append(errs, "target must be at least 0")
	default:
		f.Target = target
	}

	date, err := time.Parse(DateLayout, f.RawTargetDate)
	if err != nil {
		errs = append(errs, "target_date must be a valid date")
	} else {
		f.TargetDate = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	}

	errs = append(errs, fieldErrors(validate.Struct(f))...)
	return errs
}

// fieldErrors translates validator failures into field-scoped messages
// suitable for re-rendered forms.
func fieldErrors(err error) []string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	var msgs []string
	if !errors.As(err, &verrs) {
		return []string{"invalid form submission"}
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return msgs
}

func parseCheckbox(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1":
		return true
	}
	return false
}
