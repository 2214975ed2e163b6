package handlers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"simple-budget/internal/models"
	"simple-budget/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// GoalHandlersTestSuite exercises the goal routes end to end against an
// in-memory database.
type GoalHandlersTestSuite struct {
	suite.Suite
	h     *Handlers
	db    *storage.DB
	alice *models.User
	bob   *models.User
}

// SetupTest runs before each test
func (suite *GoalHandlersTestSuite) SetupTest() {
	suite.h, suite.db = newTestHandlers(suite.T())

	var err error
	suite.alice, err = suite.db.CreateUser("alice", "hash-a")
	require.NoError(suite.T(), err)
	suite.bob, err = suite.db.CreateUser("bob", "hash-b")
	require.NoError(suite.T(), err)
}

func (suite *GoalHandlersTestSuite) asAlice() http.Handler {
	return resourceRouter(suite.h, suite.alice)
}

func (suite *GoalHandlersTestSuite) createGoal(user *models.User, name string) string {
	id, err := suite.db.CreateGoal(&models.Goal{
		UserID:     user.ID,
		Name:       name,
		Target:     1000.00,
		TargetDate: time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC),
		Recurrence: "monthly",
	})
	require.NoError(suite.T(), err)
	return id
}

func (suite *GoalHandlersTestSuite) TestCreateGoalSuccess() {
	form := url.Values{
		"name":        {"Emergency Fund"},
		"target":      {"5000"},
		"target_date": {"2027-06-01"},
		"recurrence":  {"monthly"},
	}
	w := submit(suite.asAlice(), "POST", "/goals", form, nil)

	assert.Equal(suite.T(), http.StatusSeeOther, w.Code)
	assert.Equal(suite.T(), "/goals", w.Header().Get("Location"))

	goals, err := suite.db.ListGoals(suite.alice.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), goals, 1)
	assert.Equal(suite.T(), "Emergency Fund", goals[0].Name)
	assert.Equal(suite.T(), 5000.00, goals[0].Target)
	assert.Equal(suite.T(), "monthly", goals[0].Recurrence)
	assert.Equal(suite.T(), suite.alice.ID, goals[0].UserID)

	// Stored at midnight UTC
	want := time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.True(suite.T(), want.Equal(goals[0].TargetDate),
		"target date should be midnight UTC, got %v", goals[0].TargetDate)
}

func (suite *GoalHandlersTestSuite) TestCreateGoalValidation() {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name: "short name",
			form: url.Values{
				"name":        {"abcd"},
				"target":      {"100"},
				"target_date": {"2027-06-01"},
			},
			message: "name must be at least 5 characters",
		},
		{
			name: "negative target",
			form: url.Values{
				"name":        {"Emergency Fund"},
				"target":      {"-10"},
				"target_date": {"2027-06-01"},
			},
			message: "target must be at least 0",
		},
		{
			name: "unparseable target",
			form: url.Values{
				"name":        {"Emergency Fund"},
				"target":      {"lots"},
				"target_date": {"2027-06-01"},
			},
			message: "target must be a number",
		},
		{
			name: "bad date",
			form: url.Values{
				"name":        {"Emergency Fund"},
				"target":      {"100"},
				"target_date": {"June 1st"},
			},
			message: "target_date must be a valid date",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := submit(suite.asAlice(), "POST", "/goals", tt.form, nil)
			assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
			assert.Contains(suite.T(), w.Body.String(), tt.message)

			goals, err := suite.db.ListGoals(suite.alice.ID)
			require.NoError(suite.T(), err)
			assert.Empty(suite.T(), goals, "nothing should be persisted on validation failure")
		})
	}
}

func (suite *GoalHandlersTestSuite) TestCreateGoalTurboStream() {
	form := url.Values{
		"name":        {"abcd"},
		"target":      {"100"},
		"target_date": {"2027-06-01"},
	}
	w := submit(suite.asAlice(), "POST", "/goals", form, map[string]string{
		"Accept": "text/vnd.turbo-stream.html",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), TurboStreamContentType, w.Header().Get("Content-Type"))
	assert.Contains(suite.T(), w.Body.String(), "<turbo-stream")
}

func (suite *GoalHandlersTestSuite) TestListGoalsScopedToUser() {
	suite.createGoal(suite.alice, "Alice Vacation")
	suite.createGoal(suite.bob, "Bob Boat Fund")

	w := submit(suite.asAlice(), "GET", "/goals", nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(suite.T(), body, "Alice Vacation")
	assert.NotContains(suite.T(), body, "Bob Boat Fund", "index leaked another user's goal")
}

func (suite *GoalHandlersTestSuite) TestEditGoalForm() {
	id := suite.createGoal(suite.alice, "Emergency Fund")

	w := submit(suite.asAlice(), "GET", "/goals/"+id, nil, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(suite.T(), body, `value="Emergency Fund"`)
	assert.Contains(suite.T(), body, `value="2027-06-01"`)
}

func (suite *GoalHandlersTestSuite) TestEditGoalFormNotFound() {
	w := submit(suite.asAlice(), "GET", "/goals/"+storage.NewID(), nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *GoalHandlersTestSuite) TestEditGoalFormMalformedID() {
	w := submit(suite.asAlice(), "GET", "/goals/123", nil, nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *GoalHandlersTestSuite) TestUpdateGoal() {
	id := suite.createGoal(suite.alice, "Emergency Fund")

	form := url.Values{
		"name":        {"Bigger Emergency Fund"},
		"target":      {"7500"},
		"target_date": {"2028-01-15"},
		"recurrence":  {"yearly"},
	}
	w := submit(suite.asAlice(), "PUT", "/goals/"+id, form, nil)

	assert.Equal(suite.T(), http.StatusSeeOther, w.Code)

	goal, err := suite.db.GetGoal(suite.alice.ID, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Bigger Emergency Fund", goal.Name)
	assert.Equal(suite.T(), 7500.00, goal.Target)
	assert.Equal(suite.T(), "yearly", goal.Recurrence)
}

func (suite *GoalHandlersTestSuite) TestUpdateGoalOtherUsersRecord() {
	id := suite.createGoal(suite.bob, "Bob Boat Fund")

	form := url.Values{
		"name":        {"Hijacked Goal"},
		"target":      {"0"},
		"target_date": {"2027-06-01"},
	}
	w := submit(suite.asAlice(), "PUT", "/goals/"+id, form, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *GoalHandlersTestSuite) TestDeleteGoal() {
	id := suite.createGoal(suite.alice, "Emergency Fund")

	w := submit(suite.asAlice(), "DELETE", "/goals/"+id, nil, nil)
	assert.Equal(suite.T(), http.StatusSeeOther, w.Code)
	assert.Equal(suite.T(), "/goals", w.Header().Get("Location"))

	// Deleting again is NotFound
	w = submit(suite.asAlice(), "DELETE", "/goals/"+id, nil, nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestGoalHandlersSuite(t *testing.T) {
	suite.Run(t, new(GoalHandlersTestSuite))
}
