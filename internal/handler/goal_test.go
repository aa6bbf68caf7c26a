package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhasan/journally/internal/model"
)

func createGoal(t *testing.T, env *testEnv, cookie *http.Cookie, title string) model.Goal {
	t.Helper()

	body := fmt.Sprintf(`{"title":%q}`, title)
	req := httptest.NewRequest(http.MethodPost, "/api/goals", bytes.NewBufferString(body))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()

	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("creating goal %q: status = %d, body = %s", title, rr.Code, rr.Body.String())
	}

	var goal model.Goal
	if err := json.NewDecoder(rr.Body).Decode(&goal); err != nil {
		t.Fatalf("decoding goal: %v", err)
	}
	return goal
}

func TestGoalLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.sessionCookie(t, "ada@example.com")

	goal := createGoal(t, env, cookie, "Morning run")
	assert.Equal(t, "Morning run", goal.Title)
	assert.NotEmpty(t, goal.ID)

	// Rename.
	req := httptest.NewRequest(http.MethodPut, "/api/goals/"+goal.ID,
		bytes.NewBufferString(`{"title":"Evening run"}`))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Archive.
	req = httptest.NewRequest(http.MethodDelete, "/api/goals/"+goal.ID, nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Active list is now empty, history still shows it.
	req = httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var active []model.Goal
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&active))
	assert.Len(t, active, 0)

	req = httptest.NewRequest(http.MethodGet, "/api/goals/history", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var history []model.Goal
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&history))
	assert.Len(t, history, 1)

	// Restore.
	req = httptest.NewRequest(http.MethodPost, "/api/goals/"+goal.ID+"/restore", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var restored model.Goal
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&restored))
	assert.Nil(t, restored.DeletedAt)

	// Permanent delete.
	req = httptest.NewRequest(http.MethodDelete, "/api/goals/"+goal.ID+"/permanent", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/goals/history", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	history = nil
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&history))
	assert.Len(t, history, 0)
}

func TestGoalValidation(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.sessionCookie(t, "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/goals", bytes.NewBufferString(`{"title":"  "}`))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGoalIsolationBetweenUsers(t *testing.T) {
	env := newTestEnv(t)
	adaCookie, _ := env.sessionCookie(t, "ada@example.com")
	graceCookie, _ := env.sessionCookie(t, "grace@example.com")

	goal := createGoal(t, env, adaCookie, "Ada's goal")

	// Grace can't see or touch Ada's goal.
	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.AddCookie(graceCookie)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var goals []model.Goal
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&goals))
	assert.Len(t, goals, 0)

	req = httptest.NewRequest(http.MethodDelete, "/api/goals/"+goal.ID, nil)
	req.AddCookie(graceCookie)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestToggleEndpoint(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.sessionCookie(t, "ada@example.com")
	goal := createGoal(t, env, cookie, "Read")

	today := time.Now().Format(model.DateLayout)
	body := fmt.Sprintf(`{"date":%q}`, today)

	toggle := func() map[string]string {
		req := httptest.NewRequest(http.MethodPost, "/api/goals/"+goal.ID+"/toggle",
			bytes.NewBufferString(body))
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		return resp
	}

	assert.Equal(t, "checked", toggle()["status"])
	assert.Equal(t, "unchecked", toggle()["status"])
	assert.Equal(t, "checked", toggle()["status"])

	// The surviving mark shows up in /api/logs.
	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	var logs []model.GoalLog
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&logs))
	if assert.Len(t, logs, 1) {
		assert.Equal(t, today, logs[0].CompletedAt)
	}
}

func TestToggleRejectsFutureDate(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.sessionCookie(t, "ada@example.com")
	goal := createGoal(t, env, cookie, "Read")

	tomorrow := time.Now().AddDate(0, 0, 1).Format(model.DateLayout)
	body := fmt.Sprintf(`{"date":%q}`, tomorrow)

	req := httptest.NewRequest(http.MethodPost, "/api/goals/"+goal.ID+"/toggle",
		bytes.NewBufferString(body))
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
