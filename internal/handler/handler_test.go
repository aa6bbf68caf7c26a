package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nhasan/journally/internal/auth"
	"github.com/nhasan/journally/internal/handler"
	"github.com/nhasan/journally/internal/repository/sqlite"
	"github.com/nhasan/journally/internal/service"
)

// testEnv wires the handlers against an in-memory database, mirroring the
// server's composition root minus the HTTP server itself.
type testEnv struct {
	router *chi.Mux
	auth   *service.AuthService
	goals  *service.GoalService
	groups *service.GroupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)

	authService := service.NewAuthService(db, tokens, passwords, logger)
	goalService := service.NewGoalService(db, db, logger)
	groupService := service.NewGroupService(db, logger)
	summaryService := service.NewSummaryService(db, db, logger)

	authHandler := handler.NewAuthHandler(authService, nil, logger)
	goalHandler := handler.NewGoalHandler(goalService, logger)
	groupHandler := handler.NewGroupHandler(groupService, logger)
	summaryHandler := handler.NewSummaryHandler(summaryService, logger)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})
	router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)
		r.Put("/me", authHandler.HandleUpdateProfile)
		r.Put("/me/password", authHandler.HandleChangePassword)

		r.Get("/goals", goalHandler.HandleList)
		r.Get("/goals/history", goalHandler.HandleHistory)
		r.Post("/goals", goalHandler.HandleCreate)
		r.Put("/goals/{id}", goalHandler.HandleUpdate)
		r.Delete("/goals/{id}", goalHandler.HandleArchive)
		r.Post("/goals/{id}/restore", goalHandler.HandleRestore)
		r.Delete("/goals/{id}/permanent", goalHandler.HandlePurge)
		r.Post("/goals/{id}/toggle", goalHandler.HandleToggle)

		r.Get("/logs", goalHandler.HandleListLogs)
		r.Get("/summary", summaryHandler.HandleSummary)

		r.Post("/groups", groupHandler.HandleCreate)
		r.Post("/groups/join", groupHandler.HandleJoin)
		r.Get("/groups", groupHandler.HandleList)
		r.Post("/groups/{id}/leave", groupHandler.HandleLeave)
		r.Delete("/groups/{id}", groupHandler.HandleDelete)
		r.Get("/groups/{id}/members", groupHandler.HandleMembers)
	})

	return &testEnv{
		router: router,
		auth:   authService,
		goals:  goalService,
		groups: groupService,
	}
}

// sessionCookie signs a user up through the service layer and returns a
// cookie carrying their session token.
func (e *testEnv) sessionCookie(t *testing.T, email string) (*http.Cookie, string) {
	t.Helper()

	result, err := e.auth.SignUp(t.Context(), email, "correct-horse", "Test", "User")
	if err != nil {
		t.Fatalf("failed to sign up %s: %v", email, err)
	}

	cookie := &http.Cookie{Name: auth.SessionCookie, Value: result.Token}
	return cookie, result.User.ID
}
