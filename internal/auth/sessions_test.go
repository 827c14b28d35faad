package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openshelf/locallibrary/internal/config"
	"github.com/openshelf/locallibrary/internal/entities"
)

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}

	cfg := config.Auth{
		Mode:            config.AuthModeLocal,
		SessionLifetime: 24 * time.Hour,
		SecureCookies:   false,
	}

	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	return sm
}

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t)

	if sm.SessionManager == nil {
		t.Fatal("inner session manager should not be nil")
	}

	if sm.Cookie.Name != "session" {
		t.Errorf("Expected cookie name 'session', got '%s'", sm.Cookie.Name)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("Cookie should be HttpOnly")
	}
	if sm.Cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("Expected SameSiteStrictMode, got %v", sm.Cookie.SameSite)
	}
}

func TestSessionManager_CreateAndRetrieveSession(t *testing.T) {
	sm := setupSessionManager(t)

	user := &entities.User{
		ID:       123,
		Username: "librarian",
		Email:    "librarian@example.com",
		Role:     entities.UserRoleLibrarian,
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.IsAuthenticated(r) {
			t.Error("Should not be authenticated before login")
		}

		if err := sm.CreateSession(r, user); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if got := sm.GetUserID(r); got != user.ID {
			t.Errorf("Expected user ID %d, got %d", user.ID, got)
		}
		if got := sm.GetUsername(r); got != user.Username {
			t.Errorf("Expected username '%s', got '%s'", user.Username, got)
		}
		if got := sm.GetUserRole(r); got != user.Role {
			t.Errorf("Expected role '%s', got '%s'", user.Role, got)
		}
		if !sm.IsAuthenticated(r) {
			t.Error("Should be authenticated after login")
		}

		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestSessionManager_DestroySession(t *testing.T) {
	sm := setupSessionManager(t)

	user := &entities.User{
		ID:       789,
		Username: "reader",
		Email:    "reader@example.com",
		Role:     entities.UserRoleMember,
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := sm.CreateSession(r, user); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if !sm.IsAuthenticated(r) {
			t.Error("Should be authenticated after login")
		}

		if err := sm.DestroySession(r); err != nil {
			t.Fatalf("failed to destroy session: %v", err)
		}
		if sm.IsAuthenticated(r) {
			t.Error("Should not be authenticated after session destroy")
		}

		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(rr, req)
}

func TestSessionManager_IncrementVisitCount(t *testing.T) {
	sm := setupSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First visit sees zero, then the counter climbs
		if got := sm.IncrementVisitCount(r); got != 0 {
			t.Errorf("first visit count = %d, want 0", got)
		}
		if got := sm.IncrementVisitCount(r); got != 1 {
			t.Errorf("second visit count = %d, want 1", got)
		}
		if got := sm.IncrementVisitCount(r); got != 2 {
			t.Errorf("third visit count = %d, want 2", got)
		}

		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(rr, req)
}

func TestSessionManager_EmptyRole(t *testing.T) {
	sm := setupSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role := sm.GetUserRole(r); role != "" {
			t.Errorf("Expected empty role, got '%s'", role)
		}
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(rr, req)
}
