package router

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/metrilive/internal/db"
	"github.com/metrilive/internal/facebook"
	"github.com/metrilive/internal/handler"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *db.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	if err := db.EnsureAdmin(gdb, "root", "root-password"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	store := db.NewStore(gdb)
	graph := facebook.NewClient(facebook.Options{BaseURL: "http://127.0.0.1:0"})
	return SetupRouter(handler.NewAPI(store, graph), "test-session-secret"), store
}

func TestPingAndMetricsArePublic(t *testing.T) {
	r, _ := setupTestRouter(t)

	for _, path := range []string{"/ping", "/metrics"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", path, rr.Code)
		}
	}
}

func TestSecuredRoutesRequireSession(t *testing.T) {
	r, _ := setupTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/facebook/videos", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestLoginSessionFlow(t *testing.T) {
	r, _ := setupTestRouter(t)

	login := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"root","password":"wrong"}`))
	login.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, login)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for wrong password, got %d", rr.Code)
	}

	login = httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"root","password":"root-password"}`))
	login.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, login)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	me := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, cookie := range cookies {
		me.AddCookie(cookie)
	}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, me)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"role":"ADMIN"`) {
		t.Fatalf("expected admin principal, got %s", rr.Body.String())
	}

	videos := httptest.NewRequest(http.MethodGet, "/api/facebook/videos", nil)
	for _, cookie := range cookies {
		videos.AddCookie(cookie)
	}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, videos)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}

func TestSyncPagesWithoutTokenIsPreconditionFailed(t *testing.T) {
	r, store := setupTestRouter(t)

	user, err := store.FindUserByUsername(context.Background(), "root")
	if err != nil || user == nil {
		t.Fatalf("expected seeded admin: %v", err)
	}

	login := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"root","password":"root-password"}`))
	login.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, login)

	req := httptest.NewRequest(http.MethodGet, "/api/facebook/pages", nil)
	for _, cookie := range rr.Result().Cookies() {
		req.AddCookie(cookie)
	}
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected status 412, got %d", rr.Code)
	}
}
