package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/metrilive/internal/db"
)

func setupServiceTestStore(t *testing.T) *db.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

	return db.NewStore(gdb)
}

// seedPrincipal creates a user authorized for pageIDs and returns its principal.
func seedPrincipal(t *testing.T, store *db.Store, username string, role db.Role, token string, pageIDs ...string) Principal {
	t.Helper()
	ctx := context.Background()

	user := &db.User{Username: username, Password: "x", Role: role, FacebookAccessToken: token}
	for _, id := range pageIDs {
		user.AuthorizedPages = append(user.AuthorizedPages, db.FacebookPage{ID: id, Name: "Page " + id})
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}

	loaded, err := store.FindUser(ctx, user.ID)
	if err != nil || loaded == nil {
		t.Fatalf("failed to reload user %s: %v", username, err)
	}
	return NewPrincipal(loaded)
}

type graphCall struct {
	Token  string
	Path   string
	Fields []string
}

// fakeGraph answers Graph calls from canned JSON bodies keyed by path or id.
type fakeGraph struct {
	mu          sync.Mutex
	connections map[string]string
	objects     map[string]string
	errs        map[string]error
	calls       []graphCall
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		connections: make(map[string]string),
		objects:     make(map[string]string),
		errs:        make(map[string]error),
	}
}

func (g *fakeGraph) FetchConnection(_ context.Context, token, path string, out any) error {
	g.record(graphCall{Token: token, Path: path})
	if err := g.errs[path]; err != nil {
		return err
	}
	body, ok := g.connections[path]
	if !ok {
		body = "[]"
	}
	return json.Unmarshal([]byte(body), out)
}

func (g *fakeGraph) FetchObject(_ context.Context, token, id string, fields []string, out any) error {
	g.record(graphCall{Token: token, Path: id, Fields: fields})
	if err := g.errs[id]; err != nil {
		return err
	}
	body, ok := g.objects[id]
	if !ok {
		return fmt.Errorf("fake graph: no object %q", id)
	}
	return json.Unmarshal([]byte(body), out)
}

func (g *fakeGraph) record(call graphCall) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

func (g *fakeGraph) callPaths() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	paths := make([]string, 0, len(g.calls))
	for _, call := range g.calls {
		paths = append(paths, call.Path)
	}
	return paths
}

func (g *fakeGraph) lastToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.calls) == 0 {
		return ""
	}
	return g.calls[len(g.calls)-1].Token
}
