package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/metrilive/internal/config"
	"github.com/metrilive/internal/db"
	"github.com/metrilive/internal/logging"
)

// 创建一个登录用户，并可选地授予若干 Facebook 主页的访问权限
//
//	go run ./scripts/init_user -username ana -password s3cret -role USER -pages 1234,5678
func main() {
	username := flag.String("username", "", "login name")
	password := flag.String("password", "", "plain-text password, stored as a bcrypt hash")
	role := flag.String("role", string(db.RoleUser), "ADMIN or USER")
	pages := flag.String("pages", "", "comma separated Facebook page ids the user may read")
	flag.Parse()

	log := logging.Component("init_user")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("配置加载失败")
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("数据库初始化失败")
	}

	user, err := createUser(context.Background(), db.NewStore(db.DB), *username, *password, *role, splitPageIDs(*pages))
	if err != nil {
		log.Error().Err(err).Msg("创建用户失败")
		os.Exit(1)
	}

	fmt.Printf("用户创建成功: %s (%s), 授权主页 %d 个\n", user.Username, user.Role, len(user.AuthorizedPages))
}

func createUser(ctx context.Context, store *db.Store, username, password, rawRole string, pageIDs []string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, errors.New("username and password are required")
	}

	role, ok := db.ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", rawRole)
	}

	existing, err := store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %q already exists", username)
	}

	hashed, err := db.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 未同步过的主页先以空名称占位，后续同步会刷新名称
	known, err := store.FindPagesByIDs(ctx, pageIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]db.FacebookPage, len(known))
	for _, page := range known {
		byID[page.ID] = page
	}

	user := &db.User{Username: username, Password: hashed, Role: role}
	for _, id := range pageIDs {
		page, ok := byID[id]
		if !ok {
			page = db.FacebookPage{ID: id}
		}
		user.AuthorizedPages = append(user.AuthorizedPages, page)
	}

	if err := store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func splitPageIDs(raw string) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
