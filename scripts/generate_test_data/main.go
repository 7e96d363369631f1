package main

import (
	"context"
	"fmt"
	"time"

	"github.com/metrilive/internal/config"
	"github.com/metrilive/internal/db"
	"github.com/metrilive/internal/logging"
)

const (
	demoDays          = 14
	snapshotsPerVideo = 4
)

var demoPages = []db.FacebookPage{
	{ID: "100000000000001", Name: "Metrilive Demo"},
	{ID: "100000000000002", Name: "Live Kitchen"},
}

// 测试数据生成器：为看板准备用户、主页、视频、评论与指标快照
func main() {
	log := logging.Component("generate_test_data")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("配置加载失败")
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("数据库初始化失败")
	}

	fmt.Println("开始生成测试数据...")

	store := db.NewStore(db.DB)
	ctx := context.Background()

	if err := createTestUsers(ctx, store); err != nil {
		log.Fatal().Err(err).Msg("创建测试用户失败")
	}
	if err := createTestVideos(ctx, store, time.Now().UTC()); err != nil {
		log.Fatal().Err(err).Msg("创建测试视频失败")
	}

	fmt.Println("🎉 测试数据生成完成")
}

// 创建测试用户
func createTestUsers(ctx context.Context, store *db.Store) error {
	existing, err := store.FindUserByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Println("用户已存在，跳过创建")
		return nil
	}

	adminPassword, err := db.HashPassword("admin123")
	if err != nil {
		return err
	}
	if err := store.CreateUser(ctx, &db.User{Username: "admin", Password: adminPassword, Role: db.RoleAdmin}); err != nil {
		return err
	}

	userPassword, err := db.HashPassword("user123")
	if err != nil {
		return err
	}
	user := &db.User{
		Username:        "testuser",
		Password:        userPassword,
		Role:            db.RoleUser,
		AuthorizedPages: []db.FacebookPage{demoPages[0]},
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return err
	}

	fmt.Println("✅ 测试用户创建完成")
	return nil
}

// 创建测试视频：每个主页每天一场直播，计数随快照递增
func createTestVideos(ctx context.Context, store *db.Store, now time.Time) error {
	for i := range demoPages {
		page := demoPages[i]
		if err := store.UpsertPage(ctx, &page, false); err != nil {
			return err
		}
	}

	day := now.Truncate(24 * time.Hour)
	for pageIndex, page := range demoPages {
		for d := 0; d < demoDays; d++ {
			created := day.AddDate(0, 0, -d).Add(time.Duration(18+pageIndex) * time.Hour)
			views := int64(50*(d+1) + 17*pageIndex)
			video := &db.LiveVideo{
				ID:           fmt.Sprintf("%s_%02d", page.ID, d),
				PageID:       page.ID,
				Title:        fmt.Sprintf("%s #%d", page.Name, demoDays-d),
				Description:  "演示数据",
				CreationTime: &created,
				ViewCount:    views,
				CommentCount: int64(d%5 + 1),
			}
			if err := store.UpsertVideo(ctx, video); err != nil {
				return err
			}

			for s := 1; s <= snapshotsPerVideo; s++ {
				snapshot := &db.VideoMetric{
					LiveVideoID:  video.ID,
					CollectedAt:  created.Add(time.Duration(s) * 15 * time.Minute),
					ViewCount:    views * int64(s) / snapshotsPerVideo,
					CommentCount: video.CommentCount * int64(s) / snapshotsPerVideo,
				}
				if err := store.AppendMetric(ctx, snapshot); err != nil {
					return err
				}
			}

			for c := int64(0); c < video.CommentCount; c++ {
				commentTime := created.Add(time.Duration(c+1) * time.Minute)
				comment := &db.Comment{
					ID:          fmt.Sprintf("%s_%d", video.ID, c),
					LiveVideoID: video.ID,
					FromID:      fmt.Sprintf("viewer%d", c),
					FromName:    fmt.Sprintf("Viewer %d", c),
					Message:     "👏",
					CreatedTime: &commentTime,
				}
				if err := store.UpsertComment(ctx, comment); err != nil {
					return err
				}
			}
		}
	}

	fmt.Printf("✅ 测试视频创建完成: %d 个主页, 每个 %d 场直播\n", len(demoPages), demoDays)
	return nil
}
