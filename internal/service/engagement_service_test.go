package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkstream/internal/db"
)

func setupEngagementTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:engagement-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Topic{}, &db.Article{}, &db.Clap{}, &db.Favorite{}, &db.Pin{}, &db.PinArticle{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func createEngagementFixtures(t *testing.T, gdb *gorm.DB, status string) (db.User, db.Article) {
	t.Helper()
	author := db.User{Username: fmt.Sprintf("author-%d", time.Now().UnixNano()), Email: fmt.Sprintf("a-%d@example.com", time.Now().UnixNano()), Password: "x", IsActive: true}
	if err := gdb.Create(&author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	article := db.Article{AuthorID: author.ID, Title: "测试文章", Content: "正文", Status: status}
	if err := gdb.Create(&article).Error; err != nil {
		t.Fatalf("create article: %v", err)
	}
	return author, article
}

func TestEngagementService_ClapStartsAtOneAndCaps(t *testing.T) {
	gdb := setupEngagementTestDB(t)
	svc := NewEngagementService(gdb, nil)
	_, article := createEngagementFixtures(t, gdb, db.StatusPublish)

	count, err := svc.Clap(42, article.ID)
	if err != nil {
		t.Fatalf("first clap: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected first clap count 1, got %d", count)
	}

	for i := 0; i < db.MaxEngagementCount+5; i++ {
		count, err = svc.Clap(42, article.ID)
		if err != nil {
			t.Fatalf("clap %d: %v", i, err)
		}
	}
	if count != db.MaxEngagementCount {
		t.Fatalf("expected clap count capped at %d, got %d", db.MaxEngagementCount, count)
	}
}

func TestEngagementService_ClapRejectsUnpublished(t *testing.T) {
	gdb := setupEngagementTestDB(t)
	svc := NewEngagementService(gdb, nil)
	_, draft := createEngagementFixtures(t, gdb, db.StatusDraft)

	if _, err := svc.Clap(42, draft.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound for draft, got %v", err)
	}
	if _, err := svc.Clap(42, 9999); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound for missing article, got %v", err)
	}
}

func TestEngagementService_RemoveClapsThenClapAgain(t *testing.T) {
	gdb := setupEngagementTestDB(t)
	svc := NewEngagementService(gdb, nil)
	_, article := createEngagementFixtures(t, gdb, db.StatusPublish)

	if err := svc.RemoveClaps(42, article.ID); !errors.Is(err, ErrClapNotFound) {
		t.Fatalf("expected ErrClapNotFound, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Clap(42, article.ID); err != nil {
			t.Fatalf("clap: %v", err)
		}
	}
	if err := svc.RemoveClaps(42, article.ID); err != nil {
		t.Fatalf("remove claps: %v", err)
	}

	// 删除后同一配对可以重新开始计数
	count, err := svc.Clap(42, article.ID)
	if err != nil {
		t.Fatalf("clap after removal: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count reset to 1, got %d", count)
	}
}

func TestEngagementService_FavoriteIsIdempotent(t *testing.T) {
	gdb := setupEngagementTestDB(t)
	svc := NewEngagementService(gdb, nil)
	_, article := createEngagementFixtures(t, gdb, db.StatusPublish)

	created, err := svc.Favorite(42, article.ID)
	if err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if !created {
		t.Fatal("expected first favorite to be created")
	}

	created, err = svc.Favorite(42, article.ID)
	if err != nil {
		t.Fatalf("second favorite: %v", err)
	}
	if created {
		t.Fatal("expected repeat favorite to be reported as existing")
	}

	if err := svc.Unfavorite(42, article.ID); err != nil {
		t.Fatalf("unfavorite: %v", err)
	}
	if err := svc.Unfavorite(42, article.ID); !errors.Is(err, ErrFavoriteNotFound) {
		t.Fatalf("expected ErrFavoriteNotFound, got %v", err)
	}
}

func TestEngagementService_PinConflictsButArchiveIncrements(t *testing.T) {
	gdb := setupEngagementTestDB(t)
	svc := NewEngagementService(gdb, nil)
	_, article := createEngagementFixtures(t, gdb, db.StatusPublish)

	count, err := svc.Pin(42, article.ID)
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected pin count 1, got %d", count)
	}

	if _, err := svc.Pin(42, article.ID); !errors.Is(err, ErrAlreadyPinned) {
		t.Fatalf("expected ErrAlreadyPinned, got %v", err)
	}

	// archive 与 pin 共用同一条记录，但重复调用不报冲突
	count, err = svc.Archive(42, article.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected shared count 2 after archive, got %d", count)
	}
}

func TestEngagementService_ArchiveCapsAtLimit(t *testing.T) {
	gdb := setupEngagementTestDB(t)
	svc := NewEngagementService(gdb, nil)
	_, article := createEngagementFixtures(t, gdb, db.StatusPublish)

	var count int
	var err error
	for i := 0; i < db.MaxEngagementCount+3; i++ {
		count, err = svc.Archive(42, article.ID)
		if err != nil {
			t.Fatalf("archive %d: %v", i, err)
		}
	}
	if count != db.MaxEngagementCount {
		t.Fatalf("expected archive count capped at %d, got %d", db.MaxEngagementCount, count)
	}
}

func TestEngagementService_UnpinThenPinAgain(t *testing.T) {
	gdb := setupEngagementTestDB(t)
	svc := NewEngagementService(gdb, nil)
	_, article := createEngagementFixtures(t, gdb, db.StatusPublish)

	if err := svc.Unpin(42, article.ID); !errors.Is(err, ErrPinNotFound) {
		t.Fatalf("expected ErrPinNotFound, got %v", err)
	}

	if _, err := svc.Pin(42, article.ID); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := svc.Unpin(42, article.ID); err != nil {
		t.Fatalf("unpin: %v", err)
	}

	count, err := svc.Pin(42, article.ID)
	if err != nil {
		t.Fatalf("pin after unpin: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count reset to 1, got %d", count)
	}
}
