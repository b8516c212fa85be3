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

func setupArticleTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:article-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Topic{}, &db.Article{}, &db.Favorite{}, &db.ReadingHistory{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func createArticleAuthor(t *testing.T, gdb *gorm.DB) db.User {
	t.Helper()
	author := db.User{Username: fmt.Sprintf("author-%d", time.Now().UnixNano()), Email: fmt.Sprintf("art-%d@example.com", time.Now().UnixNano()), Password: "x", IsActive: true}
	if err := gdb.Create(&author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	return author
}

func TestArticleService_ListShowsOnlyPublished(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	if _, err := svc.Create(author.ID, ArticleInput{Title: "草稿", Content: "正文", Status: "draft"}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	published, err := svc.Create(author.ID, ArticleInput{Title: "已发布", Content: "正文", Status: "publish"})
	if err != nil {
		t.Fatalf("create published: %v", err)
	}

	articles, total, err := svc.List(ArticleFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(articles) != 1 || articles[0].ID != published.ID {
		t.Fatalf("expected only the published article, got total=%d len=%d", total, len(articles))
	}
}

func TestArticleService_CreateRejectsInvalidStatus(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	if _, err := svc.Create(author.ID, ArticleInput{Title: "文章", Content: "正文", Status: "trash"}); !errors.Is(err, ErrInvalidArticleStatus) {
		t.Fatalf("expected ErrInvalidArticleStatus for trash, got %v", err)
	}
	if _, err := svc.Create(author.ID, ArticleInput{Title: "文章", Content: "正文", Status: "archived"}); !errors.Is(err, ErrInvalidArticleStatus) {
		t.Fatalf("expected ErrInvalidArticleStatus, got %v", err)
	}
}

func TestArticleService_SearchMatchesTopicName(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	topic := db.Topic{Name: "golang", IsActive: true}
	if err := gdb.Create(&topic).Error; err != nil {
		t.Fatalf("create topic: %v", err)
	}

	tagged, err := svc.Create(author.ID, ArticleInput{Title: "并发模型", Content: "正文", Status: "publish", TopicIDs: []uint{topic.ID}})
	if err != nil {
		t.Fatalf("create tagged article: %v", err)
	}
	if _, err := svc.Create(author.ID, ArticleInput{Title: "随笔", Content: "正文", Status: "publish"}); err != nil {
		t.Fatalf("create plain article: %v", err)
	}

	articles, total, err := svc.List(ArticleFilter{Search: "golang", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search by topic: %v", err)
	}
	if total != 1 || len(articles) != 1 || articles[0].ID != tagged.ID {
		t.Fatalf("expected the tagged article only, got total=%d len=%d", total, len(articles))
	}

	articles, total, err = svc.List(ArticleFilter{Search: "并发", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search by title: %v", err)
	}
	if total != 1 || articles[0].ID != tagged.ID {
		t.Fatalf("expected title search to match, got total=%d", total)
	}
}

func TestArticleService_ListFiltersFavorites(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	liked, err := svc.Create(author.ID, ArticleInput{Title: "收藏的", Content: "正文", Status: "publish"})
	if err != nil {
		t.Fatalf("create liked article: %v", err)
	}
	if _, err := svc.Create(author.ID, ArticleInput{Title: "没收藏的", Content: "正文", Status: "publish"}); err != nil {
		t.Fatalf("create other article: %v", err)
	}
	if err := gdb.Create(&db.Favorite{UserID: 42, ArticleID: liked.ID}).Error; err != nil {
		t.Fatalf("create favorite: %v", err)
	}

	articles, total, err := svc.List(ArticleFilter{FavoritesOf: 42, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if total != 1 || len(articles) != 1 || articles[0].ID != liked.ID {
		t.Fatalf("expected only the favorited article, got total=%d len=%d", total, len(articles))
	}
}

func TestArticleService_DetailBumpsViewsAndHistory(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	article, err := svc.Create(author.ID, ArticleInput{Title: "文章", Content: "正文", Status: "publish"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	got, err := svc.Detail(article.ID, 42)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if got.ViewsCount != 1 {
		t.Fatalf("expected views count 1, got %d", got.ViewsCount)
	}

	// 重复浏览只涨浏览数，不产生新的阅读历史
	if _, err := svc.Detail(article.ID, 42); err != nil {
		t.Fatalf("second detail: %v", err)
	}
	var histories int64
	if err := gdb.Model(&db.ReadingHistory{}).Where("user_id = ?", 42).Count(&histories).Error; err != nil {
		t.Fatalf("count histories: %v", err)
	}
	if histories != 1 {
		t.Fatalf("expected one reading history row, got %d", histories)
	}

	var current db.Article
	if err := gdb.First(&current, article.ID).Error; err != nil {
		t.Fatalf("reload article: %v", err)
	}
	if current.ViewsCount != 2 {
		t.Fatalf("expected views count 2, got %d", current.ViewsCount)
	}
}

func TestArticleService_MarkReadRequiresPublished(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	article, err := svc.Create(author.ID, ArticleInput{Title: "文章", Content: "正文", Status: "publish"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	if err := svc.MarkRead(article.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	var current db.Article
	if err := gdb.First(&current, article.ID).Error; err != nil {
		t.Fatalf("reload article: %v", err)
	}
	if current.ReadsCount != 1 {
		t.Fatalf("expected reads count 1, got %d", current.ReadsCount)
	}

	if err := svc.MarkRead(9999); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleService_UpdateRequiresOwner(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)
	stranger := createArticleAuthor(t, gdb)

	article, err := svc.Create(author.ID, ArticleInput{Title: "文章", Content: "正文", Status: "publish"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	if _, err := svc.Update(article.ID, stranger.ID, ArticleInput{Title: "篡改"}); !errors.Is(err, ErrNotArticleOwner) {
		t.Fatalf("expected ErrNotArticleOwner, got %v", err)
	}

	updated, err := svc.Update(article.ID, author.ID, ArticleInput{Title: "修订版"})
	if err != nil {
		t.Fatalf("update by owner: %v", err)
	}
	if updated.Title != "修订版" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
}

func TestArticleService_TrashHidesArticle(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	article, err := svc.Create(author.ID, ArticleInput{Title: "文章", Content: "正文", Status: "publish"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	if err := svc.Trash(article.ID, author.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}
	if _, err := svc.GetPublished(article.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected trashed article to look missing, got %v", err)
	}

	// 记录仍保留在库中
	var current db.Article
	if err := gdb.First(&current, article.ID).Error; err != nil {
		t.Fatalf("expected row to survive trash: %v", err)
	}
	if current.Status != db.StatusTrash {
		t.Fatalf("expected status trash, got %q", current.Status)
	}
}

func TestArticleService_ReadingHistoryHidesTrashed(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	kept, err := svc.Create(author.ID, ArticleInput{Title: "保留", Content: "正文", Status: "publish"})
	if err != nil {
		t.Fatalf("create kept article: %v", err)
	}
	trashed, err := svc.Create(author.ID, ArticleInput{Title: "要删的", Content: "正文", Status: "publish"})
	if err != nil {
		t.Fatalf("create doomed article: %v", err)
	}

	for _, id := range []uint{kept.ID, trashed.ID} {
		if _, err := svc.Detail(id, 42); err != nil {
			t.Fatalf("detail %d: %v", id, err)
		}
	}
	if err := svc.Trash(trashed.ID, author.ID); err != nil {
		t.Fatalf("trash: %v", err)
	}

	history, err := svc.ReadingHistory(42, 1, 10)
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	if len(history) != 1 || history[0].ID != kept.ID {
		t.Fatalf("expected only the surviving article in history, got %d entries", len(history))
	}
}

func TestArticleService_CreateRejectsUnknownTopics(t *testing.T) {
	gdb := setupArticleTestDB(t)
	svc := NewArticleService(gdb)
	author := createArticleAuthor(t, gdb)

	if _, err := svc.Create(author.ID, ArticleInput{Title: "文章", Content: "正文", Status: "publish", TopicIDs: []uint{999}}); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}
