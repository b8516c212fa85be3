package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkstream/internal/db"
)

func setupCommentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:comment-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Article{}, &db.Comment{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func createCommentArticle(t *testing.T, gdb *gorm.DB, status string) db.Article {
	t.Helper()
	author := db.User{Username: fmt.Sprintf("author-%d", time.Now().UnixNano()), Email: fmt.Sprintf("c-%d@example.com", time.Now().UnixNano()), Password: "x", IsActive: true}
	if err := gdb.Create(&author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	article := db.Article{AuthorID: author.ID, Title: "文章", Content: "正文", Status: status}
	if err := gdb.Create(&article).Error; err != nil {
		t.Fatalf("create article: %v", err)
	}
	return article
}

func TestCommentService_CreateRequiresPublishedArticle(t *testing.T) {
	gdb := setupCommentTestDB(t)
	svc := NewCommentService(gdb)

	draft := createCommentArticle(t, gdb, db.StatusDraft)
	if _, err := svc.Create(42, draft.ID, nil, "评论"); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound for draft, got %v", err)
	}

	article := createCommentArticle(t, gdb, db.StatusPublish)
	comment, err := svc.Create(42, article.ID, nil, "好文章")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if comment.Content != "好文章" {
		t.Fatalf("unexpected content: %q", comment.Content)
	}
}

func TestCommentService_CreateStripsScriptTags(t *testing.T) {
	gdb := setupCommentTestDB(t)
	svc := NewCommentService(gdb)
	article := createCommentArticle(t, gdb, db.StatusPublish)

	comment, err := svc.Create(42, article.ID, nil, `好文章<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if strings.Contains(comment.Content, "<script>") {
		t.Fatalf("expected script tag to be stripped, got %q", comment.Content)
	}

	// 净化后只剩空白按空评论拒绝
	if _, err := svc.Create(42, article.ID, nil, `<script>alert("x")</script>`); !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment, got %v", err)
	}
}

func TestCommentService_ParentMustBelongToSameArticle(t *testing.T) {
	gdb := setupCommentTestDB(t)
	svc := NewCommentService(gdb)
	article := createCommentArticle(t, gdb, db.StatusPublish)
	other := createCommentArticle(t, gdb, db.StatusPublish)

	parent, err := svc.Create(42, other.ID, nil, "另一篇下的评论")
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	if _, err := svc.Create(42, article.ID, &parent.ID, "楼中楼"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound for cross-article parent, got %v", err)
	}

	own, err := svc.Create(42, other.ID, &parent.ID, "正常回复")
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if own.ParentID == nil || *own.ParentID != parent.ID {
		t.Fatal("expected reply to carry parent id")
	}
}

func TestCommentService_UpdateAndDeleteRequireOwner(t *testing.T) {
	gdb := setupCommentTestDB(t)
	svc := NewCommentService(gdb)
	article := createCommentArticle(t, gdb, db.StatusPublish)

	comment, err := svc.Create(42, article.ID, nil, "原始评论")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if _, err := svc.Update(comment.ID, 7, "篡改"); !errors.Is(err, ErrNotCommentOwner) {
		t.Fatalf("expected ErrNotCommentOwner on update, got %v", err)
	}
	if err := svc.Delete(comment.ID, 7); !errors.Is(err, ErrNotCommentOwner) {
		t.Fatalf("expected ErrNotCommentOwner on delete, got %v", err)
	}

	updated, err := svc.Update(comment.ID, 42, "修订评论")
	if err != nil {
		t.Fatalf("update by owner: %v", err)
	}
	if updated.Content != "修订评论" {
		t.Fatalf("unexpected content: %q", updated.Content)
	}

	if err := svc.Delete(comment.ID, 42); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}
	if _, err := svc.Update(comment.ID, 42, "x"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound after delete, got %v", err)
	}
}
