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

func setupNotificationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:notification-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Notification{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func TestNotificationService_ListUnreadExcludesRead(t *testing.T) {
	gdb := setupNotificationTestDB(t)
	svc := NewNotificationService(gdb)

	first, err := svc.Create(42, "第一条")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(42, "第二条"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(7, "别人的"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.MarkRead(42, first.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	notifications, total, err := svc.ListUnread(42, 1, 10)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if total != 1 || len(notifications) != 1 {
		t.Fatalf("expected one unread notification, got total=%d len=%d", total, len(notifications))
	}
	if notifications[0].Message != "第二条" {
		t.Fatalf("unexpected notification: %q", notifications[0].Message)
	}
}

func TestNotificationService_GetScopedToOwner(t *testing.T) {
	gdb := setupNotificationTestDB(t)
	svc := NewNotificationService(gdb)

	notification, err := svc.Create(42, "私人通知")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(7, notification.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for other user, got %v", err)
	}
	if _, err := svc.Get(42, notification.ID); err != nil {
		t.Fatalf("get by owner: %v", err)
	}
}

func TestNotificationService_ReadUnreadToggle(t *testing.T) {
	gdb := setupNotificationTestDB(t)
	svc := NewNotificationService(gdb)

	notification, err := svc.Create(42, "通知")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if notification.ReadAt != nil {
		t.Fatal("expected new notification to be unread")
	}

	read, err := svc.MarkRead(42, notification.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if read.ReadAt == nil {
		t.Fatal("expected read_at to be set")
	}

	unread, err := svc.MarkUnread(42, notification.ID)
	if err != nil {
		t.Fatalf("mark unread: %v", err)
	}
	if unread.ReadAt != nil {
		t.Fatal("expected read_at to be cleared")
	}

	_, total, err := svc.ListUnread(42, 1, 10)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected notification back in unread list, got total=%d", total)
	}
}
