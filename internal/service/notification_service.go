package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/inkstream/internal/db"
)

// ErrNotificationNotFound 在通知不存在或不属于当前用户时返回
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService 负责站内通知的投递与已读状态。
// 列表只出未读，最新在前；已读/未读切换是显式动作，浏览不改状态。
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService 构造 NotificationService
func NewNotificationService(gdb *gorm.DB) *NotificationService {
	return &NotificationService{db: gdb}
}

// Create 给用户投递一条通知
func (s *NotificationService) Create(userID uint, message string) (*db.Notification, error) {
	notification := db.Notification{UserID: userID, Message: message}
	if err := s.db.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &notification, nil
}

// ListUnread 返回用户的未读通知，按创建时间倒序分页
func (s *NotificationService) ListUnread(userID uint, page, pageSize int) ([]db.Notification, int64, error) {
	query := s.db.Model(&db.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	limit, offset := normalizePaging(page, pageSize)

	var notifications []db.Notification
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, nil
}

// Get 返回用户名下的一条通知
func (s *NotificationService) Get(userID, id uint) (*db.Notification, error) {
	var notification db.Notification
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &notification, nil
}

// MarkRead 将通知置为已读
func (s *NotificationService) MarkRead(userID, id uint) (*db.Notification, error) {
	notification, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	notification.ReadAt = &now
	if err := s.db.Save(notification).Error; err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return notification, nil
}

// MarkUnread 将通知重新置为未读
func (s *NotificationService) MarkUnread(userID, id uint) (*db.Notification, error) {
	notification, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	notification.ReadAt = nil
	if err := s.db.Model(notification).Update("read_at", nil).Error; err != nil {
		return nil, fmt.Errorf("mark unread: %w", err)
	}
	return notification, nil
}
