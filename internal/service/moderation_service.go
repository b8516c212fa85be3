package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/inkstream/internal/db"
)

// ErrDuplicateReport 在同一用户重复举报同一文章时返回
var ErrDuplicateReport = errors.New("article already reported by this user")

// ReportTrashThreshold 是触发自动下架的举报数
const ReportTrashThreshold = 3

// ModerationService 实现举报与自动下架。
// 计数与状态翻转在同一事务内完成，并发举报不会漏算或重复下架。
type ModerationService struct {
	db     *gorm.DB
	events *EventPublisher
}

// NewModerationService 构造 ModerationService
func NewModerationService(gdb *gorm.DB, events *EventPublisher) *ModerationService {
	return &ModerationService{db: gdb, events: events}
}

// Report 提交举报。draft 与 trash 文章对举报者一律不可见；
// 第 3 个不同用户的举报会把文章置为 trash 并通知作者。
// 返回值 removed 表示这次举报触发了下架。
func (s *ModerationService) Report(userID, articleID uint) (removed bool, err error) {
	var article db.Article
	if err := s.db.Where("id = ? AND status = ?", articleID, db.StatusPublish).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrArticleNotFound
		}
		return false, fmt.Errorf("get article: %w", err)
	}

	var duplicate int64
	if err := s.db.Model(&db.Report{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&duplicate).Error; err != nil {
		return false, fmt.Errorf("check duplicate report: %w", err)
	}
	if duplicate > 0 {
		return false, ErrDuplicateReport
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&db.Report{UserID: userID, ArticleID: articleID}).Error; err != nil {
			return fmt.Errorf("create report: %w", err)
		}

		var total int64
		if err := tx.Model(&db.Report{}).Where("article_id = ?", articleID).Count(&total).Error; err != nil {
			return fmt.Errorf("count reports: %w", err)
		}
		if total < ReportTrashThreshold {
			return nil
		}

		// 只翻转一次，避免并发举报下重复下架
		res := tx.Model(&db.Article{}).
			Where("id = ? AND status = ?", articleID, db.StatusPublish).
			Update("status", db.StatusTrash)
		if res.Error != nil {
			return fmt.Errorf("trash article: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		notification := db.Notification{
			UserID:  article.AuthorID,
			Message: fmt.Sprintf("Your article %q was removed after multiple reports.", article.Title),
		}
		if err := tx.Create(&notification).Error; err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.events.Publish(EngagementEvent{Type: EventArticleTrashed, UserID: userID, ArticleID: articleID})
	}
	return removed, nil
}
