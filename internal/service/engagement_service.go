package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkstream/internal/db"
)

var (
	// ErrClapNotFound 在取消鼓掌但记录不存在时返回
	ErrClapNotFound = errors.New("clap not found")
	// ErrFavoriteNotFound 在取消收藏但记录不存在时返回
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrAlreadyPinned 在重复置顶时返回（archive 无此限制）
	ErrAlreadyPinned = errors.New("article already pinned")
	// ErrPinNotFound 在取消置顶/归档但记录不存在时返回
	ErrPinNotFound = errors.New("pin not found")
)

// EngagementService 实现鼓掌、收藏与置顶/归档规则。
// 鼓掌和置顶计数封顶在 MaxEngagementCount，到顶后按成功返回封顶值。
type EngagementService struct {
	db     *gorm.DB
	events *EventPublisher
}

// NewEngagementService 构造 EngagementService
func NewEngagementService(gdb *gorm.DB, events *EventPublisher) *EngagementService {
	return &EngagementService{db: gdb, events: events}
}

// Clap 对已发布文章鼓掌一次，返回当前计数。
// 首次鼓掌计 1，之后每次 +1，到 50 封顶。
// 自增用条件 UPDATE 在事务里完成，并发下不会越过封顶值。
func (s *EngagementService) Clap(userID, articleID uint) (int, error) {
	if err := s.requirePublished(articleID); err != nil {
		return 0, err
	}

	var count int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
			DoNothing: true,
		}).Create(&db.Clap{UserID: userID, ArticleID: articleID, Count: 0}).Error; err != nil {
			return fmt.Errorf("upsert clap: %w", err)
		}

		if err := tx.Model(&db.Clap{}).
			Where("user_id = ? AND article_id = ? AND count < ?", userID, articleID, db.MaxEngagementCount).
			Update("count", gorm.Expr("count + 1")).Error; err != nil {
			return fmt.Errorf("increment clap: %w", err)
		}

		var clap db.Clap
		if err := tx.Where("user_id = ? AND article_id = ?", userID, articleID).First(&clap).Error; err != nil {
			return fmt.Errorf("reload clap: %w", err)
		}
		count = clap.Count
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.events.Publish(EngagementEvent{Type: EventClap, UserID: userID, ArticleID: articleID, Count: count})
	return count, nil
}

// RemoveClaps 撤掉用户对文章的全部鼓掌
func (s *EngagementService) RemoveClaps(userID, articleID uint) error {
	if err := s.requirePublished(articleID); err != nil {
		return err
	}

	res := s.db.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&db.Clap{})
	if res.Error != nil {
		return fmt.Errorf("delete claps: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrClapNotFound
	}
	return nil
}

// Favorite 收藏文章，返回是否为新建（false 表示已收藏过）
func (s *EngagementService) Favorite(userID, articleID uint) (bool, error) {
	if err := s.requireExists(articleID); err != nil {
		return false, err
	}

	var existing db.Favorite
	err := s.db.Where("user_id = ? AND article_id = ?", userID, articleID).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check favorite: %w", err)
	}

	if err := s.db.Create(&db.Favorite{UserID: userID, ArticleID: articleID}).Error; err != nil {
		return false, fmt.Errorf("create favorite: %w", err)
	}
	return true, nil
}

// Unfavorite 取消收藏，记录不存在按未找到处理
func (s *EngagementService) Unfavorite(userID, articleID uint) error {
	if err := s.requireExists(articleID); err != nil {
		return err
	}

	res := s.db.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&db.Favorite{})
	if res.Error != nil {
		return fmt.Errorf("delete favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// Pin 置顶文章：已置顶的重复请求按冲突拒绝，其余与 Archive 相同
func (s *EngagementService) Pin(userID, articleID uint) (int, error) {
	if err := s.requirePublished(articleID); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.Model(&db.PinArticle{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("check pin: %w", err)
	}
	if count > 0 {
		return 0, ErrAlreadyPinned
	}

	return s.incrementPin(userID, articleID)
}

// Archive 归档文章：与 Pin 共用同一条记录和封顶算法，但不做存在性预检，
// 重复调用视为幂等的计数自增
func (s *EngagementService) Archive(userID, articleID uint) (int, error) {
	if err := s.requirePublished(articleID); err != nil {
		return 0, err
	}
	return s.incrementPin(userID, articleID)
}

// Unpin 移除置顶/归档记录（两个动作共用一条记录）
func (s *EngagementService) Unpin(userID, articleID uint) error {
	if err := s.requirePublished(articleID); err != nil {
		return err
	}

	res := s.db.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&db.PinArticle{})
	if res.Error != nil {
		return fmt.Errorf("delete pin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPinNotFound
	}
	return nil
}

func (s *EngagementService) incrementPin(userID, articleID uint) (int, error) {
	var count int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		pin := db.Pin{UserID: userID}
		if err := tx.Where("user_id = ?", userID).FirstOrCreate(&pin).Error; err != nil {
			return fmt.Errorf("ensure pin container: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
			DoNothing: true,
		}).Create(&db.PinArticle{PinID: pin.ID, UserID: userID, ArticleID: articleID, Count: 0}).Error; err != nil {
			return fmt.Errorf("upsert pin article: %w", err)
		}

		if err := tx.Model(&db.PinArticle{}).
			Where("user_id = ? AND article_id = ? AND count < ?", userID, articleID, db.MaxEngagementCount).
			Update("count", gorm.Expr("count + 1")).Error; err != nil {
			return fmt.Errorf("increment pin article: %w", err)
		}

		var record db.PinArticle
		if err := tx.Where("user_id = ? AND article_id = ?", userID, articleID).First(&record).Error; err != nil {
			return fmt.Errorf("reload pin article: %w", err)
		}
		count = record.Count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// requirePublished 校验文章存在且处于 publish 状态，否则按不存在处理
func (s *EngagementService) requirePublished(articleID uint) error {
	var count int64
	if err := s.db.Model(&db.Article{}).
		Where("id = ? AND status = ?", articleID, db.StatusPublish).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check article: %w", err)
	}
	if count == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// requireExists 只要求文章存在（收藏沿用原有的宽松校验）
func (s *EngagementService) requireExists(articleID uint) error {
	var count int64
	if err := s.db.Model(&db.Article{}).
		Where("id = ?", articleID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check article: %w", err)
	}
	if count == 0 {
		return ErrArticleNotFound
	}
	return nil
}
