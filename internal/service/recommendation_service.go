package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/inkstream/internal/db"
)

// ErrInvalidRecommendInput 在 more/less 参数不是恰好给出一个时返回
var ErrInvalidRecommendInput = errors.New("exactly one of more/less article id required")

// RecommendationService 维护每个用户的推荐偏好单例。
// 先从对侧集合移除再加入目标集合，保证同一篇文章不会同时出现在两个集合。
type RecommendationService struct {
	db *gorm.DB
}

// NewRecommendationService 构造 RecommendationService
func NewRecommendationService(gdb *gorm.DB) *RecommendationService {
	return &RecommendationService{db: gdb}
}

// Recommend 记录偏好：moreArticleID 与 lessArticleID 只允许给出一个
func (s *RecommendationService) Recommend(userID, moreArticleID, lessArticleID uint) error {
	if (moreArticleID == 0) == (lessArticleID == 0) {
		return ErrInvalidRecommendInput
	}

	articleID := moreArticleID
	if articleID == 0 {
		articleID = lessArticleID
	}

	var article db.Article
	if err := s.db.First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("get article: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		rec := db.Recommendation{UserID: userID}
		if err := tx.Where("user_id = ?", userID).FirstOrCreate(&rec).Error; err != nil {
			return fmt.Errorf("ensure recommendation: %w", err)
		}

		from, to := "LessRecommend", "MoreRecommend"
		if lessArticleID != 0 {
			from, to = "MoreRecommend", "LessRecommend"
		}

		// 先移除再加入，维持两集合互斥
		if err := tx.Model(&rec).Association(from).Delete(&article); err != nil {
			return fmt.Errorf("remove from %s: %w", from, err)
		}
		if err := tx.Model(&rec).Association(to).Append(&article); err != nil {
			return fmt.Errorf("append to %s: %w", to, err)
		}
		return nil
	})
}

// Get 返回用户的推荐偏好（含两个集合），没有记录时返回空单例
func (s *RecommendationService) Get(userID uint) (*db.Recommendation, error) {
	var rec db.Recommendation
	err := s.db.Preload("MoreRecommend").Preload("LessRecommend").
		Where("user_id = ?", userID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &db.Recommendation{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get recommendation: %w", err)
	}
	return &rec, nil
}
