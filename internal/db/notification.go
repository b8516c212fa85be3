package db

import (
	"time"

	"gorm.io/gorm"
)

// Notification 定义了站内通知模型
// ReadAt 为空表示未读；已读/未读由接口显式切换，浏览不自动标记
type Notification struct {
	gorm.Model
	UserID  uint   `gorm:"index;not null"`
	Message string `gorm:"not null"`
	ReadAt  *time.Time `gorm:"index"`
}

// Recommendation 是每个用户的推荐偏好单例
// MoreRecommend/LessRecommend 互斥：一篇文章同一时刻只会出现在其中一个集合
type Recommendation struct {
	gorm.Model
	UserID        uint      `gorm:"uniqueIndex;not null"`
	MoreRecommend []Article `gorm:"many2many:recommendation_more;"`
	LessRecommend []Article `gorm:"many2many:recommendation_less;"`
}

// ReadingHistory 记录用户浏览过的文章
// User + Article 唯一，重复浏览不会产生新记录
type ReadingHistory struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index:idx_reading_history_pair,unique;not null"`
	ArticleID uint `gorm:"index:idx_reading_history_pair,unique;index;not null"`
	CreatedAt time.Time
}
