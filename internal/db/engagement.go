package db

import "time"

// MaxEngagementCount 是鼓掌与收藏夹计数的封顶值。
// 计数到顶后继续操作按成功处理，数值不再增长。
const MaxEngagementCount = 50

// 互动配对记录不走软删除：唯一索引要求删除后可以立即重建。

// Clap 记录用户对文章的鼓掌计数
// User + Article 采用唯一索引，保证同一对只有一条记录
type Clap struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index:idx_clap_pair,unique;not null"`
	ArticleID uint `gorm:"index:idx_clap_pair,unique;index;not null"`
	Count     int  `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Favorite 记录用户收藏的文章，存在即收藏
type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index:idx_favorite_pair,unique;not null"`
	ArticleID uint `gorm:"index:idx_favorite_pair,unique;index;not null"`
	CreatedAt time.Time
}

// Pin 是每个用户的置顶/归档容器，一人一条
type Pin struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// PinArticle 记录容器内的文章及其计数
// pin 与 archive 共用这一条记录，计数封顶规则与 Clap 相同
type PinArticle struct {
	ID        uint `gorm:"primaryKey"`
	PinID     uint `gorm:"index;not null"`
	UserID    uint `gorm:"index:idx_pin_article_pair,unique;not null"`
	ArticleID uint `gorm:"index:idx_pin_article_pair,unique;index;not null"`
	Count     int  `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Report 记录用户对文章的举报，一人一篇只允许一次
type Report struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index:idx_report_pair,unique;not null"`
	ArticleID uint `gorm:"index:idx_report_pair,unique;index;not null"`
	CreatedAt time.Time
}
