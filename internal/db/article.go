package db

import "gorm.io/gorm"

// Article 状态只允许以下三个取值。
// trash 为终态：读写接口一律当作不存在处理，记录仍保留在库中。
const (
	StatusDraft   = "draft"
	StatusPublish = "publish"
	StatusTrash   = "trash"
)

// Article 定义了文章模型
// ViewsCount/ReadsCount 分别统计详情浏览与完整阅读
type Article struct {
	gorm.Model
	AuthorID   uint   `gorm:"index;not null"`
	Author     User   `gorm:"constraint:OnDelete:CASCADE"`
	Title      string `gorm:"size:255;not null"`
	Summary    string
	Content    string
	Status     string `gorm:"size:20;index;not null"`
	Thumbnail  string
	ViewsCount uint    `gorm:"default:0"`
	ReadsCount uint    `gorm:"default:0"`
	Topics     []Topic `gorm:"many2many:article_topics;"`
}

// Topic 定义了主题模型
type Topic struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;size:100;not null"`
	Description string
	IsActive    bool `gorm:"default:true"`
}

// Comment 定义了评论模型
// ParentID 支持楼中楼回复，指向同文章下的另一条评论
type Comment struct {
	gorm.Model
	ArticleID uint    `gorm:"index;not null"`
	Article   Article `gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint    `gorm:"index;not null"`
	User      User    `gorm:"constraint:OnDelete:CASCADE"`
	ParentID  *uint   `gorm:"index"`
	Content   string  `gorm:"not null"`
}
