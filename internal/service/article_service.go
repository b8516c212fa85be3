package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkstream/internal/db"
)

var (
	// ErrArticleNotFound 在文章不存在、处于 trash 或对当前操作不可见时返回
	ErrArticleNotFound = errors.New("article not found")
	// ErrNotArticleOwner 在非作者尝试修改文章时返回
	ErrNotArticleOwner = errors.New("not the article owner")
	// ErrTopicNotFound 在主题不存在或未启用时返回
	ErrTopicNotFound = errors.New("topic not found")
	// ErrInvalidArticleStatus 在提交的状态不是 draft/publish 时返回
	ErrInvalidArticleStatus = errors.New("invalid article status")
)

// ArticleService 负责文章的增删改查与浏览计数
type ArticleService struct {
	db *gorm.DB
}

// ArticleFilter 描述文章列表的过滤条件
type ArticleFilter struct {
	Search      string
	FavoritesOf uint
	Page        int
	PageSize    int
}

// ArticleInput 定义创建/更新文章时可配置字段
type ArticleInput struct {
	Title     string
	Summary   string
	Content   string
	Thumbnail string
	Status    string
	TopicIDs  []uint
}

// NewArticleService 构造 ArticleService
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb}
}

// Create 新建文章，状态只接受 draft 或 publish
func (s *ArticleService) Create(authorID uint, input ArticleInput) (*db.Article, error) {
	status := normalizeArticleStatus(input.Status)
	if status == "" {
		return nil, ErrInvalidArticleStatus
	}

	topics, err := s.loadActiveTopics(input.TopicIDs)
	if err != nil {
		return nil, err
	}

	article := db.Article{
		AuthorID:  authorID,
		Title:     strings.TrimSpace(input.Title),
		Summary:   strings.TrimSpace(input.Summary),
		Content:   input.Content,
		Thumbnail: input.Thumbnail,
		Status:    status,
		Topics:    topics,
	}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return &article, nil
}

// List 返回已发布文章，支持全文搜索与"仅收藏"过滤
func (s *ArticleService) List(filter ArticleFilter) ([]db.Article, int64, error) {
	query := s.db.Model(&db.Article{}).Where("articles.status = ?", db.StatusPublish)

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		// 主题名走 EXISTS 子查询，避免 JOIN 带来的重复行
		query = query.Where(
			"articles.title LIKE ? OR articles.summary LIKE ? OR articles.content LIKE ? OR EXISTS ("+
				"SELECT 1 FROM article_topics JOIN topics ON topics.id = article_topics.topic_id "+
				"WHERE article_topics.article_id = articles.id AND topics.name LIKE ?)",
			like, like, like, like)
	}

	if filter.FavoritesOf != 0 {
		query = query.
			Joins("JOIN favorites ON favorites.article_id = articles.id").
			Where("favorites.user_id = ?", filter.FavoritesOf)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	limit, offset := normalizePaging(filter.Page, filter.PageSize)

	var articles []db.Article
	if err := query.
		Preload("Topics").
		Order("articles.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error; err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}

	return articles, total, nil
}

// GetPublished 返回一篇已发布文章，draft/trash 一律按不存在处理
func (s *ArticleService) GetPublished(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.Preload("Topics").Preload("Author").
		Where("status = ?", db.StatusPublish).
		First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &article, nil
}

// Detail 返回文章详情：浏览计数 +1，并登记一条阅读历史
func (s *ArticleService) Detail(id, viewerID uint) (*db.Article, error) {
	article, err := s.GetPublished(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&db.Article{}).Where("id = ?", id).
		Update("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
		return nil, fmt.Errorf("bump views: %w", err)
	}
	article.ViewsCount++

	if viewerID != 0 {
		history := db.ReadingHistory{UserID: viewerID, ArticleID: id}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&history).Error; err != nil {
			return nil, fmt.Errorf("record reading history: %w", err)
		}
	}

	return article, nil
}

// MarkRead 将文章的完整阅读计数 +1
func (s *ArticleService) MarkRead(id uint) error {
	res := s.db.Model(&db.Article{}).
		Where("id = ? AND status = ?", id, db.StatusPublish).
		Update("reads_count", gorm.Expr("reads_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("bump reads: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// Update 由作者更新文章内容，非作者拒绝
func (s *ArticleService) Update(id, authorID uint, input ArticleInput) (*db.Article, error) {
	article, err := s.GetPublished(id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != authorID {
		return nil, ErrNotArticleOwner
	}

	if input.Title != "" {
		article.Title = strings.TrimSpace(input.Title)
	}
	if input.Summary != "" {
		article.Summary = strings.TrimSpace(input.Summary)
	}
	if input.Content != "" {
		article.Content = input.Content
	}
	if input.Thumbnail != "" {
		article.Thumbnail = input.Thumbnail
	}
	if input.Status != "" {
		status := normalizeArticleStatus(input.Status)
		if status == "" {
			return nil, ErrInvalidArticleStatus
		}
		article.Status = status
	}

	if len(input.TopicIDs) > 0 {
		topics, err := s.loadActiveTopics(input.TopicIDs)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(article).Association("Topics").Replace(topics); err != nil {
			return nil, fmt.Errorf("replace topics: %w", err)
		}
		article.Topics = topics
	}

	if err := s.db.Save(article).Error; err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return article, nil
}

// Trash 由作者删除文章：只改状态为 trash，记录保留
func (s *ArticleService) Trash(id, authorID uint) error {
	article, err := s.GetPublished(id)
	if err != nil {
		return err
	}
	if article.AuthorID != authorID {
		return ErrNotArticleOwner
	}

	if err := s.db.Model(article).Update("status", db.StatusTrash).Error; err != nil {
		return fmt.Errorf("trash article: %w", err)
	}
	return nil
}

// ReadingHistory 返回用户浏览过且仍然可见的文章
func (s *ArticleService) ReadingHistory(userID uint, page, pageSize int) ([]db.Article, error) {
	limit, offset := normalizePaging(page, pageSize)

	var articles []db.Article
	if err := s.db.Model(&db.Article{}).
		Joins("JOIN reading_histories ON reading_histories.article_id = articles.id").
		Where("reading_histories.user_id = ?", userID).
		Where("articles.status = ?", db.StatusPublish).
		Order("reading_histories.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list reading history: %w", err)
	}
	return articles, nil
}

// ActiveTopics 返回所有启用中的主题
func (s *ArticleService) ActiveTopics() ([]db.Topic, error) {
	var topics []db.Topic
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

func (s *ArticleService) loadActiveTopics(ids []uint) ([]db.Topic, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var topics []db.Topic
	if err := s.db.Where("id IN ? AND is_active = ?", ids, true).Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	if len(topics) != len(ids) {
		return nil, ErrTopicNotFound
	}
	return topics, nil
}

func normalizeArticleStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case db.StatusDraft:
		return db.StatusDraft
	case db.StatusPublish:
		return db.StatusPublish
	default:
		return ""
	}
}
