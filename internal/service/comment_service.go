package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/inkstream/internal/db"
)

var (
	// ErrCommentNotFound 在评论不存在时返回
	ErrCommentNotFound = errors.New("comment not found")
	// ErrNotCommentOwner 在非评论作者尝试修改/删除时返回
	ErrNotCommentOwner = errors.New("not the comment owner")
	// ErrEmptyComment 在评论内容为空时返回
	ErrEmptyComment = errors.New("comment content is empty")
)

// CommentService 负责评论的创建与作者本人维护。
// 非 publish 状态的文章不接受评论，按不存在处理。
type CommentService struct {
	db *gorm.DB
}

// NewCommentService 构造 CommentService
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Create 在已发布文章下新增评论，内容先过 UGC 净化
func (s *CommentService) Create(userID, articleID uint, parentID *uint, content string) (*db.Comment, error) {
	content = strings.TrimSpace(SanitizeUGC(content))
	if content == "" {
		return nil, ErrEmptyComment
	}

	var count int64
	if err := s.db.Model(&db.Article{}).
		Where("id = ? AND status = ?", articleID, db.StatusPublish).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check article: %w", err)
	}
	if count == 0 {
		return nil, ErrArticleNotFound
	}

	if parentID != nil {
		var parent db.Comment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCommentNotFound
			}
			return nil, fmt.Errorf("check parent comment: %w", err)
		}
		if parent.ArticleID != articleID {
			return nil, ErrCommentNotFound
		}
	}

	comment := db.Comment{
		ArticleID: articleID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// ListByArticle 返回文章下的评论，按创建时间正序
func (s *CommentService) ListByArticle(articleID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.Preload("User").
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Update 更新评论内容，仅限评论作者
func (s *CommentService) Update(commentID, userID uint, content string) (*db.Comment, error) {
	comment, err := s.get(commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotCommentOwner
	}

	content = strings.TrimSpace(SanitizeUGC(content))
	if content == "" {
		return nil, ErrEmptyComment
	}

	comment.Content = content
	if err := s.db.Save(comment).Error; err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// Delete 删除评论，仅限评论作者
func (s *CommentService) Delete(commentID, userID uint) error {
	comment, err := s.get(commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotCommentOwner
	}

	if err := s.db.Delete(comment).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) get(id uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}
