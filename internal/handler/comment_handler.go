package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/db"
	"github.com/inkstream/internal/service"
)

type commentPayload struct {
	Content  string `json:"content" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

func commentToPayload(comment *db.Comment) gin.H {
	return gin.H{
		"id":         comment.ID,
		"article_id": comment.ArticleID,
		"user_id":    comment.UserID,
		"parent_id":  comment.ParentID,
		"content":    comment.Content,
		"created_at": comment.CreatedAt,
	}
}

// CreateComment 在已发布文章下发表评论
func (a *API) CreateComment(c *gin.Context) {
	articleID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	var payload commentPayload
	if !bindJSON(c, &payload, "评论内容必填") {
		return
	}

	comment, err := a.comments.Create(currentUserID(c), articleID, payload.ParentID, payload.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "文章不存在")
		case errors.Is(err, service.ErrCommentNotFound):
			respondError(c, http.StatusBadRequest, "父评论不存在")
		case errors.Is(err, service.ErrEmptyComment):
			respondError(c, http.StatusBadRequest, "评论内容不能为空")
		default:
			respondError(c, http.StatusInternalServerError, "发表评论失败")
		}
		return
	}

	c.JSON(http.StatusCreated, commentToPayload(comment))
}

// ListComments 返回文章下的评论
func (a *API) ListComments(c *gin.Context) {
	articleID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	comments, err := a.comments.ListByArticle(articleID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取评论失败")
		return
	}

	items := make([]gin.H, 0, len(comments))
	for i := range comments {
		items = append(items, commentToPayload(&comments[i]))
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// UpdateComment 评论作者修改评论
func (a *API) UpdateComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "评论 ID 不合法")
		return
	}

	var payload commentPayload
	if !bindJSON(c, &payload, "评论内容必填") {
		return
	}

	comment, err := a.comments.Update(id, currentUserID(c), payload.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			respondError(c, http.StatusNotFound, "评论不存在")
		case errors.Is(err, service.ErrNotCommentOwner):
			respondError(c, http.StatusForbidden, "只有评论作者可以修改")
		case errors.Is(err, service.ErrEmptyComment):
			respondError(c, http.StatusBadRequest, "评论内容不能为空")
		default:
			respondError(c, http.StatusInternalServerError, "修改评论失败")
		}
		return
	}

	c.JSON(http.StatusOK, commentToPayload(comment))
}

// DeleteComment 评论作者删除评论
func (a *API) DeleteComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "评论 ID 不合法")
		return
	}

	if err := a.comments.Delete(id, currentUserID(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			respondError(c, http.StatusNotFound, "评论不存在")
		case errors.Is(err, service.ErrNotCommentOwner):
			respondError(c, http.StatusForbidden, "只有评论作者可以删除")
		default:
			respondError(c, http.StatusInternalServerError, "删除评论失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
