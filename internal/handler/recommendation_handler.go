package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/service"
)

type recommendPayload struct {
	MoreArticleID uint `json:"more_article_id"`
	LessArticleID uint `json:"less_article_id"`
}

// Recommend 记录推荐偏好：more/less 二选一
func (a *API) Recommend(c *gin.Context) {
	var payload recommendPayload
	if !bindJSON(c, &payload, "请求格式不正确") {
		return
	}

	err := a.recommendations.Recommend(currentUserID(c), payload.MoreArticleID, payload.LessArticleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRecommendInput):
			respondError(c, http.StatusBadRequest, "more_article_id 与 less_article_id 只能二选一")
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "文章不存在")
		default:
			respondError(c, http.StatusInternalServerError, "记录偏好失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetRecommendation 返回当前用户的偏好集合
func (a *API) GetRecommendation(c *gin.Context) {
	rec, err := a.recommendations.Get(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取偏好失败")
		return
	}

	more := make([]uint, 0, len(rec.MoreRecommend))
	for _, article := range rec.MoreRecommend {
		more = append(more, article.ID)
	}
	less := make([]uint, 0, len(rec.LessRecommend))
	for _, article := range rec.LessRecommend {
		less = append(less, article.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"more_recommend": more,
		"less_recommend": less,
	})
}
