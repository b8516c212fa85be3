package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/service"
)

// ClapArticle 鼓掌一次并返回当前计数，封顶后返回封顶值仍算成功
func (a *API) ClapArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	count, err := a.engagement.Clap(currentUserID(c), id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "鼓掌失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"count": count})
}

// RemoveClaps 撤销当前用户对文章的全部鼓掌
func (a *API) RemoveClaps(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	if err := a.engagement.RemoveClaps(currentUserID(c), id); err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "文章不存在")
		case errors.Is(err, service.ErrClapNotFound):
			respondError(c, http.StatusNotFound, "没有可撤销的鼓掌")
		default:
			respondError(c, http.StatusInternalServerError, "撤销鼓掌失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// FavoriteArticle 收藏文章：新建返回 201，已收藏返回 400 提示
func (a *API) FavoriteArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	created, err := a.engagement.Favorite(currentUserID(c), id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "收藏失败")
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"detail": "文章已加入收藏"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"detail": "文章已经在收藏中"})
}

// UnfavoriteArticle 取消收藏
func (a *API) UnfavoriteArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	if err := a.engagement.Unfavorite(currentUserID(c), id); err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound), errors.Is(err, service.ErrFavoriteNotFound):
			respondError(c, http.StatusNotFound, "文章不存在")
		default:
			respondError(c, http.StatusInternalServerError, "取消收藏失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// PinUserArticle 置顶文章：重复置顶按冲突拒绝
func (a *API) PinUserArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	count, err := a.engagement.Pin(currentUserID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "文章不存在")
		case errors.Is(err, service.ErrAlreadyPinned):
			respondError(c, http.StatusConflict, "文章已经置顶")
		default:
			respondError(c, http.StatusInternalServerError, "置顶失败")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"count": count})
}

// ArchiveUserArticle 归档文章：与置顶共用记录，重复调用幂等自增
func (a *API) ArchiveUserArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	count, err := a.engagement.Archive(currentUserID(c), id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "归档失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"count": count})
}

// UnpinUserArticle 移除置顶/归档记录（两个端点共用）
func (a *API) UnpinUserArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	if err := a.engagement.Unpin(currentUserID(c), id); err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound), errors.Is(err, service.ErrPinNotFound):
			respondError(c, http.StatusNotFound, "没有可移除的记录")
		default:
			respondError(c, http.StatusInternalServerError, "移除失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ReportArticle 举报文章；凑满 3 人举报会触发自动下架
func (a *API) ReportArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	removed, err := a.moderation.Report(currentUserID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "文章不存在")
		case errors.Is(err, service.ErrDuplicateReport):
			respondError(c, http.StatusBadRequest, "你已经举报过这篇文章")
		default:
			respondError(c, http.StatusInternalServerError, "举报失败")
		}
		return
	}

	if removed {
		c.JSON(http.StatusOK, gin.H{"detail": "文章因多次举报已被移除"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"detail": "举报已提交"})
}
