package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/db"
	"github.com/inkstream/internal/service"
)

type articlePayload struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Thumbnail string `json:"thumbnail"`
	Status    string `json:"status"`
	TopicIDs  []uint `json:"topic_ids"`
}

func topicToPayload(topic db.Topic) gin.H {
	return gin.H{
		"id":          topic.ID,
		"name":        topic.Name,
		"description": topic.Description,
		"is_active":   topic.IsActive,
	}
}

func articleToPayload(article *db.Article) gin.H {
	topics := make([]gin.H, 0, len(article.Topics))
	for _, topic := range article.Topics {
		topics = append(topics, topicToPayload(topic))
	}

	return gin.H{
		"id":          article.ID,
		"author_id":   article.AuthorID,
		"title":       article.Title,
		"summary":     article.Summary,
		"content":     article.Content,
		"status":      article.Status,
		"thumbnail":   article.Thumbnail,
		"views_count": article.ViewsCount,
		"reads_count": article.ReadsCount,
		"topics":      topics,
		"created_at":  article.CreatedAt,
		"updated_at":  article.UpdatedAt,
	}
}

// ListArticles 返回已发布文章列表，支持搜索与"仅收藏"过滤
func (a *API) ListArticles(c *gin.Context) {
	page, pageSize := parsePaging(c)
	filter := service.ArticleFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}
	if favorites, _ := strconv.ParseBool(c.DefaultQuery("is_user_favorites", "false")); favorites {
		filter.FavoritesOf = currentUserID(c)
	}

	articles, total, err := a.articles.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}

	items := make([]gin.H, 0, len(articles))
	for i := range articles {
		items = append(items, articleToPayload(&articles[i]))
	}

	c.JSON(http.StatusOK, gin.H{"count": total, "results": items})
}

// CreateArticle 新建文章（draft 或 publish）
func (a *API) CreateArticle(c *gin.Context) {
	var payload articlePayload
	if !bindJSON(c, &payload, "文章内容格式不正确") {
		return
	}
	if payload.Title == "" || payload.Content == "" {
		respondError(c, http.StatusBadRequest, "标题和正文必填")
		return
	}

	article, err := a.articles.Create(currentUserID(c), service.ArticleInput{
		Title:     payload.Title,
		Summary:   payload.Summary,
		Content:   payload.Content,
		Thumbnail: payload.Thumbnail,
		Status:    payload.Status,
		TopicIDs:  payload.TopicIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidArticleStatus):
			respondError(c, http.StatusBadRequest, "状态只能是 draft 或 publish")
		case errors.Is(err, service.ErrTopicNotFound):
			respondError(c, http.StatusBadRequest, "包含不存在的主题")
		default:
			respondError(c, http.StatusInternalServerError, "创建文章失败")
		}
		return
	}

	c.JSON(http.StatusCreated, articleToPayload(article))
}

// GetArticle 返回文章详情，正文渲染为净化后的 HTML，浏览计数 +1
func (a *API) GetArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	article, err := a.articles.Detail(id, currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取文章失败")
		return
	}

	payload := articleToPayload(article)
	if html, err := service.RenderMarkdown(article.Content); err == nil {
		payload["content_html"] = html
	}

	c.JSON(http.StatusOK, payload)
}

// ReadArticle 完整阅读计数 +1
func (a *API) ReadArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	if err := a.articles.MarkRead(id); err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "更新阅读计数失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "阅读计数已更新"})
}

// UpdateArticle 作者更新文章
func (a *API) UpdateArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	var payload articlePayload
	if !bindJSON(c, &payload, "文章内容格式不正确") {
		return
	}

	article, err := a.articles.Update(id, currentUserID(c), service.ArticleInput{
		Title:     payload.Title,
		Summary:   payload.Summary,
		Content:   payload.Content,
		Thumbnail: payload.Thumbnail,
		Status:    payload.Status,
		TopicIDs:  payload.TopicIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "文章不存在")
		case errors.Is(err, service.ErrNotArticleOwner):
			respondError(c, http.StatusForbidden, "只有作者可以修改文章")
		case errors.Is(err, service.ErrInvalidArticleStatus):
			respondError(c, http.StatusBadRequest, "状态只能是 draft 或 publish")
		case errors.Is(err, service.ErrTopicNotFound):
			respondError(c, http.StatusBadRequest, "包含不存在的主题")
		default:
			respondError(c, http.StatusInternalServerError, "更新文章失败")
		}
		return
	}

	c.JSON(http.StatusOK, articleToPayload(article))
}

// DeleteArticle 作者删除文章：软下架为 trash
func (a *API) DeleteArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "文章 ID 不合法")
		return
	}

	if err := a.articles.Trash(id, currentUserID(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "文章不存在")
		case errors.Is(err, service.ErrNotArticleOwner):
			respondError(c, http.StatusForbidden, "只有作者可以删除文章")
		default:
			respondError(c, http.StatusInternalServerError, "删除文章失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ReadingHistory 返回当前用户的阅读历史
func (a *API) ReadingHistory(c *gin.Context) {
	page, pageSize := parsePaging(c)
	articles, err := a.articles.ReadingHistory(currentUserID(c), page, pageSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取阅读历史失败")
		return
	}

	items := make([]gin.H, 0, len(articles))
	for i := range articles {
		items = append(items, articleToPayload(&articles[i]))
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// ListTopics 返回启用中的主题
func (a *API) ListTopics(c *gin.Context) {
	topics, err := a.articles.ActiveTopics()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取主题列表失败")
		return
	}

	items := make([]gin.H, 0, len(topics))
	for _, topic := range topics {
		items = append(items, topicToPayload(topic))
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}
