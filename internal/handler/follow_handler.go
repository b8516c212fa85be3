package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/db"
	"github.com/inkstream/internal/service"
)

func followUserToPayload(user db.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"middle_name": user.MiddleName,
		"avatar":      user.Avatar,
	}
}

// FollowAuthor 关注作者：重复关注按成功返回 200
func (a *API) FollowAuthor(c *gin.Context) {
	authorID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "作者 ID 不合法")
		return
	}

	created, err := a.follows.FollowAuthor(currentUserID(c), authorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			respondError(c, http.StatusBadRequest, "不能关注自己")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "作者不存在")
		default:
			respondError(c, http.StatusInternalServerError, "关注失败")
		}
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"detail": "关注成功"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "已经在关注中"})
}

// UnfollowAuthor 取关作者：没有关注关系时返回 404
func (a *API) UnfollowAuthor(c *gin.Context) {
	authorID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "作者 ID 不合法")
		return
	}

	if err := a.follows.UnfollowAuthor(currentUserID(c), authorID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			respondError(c, http.StatusBadRequest, "不能取关自己")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "作者不存在")
		case errors.Is(err, service.ErrNotFollowing):
			respondError(c, http.StatusNotFound, "尚未关注该作者")
		default:
			respondError(c, http.StatusInternalServerError, "取关失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Followers 返回关注当前用户的人
func (a *API) Followers(c *gin.Context) {
	users, err := a.follows.Followers(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取粉丝列表失败")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		items = append(items, followUserToPayload(user))
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// Following 返回当前用户关注的人
func (a *API) Following(c *gin.Context) {
	users, err := a.follows.Following(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取关注列表失败")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		items = append(items, followUserToPayload(user))
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// FollowTopic 关注主题
func (a *API) FollowTopic(c *gin.Context) {
	topicID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "主题 ID 不合法")
		return
	}

	created, err := a.follows.FollowTopic(currentUserID(c), topicID)
	if err != nil {
		if errors.Is(err, service.ErrTopicNotFound) {
			respondError(c, http.StatusNotFound, "主题不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "关注主题失败")
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"detail": "已关注该主题"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "已经在关注该主题"})
}

// UnfollowTopic 取关主题
func (a *API) UnfollowTopic(c *gin.Context) {
	topicID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "主题 ID 不合法")
		return
	}

	if err := a.follows.UnfollowTopic(currentUserID(c), topicID); err != nil {
		switch {
		case errors.Is(err, service.ErrTopicNotFound):
			respondError(c, http.StatusNotFound, "主题不存在")
		case errors.Is(err, service.ErrNotFollowing):
			respondError(c, http.StatusNotFound, "尚未关注该主题")
		default:
			respondError(c, http.StatusInternalServerError, "取关主题失败")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
