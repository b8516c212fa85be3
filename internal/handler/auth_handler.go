package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/db"
	"github.com/inkstream/internal/service"
)

type signupPayload struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	MiddleName string `json:"middle_name"`
	Avatar     string `json:"avatar"`
}

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshPayload struct {
	Refresh string `json:"refresh" binding:"required"`
}

type updateProfilePayload struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	MiddleName *string `json:"middle_name"`
	Email      *string `json:"email"`
	Avatar     *string `json:"avatar"`
	BirthYear  *int    `json:"birth_year"`
}

type changePasswordPayload struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func userToPayload(user *db.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"middle_name": user.MiddleName,
		"avatar":      user.Avatar,
		"birth_year":  user.BirthYear,
	}
}

// Signup 注册新用户并返回首对令牌
func (a *API) Signup(c *gin.Context) {
	var payload signupPayload
	if !bindJSON(c, &payload, "注册信息不完整") {
		return
	}

	user, tokens, err := a.auth.Signup(service.SignupInput{
		Username:   payload.Username,
		Email:      payload.Email,
		Password:   payload.Password,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		MiddleName: payload.MiddleName,
		Avatar:     payload.Avatar,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			respondError(c, http.StatusBadRequest, "用户名已被占用")
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusBadRequest, "邮箱已被占用")
		default:
			respondError(c, http.StatusInternalServerError, "注册失败")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    userToPayload(user),
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}

// Login 用户名密码登录
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "用户名和密码必填") {
		return
	}

	tokens, err := a.auth.Login(payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Refresh 用刷新令牌换发新令牌对
func (a *API) Refresh(c *gin.Context) {
	var payload refreshPayload
	if !bindJSON(c, &payload, "刷新令牌必填") {
		return
	}

	tokens, err := a.auth.Refresh(payload.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) || errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusUnauthorized, "刷新令牌无效")
			return
		}
		respondError(c, http.StatusInternalServerError, "刷新失败")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Logout 作废当前用户的全部令牌
func (a *API) Logout(c *gin.Context) {
	if err := a.auth.Logout(currentUserID(c)); err != nil {
		respondError(c, http.StatusInternalServerError, "登出失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "已登出"})
}

// Me 返回当前用户资料
func (a *API) Me(c *gin.Context) {
	user, err := a.auth.GetUser(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusNotFound, "用户不存在")
		return
	}
	c.JSON(http.StatusOK, userToPayload(user))
}

// UpdateMe 更新当前用户资料
func (a *API) UpdateMe(c *gin.Context) {
	var payload updateProfilePayload
	if !bindJSON(c, &payload, "资料格式不正确") {
		return
	}

	user, err := a.auth.UpdateProfile(currentUserID(c), service.UpdateProfileInput{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		MiddleName: payload.MiddleName,
		Email:      payload.Email,
		Avatar:     payload.Avatar,
		BirthYear:  payload.BirthYear,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "用户不存在")
		case errors.Is(err, service.ErrInvalidBirthYear):
			respondError(c, http.StatusBadRequest, "出生年份超出范围")
		default:
			respondError(c, http.StatusInternalServerError, "更新资料失败")
		}
		return
	}

	c.JSON(http.StatusOK, userToPayload(user))
}

// ChangePassword 校验旧密码后改密并重签令牌
func (a *API) ChangePassword(c *gin.Context) {
	var payload changePasswordPayload
	if !bindJSON(c, &payload, "新旧密码必填") {
		return
	}

	tokens, err := a.auth.ChangePassword(currentUserID(c), payload.OldPassword, payload.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSamePassword):
			respondError(c, http.StatusBadRequest, "新密码不能与旧密码相同")
		case errors.Is(err, service.ErrInvalidCredential):
			respondError(c, http.StatusBadRequest, "旧密码错误")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "用户不存在")
		default:
			respondError(c, http.StatusInternalServerError, "修改密码失败")
		}
		return
	}

	c.JSON(http.StatusOK, tokens)
}
