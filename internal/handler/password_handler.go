package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/service"
)

type forgotPasswordPayload struct {
	Email string `json:"email" binding:"required,email"`
}

type forgotPasswordVerifyPayload struct {
	Email   string `json:"email" binding:"required,email"`
	OTPCode string `json:"otp_code" binding:"required,max=6"`
}

type resetPasswordPayload struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ForgotPassword 第一步：给邮箱发验证码，返回验证时要带回的密钥
func (a *API) ForgotPassword(c *gin.Context) {
	var payload forgotPasswordPayload
	if !bindJSON(c, &payload, "邮箱格式不正确") {
		return
	}

	secret, err := a.passwordReset.RequestReset(payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "没有找到对应的活跃账号")
		case errors.Is(err, service.ErrMailDispatch):
			respondError(c, http.StatusBadRequest, "验证码邮件发送失败")
		default:
			respondError(c, http.StatusInternalServerError, "发送验证码失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":      payload.Email,
		"otp_secret": secret,
	})
}

// ForgotPasswordVerify 第二步：核对验证码，换取一次性重置令牌
func (a *API) ForgotPasswordVerify(c *gin.Context) {
	otpSecret := c.Param("otp_secret")

	var payload forgotPasswordVerifyPayload
	if !bindJSON(c, &payload, "邮箱和验证码必填") {
		return
	}

	token, err := a.passwordReset.VerifyOTP(payload.Email, payload.OTPCode, otpSecret)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "没有找到对应的活跃账号")
		case errors.Is(err, service.ErrInvalidOTP):
			respondError(c, http.StatusBadRequest, "验证码无效或已过期")
		default:
			respondError(c, http.StatusInternalServerError, "验证失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ResetPassword 第三步：消费重置令牌，设置新密码并返回新令牌对
func (a *API) ResetPassword(c *gin.Context) {
	var payload resetPasswordPayload
	if !bindJSON(c, &payload, "令牌和新密码必填") {
		return
	}

	tokens, err := a.passwordReset.ResetPassword(payload.Token, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken):
			respondError(c, http.StatusBadRequest, "重置令牌无效或已过期")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "没有找到对应的活跃账号")
		default:
			respondError(c, http.StatusInternalServerError, "重置密码失败")
		}
		return
	}

	c.JSON(http.StatusOK, tokens)
}
