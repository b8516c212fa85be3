package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/inkstream/internal/cache"
	"github.com/inkstream/internal/db"
)

var (
	// ErrInvalidOTP 覆盖验证码错误、过期与密钥不匹配，统一对外，不泄露失败环节
	ErrInvalidOTP = errors.New("invalid or expired verification code")
	// ErrInvalidResetToken 覆盖重置令牌缺失、过期与已消费
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrMailDispatch 在验证码邮件发送失败时返回，此时验证码已回滚删除
	ErrMailDispatch = errors.New("failed to dispatch verification email")
)

const (
	otpTTL        = 2 * time.Minute
	resetTokenTTL = 2 * time.Hour
	otpCodeLength = 6
)

// PasswordResetService 实现找回密码的三步状态机：
// 发码（OTPIssued）→ 验证（Verified）→ 重置（Consumed）。
// 验证码与重置令牌都存在瞬态缓存里，靠 TTL 过期回收；
// 两者都是一次性的，校验通过即删除。
type PasswordResetService struct {
	db     *gorm.DB
	cache  cache.Cache
	mailer Mailer
	auth   *AuthService
}

// NewPasswordResetService 构造 PasswordResetService
func NewPasswordResetService(gdb *gorm.DB, c cache.Cache, mailer Mailer, auth *AuthService) *PasswordResetService {
	return &PasswordResetService{db: gdb, cache: c, mailer: mailer, auth: auth}
}

// RequestReset 为活跃账号生成验证码并发送邮件，返回验证时需要回传的密钥。
// 邮件发送失败时删除已写入的验证码再报错，不留半截状态。
func (s *PasswordResetService) RequestReset(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := s.requireActiveUser(email); err != nil {
		return "", err
	}

	code, err := randomDigits(otpCodeLength)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	secret := uuid.NewString()

	if err := s.cache.Set(otpKey(email), code+"\n"+secret, otpTTL); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	if err := s.mailer.Send(email, code); err != nil {
		// 发送失败必须把验证码一并撤掉
		_ = s.cache.Delete(otpKey(email))
		return "", ErrMailDispatch
	}

	return secret, nil
}

// VerifyOTP 核对验证码与密钥，通过后删除验证码并铸造一次性重置令牌
func (s *PasswordResetService) VerifyOTP(email, code, secret string) (string, error) {
	email = strings.TrimSpace(email)
	if err := s.requireActiveUser(email); err != nil {
		return "", err
	}

	stored, err := s.cache.Get(otpKey(email))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return "", ErrInvalidOTP
		}
		return "", fmt.Errorf("load otp: %w", err)
	}

	parts := strings.SplitN(stored, "\n", 2)
	if len(parts) != 2 || parts[0] != code || parts[1] != secret {
		return "", ErrInvalidOTP
	}

	// 验证码一次有效
	if err := s.cache.Delete(otpKey(email)); err != nil {
		return "", fmt.Errorf("consume otp: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("mint reset token: %w", err)
	}
	token := string(hashed)

	if err := s.cache.Set(token, email, resetTokenTTL); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// ResetPassword 消费重置令牌：改密、作废旧会话、签发新令牌对。
// 令牌查不到（含过期）一律按无效处理。
func (s *PasswordResetService) ResetPassword(token, newPassword string) (*TokenPair, error) {
	email, err := s.cache.Get(token)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("load reset token: %w", err)
	}

	var user db.User
	if err := s.db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.auth.SetPassword(&user, newPassword); err != nil {
		return nil, err
	}

	// IssueTokens 覆盖有效集合，此前签发的会话随之失效
	pair, err := s.auth.IssueTokens(&user)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(token); err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return pair, nil
}

func (s *PasswordResetService) requireActiveUser(email string) error {
	var count int64
	if err := s.db.Model(&db.User{}).Where("email = ? AND is_active = ?", email, true).Count(&count).Error; err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

func otpKey(email string) string {
	return email + ":otp"
}

func randomDigits(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteString(d.String())
	}
	return sb.String(), nil
}
