package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/inkstream/internal/cache"
	"github.com/inkstream/internal/db"
)

var (
	// ErrUserNotFound 在指定用户不存在或已停用时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredential 在用户名/密码/令牌校验失败时返回
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrUsernameTaken 在用户名已被占用时返回
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailTaken 在邮箱已被占用时返回
	ErrEmailTaken = errors.New("email already taken")
	// ErrSamePassword 在新旧密码一致时返回
	ErrSamePassword = errors.New("new password must differ from old password")
)

// TokenPair 是一次签发的访问/刷新令牌对
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthService 负责注册、登录与令牌生命周期。
// 每个用户当前有效的令牌对存放在瞬态缓存中，
// 重新签发会覆盖旧值，旧令牌随即失效（黑名单语义）。
type AuthService struct {
	db         *gorm.DB
	cache      cache.Cache
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// SignupInput 定义注册时可提交的字段
type SignupInput struct {
	Username   string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	MiddleName string
	Avatar     string
}

// NewAuthService 构造 AuthService
func NewAuthService(gdb *gorm.DB, c cache.Cache, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		db:         gdb,
		cache:      c,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Signup 创建新账号并签发首对令牌
func (s *AuthService) Signup(input SignupInput) (*db.User, *TokenPair, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	var count int64
	if err := s.db.Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, nil, ErrUsernameTaken
	}
	if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{
		Username:   username,
		Email:      email,
		Password:   string(hashed),
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		MiddleName: strings.TrimSpace(input.MiddleName),
		Avatar:     input.Avatar,
		IsActive:   true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.IssueTokens(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, tokens, nil
}

// Login 校验用户名密码并签发令牌
func (s *AuthService) Login(username, password string) (*TokenPair, error) {
	var user db.User
	if err := s.db.Where("username = ? AND is_active = ?", strings.TrimSpace(username), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.IssueTokens(&user)
}

// GetUser 按 ID 返回活跃用户
func (s *AuthService) GetUser(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.Where("id = ? AND is_active = ?", id, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// UpdateProfileInput 定义用户资料可更新的字段
type UpdateProfileInput struct {
	FirstName  *string
	LastName   *string
	MiddleName *string
	Email      *string
	Avatar     *string
	BirthYear  *int
}

// 出生年份允许的开区间，超出视为非法输入
const (
	birthYearMin = 1900
	birthYearMax = 2020
)

// ErrInvalidBirthYear 在出生年份超出允许区间时返回
var ErrInvalidBirthYear = errors.New("birth year out of range")

// UpdateProfile 更新用户资料，仅覆盖提交的字段
func (s *AuthService) UpdateProfile(id uint, input UpdateProfileInput) (*db.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if input.BirthYear != nil {
		if *input.BirthYear <= birthYearMin || *input.BirthYear >= birthYearMax {
			return nil, ErrInvalidBirthYear
		}
		user.BirthYear = *input.BirthYear
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.MiddleName != nil {
		user.MiddleName = strings.TrimSpace(*input.MiddleName)
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword 校验旧密码后更换密码并重签令牌，旧令牌全部失效
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) (*TokenPair, error) {
	if oldPassword == newPassword {
		return nil, ErrSamePassword
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return nil, ErrInvalidCredential
	}

	if err := s.SetPassword(user, newPassword); err != nil {
		return nil, err
	}

	return s.IssueTokens(user)
}

// SetPassword 以 bcrypt 哈希落库新密码
func (s *AuthService) SetPassword(user *db.User, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	return nil
}

// IssueTokens 签发新令牌对并覆盖缓存中的有效集合
func (s *AuthService) IssueTokens(user *db.User) (*TokenPair, error) {
	access, err := s.signToken(user.ID, "access", s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(user.ID, "refresh", s.refreshTTL)
	if err != nil {
		return nil, err
	}

	pair := &TokenPair{Access: access, Refresh: refresh}
	if err := s.cache.Set(validTokensKey(user.ID), access+"\n"+refresh, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("store token pair: %w", err)
	}
	return pair, nil
}

// Logout 作废当前用户的全部令牌。
// 通过写入占位值覆盖有效集合实现：缓存中无记录表示不限制，
// 因此登出必须留下一个不可能匹配的值而不是直接删除。
func (s *AuthService) Logout(userID uint) error {
	if err := s.cache.Set(validTokensKey(userID), "revoked", s.refreshTTL); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// ValidateAccess 解析访问令牌并对照缓存中的有效集合
func (s *AuthService) ValidateAccess(tokenString string) (uint, error) {
	userID, err := s.parseToken(tokenString, "access")
	if err != nil {
		return 0, err
	}

	stored, err := s.cache.Get(validTokensKey(userID))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return userID, nil
		}
		return 0, fmt.Errorf("load token pair: %w", err)
	}

	for _, valid := range strings.Split(stored, "\n") {
		if valid == tokenString {
			return userID, nil
		}
	}
	return 0, ErrInvalidCredential
}

// Refresh 用刷新令牌换发新令牌对
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	userID, err := s.parseToken(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}

	stored, err := s.cache.Get(validTokensKey(userID))
	if err == nil {
		found := false
		for _, valid := range strings.Split(stored, "\n") {
			if valid == refreshToken {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrInvalidCredential
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("load token pair: %w", err)
	}

	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	return s.IssueTokens(user)
}

func (s *AuthService) signToken(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": float64(userID),
		"typ": tokenType,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenString, wantType string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidCredential
	}
	if typ, _ := claims["typ"].(string); typ != wantType {
		return 0, ErrInvalidCredential
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, ErrInvalidCredential
	}
	return uint(sub), nil
}

func validTokensKey(userID uint) string {
	return fmt.Sprintf("user:%d:tokens", userID)
}
