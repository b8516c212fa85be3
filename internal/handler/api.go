package handler

import (
	"time"

	"gorm.io/gorm"

	"github.com/inkstream/internal/cache"
	"github.com/inkstream/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db              *gorm.DB
	auth            *service.AuthService
	passwordReset   *service.PasswordResetService
	articles        *service.ArticleService
	comments        *service.CommentService
	engagement      *service.EngagementService
	moderation      *service.ModerationService
	follows         *service.FollowService
	recommendations *service.RecommendationService
	notifications   *service.NotificationService
	uploadDir       string
	uploadURL       string
}

// Options 汇总构造 API 需要的外部协作方与配置
type Options struct {
	Cache      cache.Cache
	Mailer     service.Mailer
	Events     *service.EventPublisher
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	UploadDir  string
	UploadURL  string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	authService := service.NewAuthService(gdb, opts.Cache, opts.JWTSecret, opts.AccessTTL, opts.RefreshTTL)

	return &API{
		db:              gdb,
		auth:            authService,
		passwordReset:   service.NewPasswordResetService(gdb, opts.Cache, opts.Mailer, authService),
		articles:        service.NewArticleService(gdb),
		comments:        service.NewCommentService(gdb),
		engagement:      service.NewEngagementService(gdb, opts.Events),
		moderation:      service.NewModerationService(gdb, opts.Events),
		follows:         service.NewFollowService(gdb),
		recommendations: service.NewRecommendationService(gdb),
		notifications:   service.NewNotificationService(gdb),
		uploadDir:       opts.UploadDir,
		uploadURL:       opts.UploadURL,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
