package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inkstream/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, uploadURL, uploadDir string) *gin.Engine {
	r := gin.Default()

	if uploadURL != "" && uploadDir != "" {
		r.Static(uploadURL, uploadDir)
	}

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/signup", api.Signup)
			users.POST("/login", api.Login)
			users.POST("/token/refresh", api.Refresh)

			// 找回密码三步流程，无需登录
			users.POST("/password/forgot", api.ForgotPassword)
			users.POST("/password/forgot/verify/:otp_secret", api.ForgotPasswordVerify)
			users.PATCH("/password/reset", api.ResetPassword)
		}

		// 需要认证的路由
		auth := v1.Group("")
		auth.Use(api.AuthRequired())
		{
			me := auth.Group("/users")
			{
				me.GET("/me", api.Me)
				me.PATCH("/me", api.UpdateMe)
				me.POST("/logout", api.Logout)
				me.PUT("/password/change", api.ChangePassword)
				me.POST("/recommend", api.Recommend)
				me.GET("/recommend", api.GetRecommendation)
				me.GET("/followers", api.Followers)
				me.GET("/following", api.Following)
				me.GET("/history", api.ReadingHistory)
			}

			// 作者维度的关注单独挂在 /authors 下，避免和 /users 的静态路由冲突
			auth.POST("/authors/:id/follow", api.FollowAuthor)
			auth.DELETE("/authors/:id/follow", api.UnfollowAuthor)

			articles := auth.Group("/articles")
			{
				articles.GET("", api.ListArticles)
				articles.POST("", api.CreateArticle)
				articles.GET("/:id", api.GetArticle)
				articles.PATCH("/:id", api.UpdateArticle)
				articles.DELETE("/:id", api.DeleteArticle)
				articles.POST("/:id/read", api.ReadArticle)

				articles.POST("/:id/clap", api.ClapArticle)
				articles.DELETE("/:id/clap", api.RemoveClaps)
				articles.POST("/:id/favorite", api.FavoriteArticle)
				articles.DELETE("/:id/favorite", api.UnfavoriteArticle)
				articles.POST("/:id/pin", api.PinUserArticle)
				articles.DELETE("/:id/pin", api.UnpinUserArticle)
				articles.POST("/:id/archive", api.ArchiveUserArticle)
				articles.DELETE("/:id/archive", api.UnpinUserArticle)
				articles.POST("/:id/report", api.ReportArticle)

				articles.POST("/:id/comments", api.CreateComment)
				articles.GET("/:id/comments", api.ListComments)
			}

			auth.PATCH("/comments/:id", api.UpdateComment)
			auth.DELETE("/comments/:id", api.DeleteComment)

			topics := auth.Group("/topics")
			{
				topics.GET("", api.ListTopics)
				topics.POST("/:id/follow", api.FollowTopic)
				topics.DELETE("/:id/follow", api.UnfollowTopic)
			}

			notifications := auth.Group("/notifications")
			{
				notifications.GET("", api.ListNotifications)
				notifications.GET("/:id", api.GetNotification)
				notifications.POST("/:id/read", api.MarkNotificationRead)
				notifications.POST("/:id/unread", api.MarkNotificationUnread)
			}

			auth.POST("/upload/image", api.UploadImage)
		}
	}

	return r
}
