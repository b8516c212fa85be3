package main

import (
	"log"
	"time"

	"github.com/inkstream/internal/cache"
	"github.com/inkstream/internal/config"
	"github.com/inkstream/internal/db"
	"github.com/inkstream/internal/handler"
	"github.com/inkstream/internal/router"
	"github.com/inkstream/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := db.Init(cfg.Database.Path); err != nil {
		log.Fatalf("init database: %v", err)
	}

	// Redis 未配置或不可用时退化到进程内缓存，方便本地开发
	var store cache.Cache = cache.NewMemoryCache()
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("redis unavailable, falling back to in-memory cache: %v", err)
		} else {
			store = redisCache
		}
	}

	var mailer service.Mailer
	if cfg.SMTP.Host != "" {
		mailer = service.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Println("smtp not configured, OTP codes will be logged")
		mailer = service.LogMailer{}
	}

	events, eventsConn, err := service.SetupEventPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
	if err != nil {
		log.Printf("event publisher disabled: %v", err)
	}
	if eventsConn != nil {
		defer eventsConn.Close()
	}

	api := handler.NewAPI(db.DB, handler.Options{
		Cache:      store,
		Mailer:     mailer,
		Events:     events,
		JWTSecret:  cfg.JWT.Secret,
		AccessTTL:  time.Duration(cfg.JWT.AccessTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshTTLHours) * time.Hour,
		UploadDir:  cfg.Upload.Dir,
		UploadURL:  cfg.Upload.URLPath,
	})

	r := router.SetupRouter(api, cfg.Upload.URLPath, cfg.Upload.Dir)

	addr := ":" + cfg.App.Port
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
