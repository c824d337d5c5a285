package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	rediscache "github.com/khattakbelt/community-api/internal/adapters/cache/redis"
	pgrepo "github.com/khattakbelt/community-api/internal/adapters/db/postgres"
	httptransport "github.com/khattakbelt/community-api/internal/adapters/transport/http"
	httpmw "github.com/khattakbelt/community-api/internal/adapters/transport/http/middleware"
	authsvc "github.com/khattakbelt/community-api/internal/app/auth"
	newssvc "github.com/khattakbelt/community-api/internal/app/news"
	"github.com/khattakbelt/community-api/internal/domain/repo"
	"github.com/khattakbelt/community-api/internal/infra/config"
	lg "github.com/khattakbelt/community-api/internal/infra/log"
	"github.com/khattakbelt/community-api/internal/infra/migrate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := lg.Must(os.Getenv("LOG_LEVEL"), cfg.IsProduction())
	defer zapLog.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	var newsCache repo.NewsCache
	if cfg.RedisAddress != "" {
		redisCli := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		newsCache = rediscache.NewNewsPageCache(redisCli, 30*time.Second)
	}

	validate := validator.New()
	_ = validate.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		pwd := fl.Field().String()
		if len(pwd) < 6 {
			return false
		}
		var hasUpper, hasLower, hasDigit bool
		for _, r := range pwd {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasUpper && hasLower && hasDigit
	})

	userRepo := pgrepo.NewUserRepo(db)
	newsRepo := pgrepo.NewNewsRepo(db)

	issuer, err := authsvc.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		zapLog.Fatal("failed to init token issuer", zap.Error(err))
	}

	auth := authsvc.New(userRepo, issuer, validate, newsCache, zapLog)
	news := newssvc.New(newsRepo, newsCache, validate, zapLog)
	handler := httptransport.NewHandler(auth, news, zapLog, cfg.CookieDomain, cfg.IsProduction(), !cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))
	router.Use(httpmw.RateLimitPerIP(50, 100, 10_000, time.Hour))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(router)

	zapLog.Info("starting server",
		zap.String("address", cfg.HTTPAddress),
		zap.String("environment", cfg.Environment),
		zap.String("secret", fmt.Sprintf("%x", sha256.Sum256([]byte(cfg.JWTSecret)))[:8]),
	)

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
