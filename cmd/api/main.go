package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sgsgita/moderation-backend/internal/analytics"
	"github.com/sgsgita/moderation-backend/internal/config"
	"github.com/sgsgita/moderation-backend/internal/handler"
	"github.com/sgsgita/moderation-backend/internal/middleware"
	"github.com/sgsgita/moderation-backend/internal/migration"
	"github.com/sgsgita/moderation-backend/internal/notify"
	"github.com/sgsgita/moderation-backend/internal/repository"
	"github.com/sgsgita/moderation-backend/internal/routes"
	"github.com/sgsgita/moderation-backend/internal/service"
	"github.com/sgsgita/moderation-backend/internal/ws"
	pkgcache "github.com/sgsgita/moderation-backend/pkg/cache"
	pkges "github.com/sgsgita/moderation-backend/pkg/elasticsearch"
	"github.com/sgsgita/moderation-backend/pkg/i18n"
	"github.com/sgsgita/moderation-backend/pkg/jwt"
	pkglogger "github.com/sgsgita/moderation-backend/pkg/logger"
	pkgredis "github.com/sgsgita/moderation-backend/pkg/redis"
	pkgstorage "github.com/sgsgita/moderation-backend/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Moderation Queue API
// @version         1.0
// @description     Review queue backend for user-submitted postings: intake, moderator decisions, audit history and live updates.
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	pkglogger.Init()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	// MySQL holds the queue itself; nothing works without it.
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if cfg.IsDevelopment() {
		if err := migration.Seed(db); err != nil {
			pkglogger.Info("Seed warning: %v", err)
		}
	}

	if sqlDB, dbErr := db.DB(); dbErr == nil {
		go func() {
			for range time.Tick(15 * time.Second) {
				middleware.SetDBConnectionsActive(float64(sqlDB.Stats().InUse))
			}
		}()
	}

	// Redis backs rate limiting, response caching and the cross-instance
	// websocket fan-out. All of those degrade gracefully without it.
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Info("Warning: Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	// Cache Service (no-ops when Redis is absent)
	cacheService := pkgcache.NewService(redisClient)

	// Elasticsearch backs full-text queue search; the service falls back to
	// database LIKE queries when it is absent.
	var esClient *pkges.Client
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		var esErr error
		esClient, esErr = pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if esErr != nil {
			pkglogger.Info("Warning: Elasticsearch connection failed: %v (continuing without ES)", esErr)
			esClient = nil
		} else {
			pkglogger.Info("Connected to Elasticsearch")
		}
	}

	// S3-compatible storage for export archives
	var s3Client *pkgstorage.S3Client
	if cfg.Storage.Enabled && cfg.Storage.Bucket != "" {
		var s3Err error
		s3Client, s3Err = pkgstorage.NewS3Client(pkgstorage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			Bucket:          cfg.Storage.Bucket,
			CDNURL:          cfg.Storage.CDNURL,
			BasePath:        cfg.Storage.BasePath,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		})
		if s3Err != nil {
			pkglogger.Info("Warning: S3 storage init failed: %v (continuing without S3)", s3Err)
			s3Client = nil
		} else {
			pkglogger.Info("Connected to S3 storage")
		}
	}

	// ClickHouse receives one event per moderation decision for analytics
	var analyticsRepo *analytics.Repository
	if cfg.Analytics.Enabled {
		chClient, chErr := analytics.NewClickHouseClient(analytics.ClientConfig{
			Host:     cfg.Analytics.Host,
			Port:     cfg.Analytics.Port,
			Database: cfg.Analytics.Database,
			User:     cfg.Analytics.User,
			Password: cfg.Analytics.Password,
		})
		if chErr != nil {
			pkglogger.Info("Warning: ClickHouse connection failed: %v (continuing without analytics)", chErr)
		} else {
			analyticsRepo = analytics.NewRepository(chClient)
			if schemaErr := analyticsRepo.EnsureSchema(context.Background()); schemaErr != nil {
				pkglogger.Info("Warning: ClickHouse schema init failed: %v", schemaErr)
				analyticsRepo = nil
			} else {
				pkglogger.Info("Connected to ClickHouse")
			}
		}
	}

	// WebSocket Hub for the live moderator feed
	wsHub := ws.NewHub(redisClient)
	go wsHub.Run()

	// JWT Manager
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiresIn,
		cfg.JWT.RefreshIn,
	)

	// i18n Bundle for author notification templates
	i18nBundle := i18n.NewBundle(i18n.LocaleEn)
	for locale, msgs := range i18n.DefaultMessages() {
		i18nBundle.LoadMessages(locale, msgs)
	}
	if _, err := os.Stat("i18n"); err == nil {
		if err := i18nBundle.LoadDir("i18n"); err != nil {
			log.Printf("warning: i18n LoadDir failed: %v", err)
		}
	}

	// Author notifications go through Redis when available so the content
	// platform can consume them; otherwise they are logged.
	var dispatcher notify.Dispatcher
	if redisClient != nil {
		dispatcher = notify.NewRedisDispatcher(redisClient)
	} else {
		dispatcher = notify.NewLogDispatcher()
	}
	emitter := notify.NewEmitter(dispatcher, i18nBundle)

	// Repositories
	queueRepo := repository.NewQueueRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	moderatorRepo := repository.NewModeratorRepository(db)

	// Services
	queueService := service.NewQueueService(queueRepo, historyRepo, cacheService)
	queueService.SetEmitter(emitter)
	queueService.SetHub(wsHub)
	searchService := service.NewSearchService(esClient, queueRepo, cacheService)
	if searchService.Available() {
		queueService.SetIndexer(searchService)
	}
	if analyticsRepo != nil {
		queueService.SetAnalytics(analyticsRepo)
	}
	authService := service.NewAuthService(moderatorRepo, jwtManager)
	moderatorService := service.NewModeratorService(moderatorRepo, cacheService)
	exportService := service.NewExportService(queueRepo, s3Client, cfg.Queue.ExportLimit)

	auditLogger := middleware.NewAuditLogger(db)

	// Handlers
	queueHandler := handler.NewQueueHandler(queueService)
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(moderatorService)
	adminHandler.SetSearchService(searchService)
	adminHandler.SetAuditLogger(auditLogger)
	if analyticsRepo != nil {
		adminHandler.SetAnalytics(analyticsRepo)
	}
	searchHandler := handler.NewSearchHandler(searchService)
	exportHandler := handler.NewExportHandler(exportService)
	wsHandler := handler.NewWSHandler(wsHub, jwtManager, cfg.CORS.AllowOrigins)
	healthHandler := handler.NewHealthHandler(db)

	router := gin.Default()

	// CORS for the moderation console
	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}

	corsConfig := cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Remaining", "X-Cache"},
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	// Middleware
	router.Use(middleware.I18n())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if redisClient != nil && !cfg.IsDevelopment() {
		router.Use(middleware.RateLimit(redisClient, middleware.DefaultRateLimitConfig()))
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, queueHandler, authHandler, adminHandler, searchHandler, exportHandler, wsHandler, healthHandler, jwtManager, redisClient, cfg)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.Info("Server listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// splitAndTrim splits a string by delimiter and trims spaces
func splitAndTrim(s string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// initDB opens the MySQL connection with the pool sized from config
func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}
