package main

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"medequip/internal/controllers"
	"medequip/internal/listeners"
	"medequip/internal/repositories"
	"medequip/internal/routes"
	"medequip/internal/services"
	"medequip/pkg/config"
	"medequip/pkg/database/postgresql"
	"medequip/pkg/eventbus"
	"medequip/pkg/filestorage"
	"medequip/pkg/logger"
	"medequip/pkg/middleware"
	"medequip/pkg/service"
	"medequip/pkg/validation"
	"medequip/seeders"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg := config.New()

	pool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("не удалось подключиться к Redis", zap.Error(err))
	}
	defer redisClient.Close()

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Static.FilesDir)
	if err != nil {
		log.Fatal("не удалось инициализировать файловое хранилище", zap.Error(err))
	}

	jwtService := service.NewJWTService(
		cfg.JWT.SecretKey, cfg.JWT.Algorithm,
		cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL,
		log,
	)

	bus := eventbus.New(log)

	// Репозитории
	repairRequestRepo := repositories.NewRepairRequestRepository(pool)
	statusRecordRepo := repositories.NewStatusRecordRepository(pool)
	usedSparePartRepo := repositories.NewUsedSparePartRepository(pool)
	locationRepo := repositories.NewLocationRepository(pool)
	photoRepo := repositories.NewPhotoRepository(pool)
	equipmentRepo := repositories.NewEquipmentRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	cacheRepo := repositories.NewCacheRepository(redisClient)

	// Сервисы
	photoIngestor := services.NewPhotoIngestor(fileStorage, log)
	photoBaseURL := cfg.Static.ProxyURL
	if photoBaseURL[len(photoBaseURL)-1] != '/' {
		photoBaseURL += "/"
	}
	repairRequestService := services.NewRepairRequestService(
		pool, repairRequestRepo, statusRecordRepo, usedSparePartRepo,
		locationRepo, photoRepo, photoIngestor, bus, photoBaseURL, log,
	)
	equipmentService := services.NewEquipmentService(equipmentRepo, log)
	authService := services.NewAuthService(userRepo, cacheRepo, jwtService, log)
	reportService := services.NewReportService(repairRequestRepo, log)

	notificationService, err := services.NewNotificationService(cfg.SMTP, log)
	if err != nil {
		log.Fatal("не удалось инициализировать почтовый сервис", zap.Error(err))
	}
	listeners.NewNotificationListener(userRepo, locationRepo, notificationService, log).Register(bus)

	if err := seeders.SeedSuperuser(context.Background(), userRepo, cacheRepo, cfg.Superuser, log); err != nil {
		log.Fatal("не удалось создать суперпользователя", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Static("/static", cfg.Static.FilesDir)

	authMiddleware := middleware.NewAuthMiddleware(jwtService, authService, log)
	routes.Register(e, routes.Controllers{
		Auth:          controllers.NewAuthController(authService, log),
		RepairRequest: controllers.NewRepairRequestController(repairRequestService, log),
		Equipment:     controllers.NewEquipmentController(equipmentService, log),
		Report:        controllers.NewReportController(reportService, log),
		Health:        controllers.NewHealthController(bus, log),
	}, authMiddleware)

	log.Info("сервер запускается", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("сервер остановлен", zap.Error(err))
	}
}
