package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AuthUserService/internal/events"
	httphandler "AuthUserService/internal/handler/http"
	"AuthUserService/internal/middleware"
	"AuthUserService/internal/pkg/jwt"
	"AuthUserService/internal/pkg/password"
	"AuthUserService/internal/repository/postgres"
	"AuthUserService/internal/service"
	"AuthUserService/pkg/config"
	"AuthUserService/pkg/connection"
	"AuthUserService/pkg/database"
	"AuthUserService/pkg/health"
	"AuthUserService/pkg/logger"
	"AuthUserService/pkg/metrics"
	"AuthUserService/pkg/rabbitmq"
	"AuthUserService/pkg/ratelimit"
	pkg_redis "AuthUserService/pkg/redis"
)

func main() {
	// Инициализация конфигурации
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger, err := logger.NewLogger(
		cfg.Environment,
		cfg.Logger.Level,
		"auth-user-service",
	)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		if err := appLogger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}()

	// Инициализация retry конфигурации
	retryConfig := connection.DefaultRetryConfig()

	// Подключение к PostgreSQL с retry логикой
	dbConfig := database.NewConfig()
	dbConfig.Host = cfg.Database.Host
	dbConfig.Port = cfg.Database.Port
	dbConfig.User = cfg.Database.User
	dbConfig.Password = cfg.Database.Password
	dbConfig.Database = cfg.Database.Name

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer dbCancel()

	var pg *database.Postgres
	err = connection.WithRetry(dbCtx, retryConfig, func(ctx context.Context) error {
		var err error
		pg, err = database.Connect(ctx, dbConfig)
		if err != nil {
			appLogger.Error("Failed to connect to database, retrying...", logger.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		appLogger.Error("Failed to connect to database after retries", logger.Error(err))
		os.Exit(1)
	}
	defer pg.Close()

	// Подключение к Redis с retry логикой
	redisConfig := pkg_redis.NewConfig()
	redisConfig.Addr = cfg.Redis.Addr
	redisConfig.Password = cfg.Redis.Password
	redisConfig.DB = cfg.Redis.DB

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer redisCancel()

	var redisClient *pkg_redis.Client
	err = connection.WithRetry(redisCtx, retryConfig, func(ctx context.Context) error {
		var err error
		redisClient, err = pkg_redis.Connect(ctx, redisConfig)
		if err != nil {
			appLogger.Error("Failed to connect to redis, retrying...", logger.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		appLogger.Error("Failed to connect to redis after retries", logger.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// Подключение к RabbitMQ. Брокер нужен только для событий
	// пользователей, при его недоступности сервис стартует без них.
	mqConfig := rabbitmq.NewConfig()
	mqConfig.URL = cfg.RabbitMQ.URL
	mqConfig.Exchange = cfg.RabbitMQ.Exchange
	mqConfig.RoutingKey = cfg.RabbitMQ.RoutingKey
	mqConfig.Queue = cfg.RabbitMQ.Queue

	var producer events.Producer = events.NopProducer{}
	mqCtx, mqCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer mqCancel()

	mqConn, err := rabbitmq.Connect(mqCtx, mqConfig)
	if err != nil {
		appLogger.Warn("Failed to connect to rabbitmq, user events disabled", logger.Error(err))
	} else {
		defer mqConn.Close()
		producer = events.NewRabbitProducer(rabbitmq.NewProducer(mqConn, mqConfig), appLogger)
	}

	// Инициализация метрик и трассировки
	if err := metrics.InitializeOpenTelemetry("auth_user_service"); err != nil {
		appLogger.Warn("Failed to initialize tracing", logger.Error(err))
	}
	metricCollector := metrics.NewMetrics("auth_user_service")

	// Инициализация компонентов домена
	accessTTL, err := cfg.JWT.AccessDuration()
	if err != nil {
		appLogger.Error("Invalid access token duration", logger.Error(err))
		os.Exit(1)
	}
	refreshTTL, err := cfg.JWT.RefreshDuration()
	if err != nil {
		appLogger.Error("Invalid refresh token duration", logger.Error(err))
		os.Exit(1)
	}

	tokenCodec := jwt.NewManager(cfg.JWT.Secret, accessTTL, refreshTTL)
	passwordHasher := password.NewBcryptHasher(0)

	userRepository := postgres.NewUserRepository(pg.Pool)
	userService := service.NewUserService(userRepository, passwordHasher, producer, appLogger)
	authService := service.NewAuthService(userRepository, userService, tokenCodec, passwordHasher, producer, appLogger)

	// Health checker с проверкой зависимостей
	healthChecker := health.NewDependencyHealthChecker("1.0.0", 5*time.Second)
	healthChecker.AddProbe("postgres", pg.HealthCheck)
	healthChecker.AddProbe("redis", redisClient.HealthCheck)

	// Rate limiter для маршрутов аутентификации
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient.Client)

	baseHandler := httphandler.NewHandler(authService, userService, healthChecker, metricCollector, appLogger)

	// Обертываем хендлер в middleware
	var httpHandler http.Handler = baseHandler
	httpHandler = middleware.AuthMiddleware(authService)(httpHandler)
	httpHandler = middleware.RateLimitMiddleware(rateLimiter, cfg.RateLimiting.RequestsPerMinute, time.Minute, appLogger)(httpHandler)
	httpHandler = metricCollector.Middleware(httpHandler)
	httpHandler = middleware.CORSMiddleware(cfg.CORS.AllowedOrigins, appLogger)(httpHandler)
	httpHandler = middleware.LoggingMiddleware(appLogger)(httpHandler)
	httpHandler = middleware.RecoveryMiddleware(appLogger)(httpHandler)

	// Добавляем эндпоинт для метрик
	rootMux := http.NewServeMux()
	rootMux.Handle("/metrics", metricCollector.GetHandler())
	rootMux.Handle("/", httpHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: rootMux,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		appLogger.Info("Starting auth user service", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", logger.Error(err))
		}
	}()

	// Обработка сигналов для graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server shutdown failed", logger.Error(err))
	}

	appLogger.Info("Server stopped")
}
