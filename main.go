package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/config"
	"staybook/cron"
	"staybook/database"
	accommodationRepo "staybook/database/repository/accommodation"
	availabilityRepo "staybook/database/repository/availability"
	paymentRepo "staybook/database/repository/payment"
	reservationRepo "staybook/database/repository/reservation"
	userRepo "staybook/database/repository/user"
	"staybook/handlers"
	"staybook/middleware"
	"staybook/routes"
	"staybook/services/availability"
	"staybook/services/lock"
	"staybook/services/notification"
	"staybook/services/payment"
	"staybook/services/reservation"
	"staybook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	if err := database.InitDB(logger); err != nil {
		logger.Fatal("main: database unavailable", zap.Error(err))
	}

	// repositories.
	accommodations := accommodationRepo.NewMongoAccommodationRepo()
	users := userRepo.NewMongoUserRepo()
	calendarRepo, err := availabilityRepo.NewMongoCalendarRepo()
	if err != nil {
		logger.Fatal("main: calendar repository", zap.Error(err))
	}
	reservations, err := reservationRepo.NewMongoReservationRepo()
	if err != nil {
		logger.Fatal("main: reservation repository", zap.Error(err))
	}
	payments, err := paymentRepo.NewMongoPaymentRepo()
	if err != nil {
		logger.Fatal("main: payment repository", zap.Error(err))
	}

	var redisClients []*redis.Client
	var locker lock.Locker
	if config.AppConfig.LockBackend == "redis" {
		client := utils.GetLockClient()
		redisClients = append(redisClients, client)
		locker = lock.NewRedisLocker(client, config.AppConfig.LockTTL, config.AppConfig.LockWait, logger)
	} else {
		locker = lock.NewMemoryLocker(config.AppConfig.LockWait)
	}
	logger.Info("Admission locking ready", zap.String("backend", config.AppConfig.LockBackend))

	var publisher notification.Publisher = notification.NoopPublisher{}
	if config.AppConfig.RabbitMQURL != "" {
		amqpPublisher, err := notification.NewAMQPPublisher(config.AppConfig.RabbitMQURL, config.AppConfig.EventsExchange, logger)
		if err != nil {
			logger.Warn("main: events disabled, broker unavailable", zap.Error(err))
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	var gateway payment.Gateway = payment.OfflineGateway{}
	if config.AppConfig.StripeKey != "" {
		stripe.Key = config.AppConfig.StripeKey
		gateway = payment.NewStripeGateway(config.AppConfig.StripePaymentMethod, logger)
	}

	// services.
	calendarService := availability.NewCalendarService(calendarRepo, accommodations, locker, logger)
	reservationService := reservation.NewReservationService(reservation.Deps{
		Repo:              reservations,
		AccommodationRepo: accommodations,
		UserRepo:          users,
		PaymentRepo:       payments,
		Calendar:          calendarService,
		Locker:            locker,
		Publisher:         publisher,
		Logger:            logger,
	}, reservation.WithMaxStayNights(config.AppConfig.MaxStayNights))
	paymentService := payment.NewPaymentService(payments, reservations, gateway, locker,
		config.AppConfig.StripeCurrency, logger)

	handlerBundle := &handlers.HandlerBundle{
		Reservation: handlers.NewReservationHandler(reservationService),
		Calendar:    handlers.NewCalendarHandler(calendarService),
		Payment:     handlers.NewPaymentHandler(paymentService),
		Health:      &handlers.HealthHandler{},
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(config.AppConfig.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	var worker *cron.CompletionWorker
	if utils.RedisEnabled() {
		worker, err = cron.InitCompletionWorker(reservationService, logger)
		if err != nil {
			logger.Fatal("main: completion worker", zap.Error(err))
		}
		worker.Start()
	} else {
		logger.Warn("main: REDIS_ADDR not set, elapsed stays will not be completed automatically")
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, redisClients, database.MongoClient)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
