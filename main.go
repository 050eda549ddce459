package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Nickflanagn24/bookstore/cache"
	"github.com/Nickflanagn24/bookstore/config"
	"github.com/Nickflanagn24/bookstore/controllers"
	"github.com/Nickflanagn24/bookstore/database"
	"github.com/Nickflanagn24/bookstore/logger"
	"github.com/Nickflanagn24/bookstore/middleware"
	"github.com/Nickflanagn24/bookstore/repository"
	"github.com/Nickflanagn24/bookstore/routes"
	"github.com/Nickflanagn24/bookstore/sender"
	"github.com/Nickflanagn24/bookstore/services"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer zlog.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	bookCache := cache.NewBookCache(redisClient, zlog)

	// Repositories.
	bookRepo := repository.NewGormBookRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	newsletterRepo := repository.NewGormNewsletterRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	contactRepo := repository.NewGormContactRepository(db)

	// Email goes to the log in development unless SMTP is configured.
	var emailSender sender.EmailSender
	if smtp, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromEmail); err == nil {
		emailSender = smtp
	} else {
		if cfg.IsProduction() {
			zlog.Fatal("SMTP configuration is required in production", zap.Error(err))
		}
		zlog.Warn("SMTP not configured, emails will be logged only")
		emailSender = sender.NewLogSender(zlog)
	}

	// Services.
	gateway := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.Currency)
	notificationSvc := services.NewNotificationService(notificationRepo, emailSender, zlog)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, zlog)
	bookSvc := services.NewBookService(bookRepo, zlog)
	cartSvc := services.NewCartService(cartRepo, bookRepo, zlog)
	orderSvc := services.NewOrderService(orderRepo, cartRepo, notificationSvc, zlog)
	paymentSvc := services.NewPaymentService(orderRepo, orderSvc, gateway, notificationSvc, cfg.SiteBaseURL, zlog)
	reviewSvc := services.NewReviewService(reviewRepo, bookRepo, zlog)
	newsletterSvc := services.NewNewsletterService(newsletterRepo, notificationSvc, cfg.SiteBaseURL, zlog)
	contactSvc := services.NewContactService(contactRepo, zlog)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimit(rate.Every(time.Second/20), 40))

	routes.Register(r, cfg, routes.Controllers{
		Auth:          controllers.NewAuthController(authSvc, zlog),
		Books:         controllers.NewBookController(bookSvc, bookCache, zlog),
		Cart:          controllers.NewCartController(cartSvc, zlog),
		Orders:        controllers.NewOrderController(orderSvc, zlog),
		Payments:      controllers.NewPaymentController(paymentSvc, authSvc, gateway, cfg.StripeWebhookSecret != "", zlog),
		Reviews:       controllers.NewReviewController(reviewSvc, zlog),
		Newsletter:    controllers.NewNewsletterController(newsletterSvc, zlog),
		Contact:       controllers.NewContactController(contactSvc, zlog),
		Notifications: controllers.NewNotificationController(notificationSvc, zlog),
	})

	zlog.Info("Server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("Server failed", zap.Error(err))
	}
}
