package main

import (
	"context"
	"net/http"

	_ "time/tzdata" // Load timezone data

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/quilltips/payments-service/internal/app"
	"github.com/quilltips/payments-service/internal/config"
	"github.com/quilltips/payments-service/internal/controllers"
	"github.com/quilltips/payments-service/internal/middleware"
	"github.com/quilltips/payments-service/internal/repositories"
	"github.com/quilltips/payments-service/internal/routes"
	"github.com/quilltips/payments-service/internal/services"
	"github.com/quilltips/payments-service/internal/utils"
)

const appName = "payments-service"

func main() {
	utils.InitLogger(appName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize the application:", err)
	}
	defer application.Close()

	// Repositories
	profileRepo := repositories.NewProfileRepository(application.DB)
	qrCodeRepo := repositories.NewQRCodeRepository(application.DB)
	tipRepo := repositories.NewTipRepository(application.DB)

	// Services
	stripeAPI := services.NewStripeAPI(cfg.StripeSecretKey)
	notifier := services.NewSendgridNotificationService(cfg)
	connectService := services.NewStripeConnectService(cfg, profileRepo, stripeAPI)
	reminderService := services.NewReminderService(cfg, profileRepo, stripeAPI, connectService, notifier)
	checkoutService := services.NewCheckoutService(cfg, profileRepo, qrCodeRepo, tipRepo, stripeAPI, notifier)
	qrCodeService := services.NewQRCodeService(profileRepo, qrCodeRepo)
	analyticsService := services.NewTipAnalyticsService(tipRepo)

	// Controllers
	healthController := controllers.NewHealthController(application)
	connectController := controllers.NewStripeConnectController(connectService)
	webhookController := controllers.NewStripeWebhookController(cfg, checkoutService, connectService)
	reminderController := controllers.NewReminderController(reminderService)
	checkoutController := controllers.NewCheckoutController(checkoutService)
	qrCodeController := controllers.NewQRCodeController(qrCodeService)
	profileController := controllers.NewProfileController(profileRepo)
	analyticsController := controllers.NewTipAnalyticsController(analyticsService)

	// Scheduled reminder sweep
	c := cron.New()
	_, schErr := c.AddFunc(cfg.ReminderCron, func() {
		if _, err := reminderService.RunReminderSweep(context.Background()); err != nil {
			utils.Logger.WithError(err).Error("Scheduled reminder sweep failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule reminder sweep job")
	}
	c.Start()

	// Router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.StripeWebhook, webhookController.WebhookHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.RemindersRun, reminderController.RunRemindersHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.CheckoutTip, checkoutController.TipCheckoutHandler).Methods(http.MethodPost)

	// Protected routes (JWT middleware)
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware([]byte(cfg.AuthJWTSecret)))

	secured.HandleFunc(routes.StripeConnectOnboard, connectController.OnboardHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.CheckoutQRCode, checkoutController.QRCodeCheckoutHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.QRCodes, qrCodeController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.QRCodes, qrCodeController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Profile, profileController.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AnalyticsTips, analyticsController.TipsHandler).Methods(http.MethodGet)

	// CORS config
	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", appName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
