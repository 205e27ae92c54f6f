package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/api"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/cart"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/checkout"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/config"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/controllers"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/gateway"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/notify"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/payment"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pkg/apperrors"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pkg/logger"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pricing"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/routes"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/session"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/storage"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	ctx := context.Background()

	// Durable client storage
	var store storage.Store
	switch cfg.StorageBackend {
	case "redis":
		client, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		store = storage.NewRedisStore(client, cfg.CartTTL)
		logger.Log.Info("using redis storage", zap.String("url", cfg.RedisURL))
	default:
		fileStore, err := storage.NewFileStore(cfg.StorageDir)
		if err != nil {
			log.Fatalf("failed to open storage dir: %v", err)
		}
		store = fileStore
		logger.Log.Info("using file storage", zap.String("dir", cfg.StorageDir))
	}

	// Session + authenticated gateway to the remote API
	sess := session.NewManager(ctx, store, logger.Log)
	gwOpts := []gateway.Option{
		gateway.WithSessionExpiredHook(func() {
			logger.Log.Warn("session expired, sign-in required")
		}),
	}
	if cfg.APIRateLimit > 0 {
		gwOpts = append(gwOpts, gateway.WithRateLimit(rate.Limit(cfg.APIRateLimit), cfg.APIRateBurst))
	}
	gw := gateway.New(cfg.APIBaseURL, cfg.RefreshPath, sess, logger.Log, gwOpts...)
	apiClient := api.NewClient(gw)

	// Core components
	notifier := notify.NewLogNotifier(logger.Log)
	cartStore := cart.NewStore(ctx, store, notifier, logger.Log)
	engine := pricing.NewEngine(
		pricing.WithShippingTiers(cfg.CapitalCity, cfg.ShippingCapital, cfg.ShippingRegion),
		pricing.WithTaxRate(cfg.TaxRate),
	)
	charger := payment.NewStripeCharger(cfg.StripeSecretKey)
	orchestrator := checkout.NewOrchestrator(cartStore, apiClient, charger, engine, notifier, logger.Log)

	// HTTP surface for the UI
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())
	router.Use(apperrors.ErrorMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	routes.Register(router,
		controllers.NewCartController(cartStore),
		controllers.NewCheckoutController(orchestrator),
		controllers.NewAuthController(apiClient, sess, logger.Log),
		controllers.NewProductController(apiClient, logger.Log),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("storefront running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
}
