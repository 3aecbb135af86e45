// Vakinha Checkout Payment Service
//
// This is the main entry point for the payment service behind the checkout
// page. It wires up all dependencies and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vakinha/checkout/config"
	"github.com/vakinha/checkout/internal/amount"
	"github.com/vakinha/checkout/internal/api"
	"github.com/vakinha/checkout/internal/domain"
	"github.com/vakinha/checkout/internal/payment"
	"github.com/vakinha/checkout/internal/pix"
	"github.com/vakinha/checkout/internal/platform/mercadopago"
	"github.com/vakinha/checkout/internal/platform/qrcode"
	"github.com/vakinha/checkout/internal/platform/store"
)

// statusRetention bounds how long charge statuses stay in Redis.
const statusRetention = 24 * time.Hour

func main() {
	log.Println("Starting Vakinha Checkout Service...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	log.Printf("Configuration loaded: Port=%s, Campaign=%s", cfg.Server.Port, cfg.Campaign.ID)

	// Validate required configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger = logger.With("service", "vakinha-checkout")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire up dependencies (manual dependency injection)
	//
	// Infrastructure Layer
	statuses, err := statusStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Storage error: %v", err)
	}
	gateway, err := paymentGateway(cfg)
	if err != nil {
		log.Fatalf("Gateway error: %v", err)
	}

	// Service Layer
	paymentService := payment.NewService(
		gateway,  // implements domain.PaymentGateway
		statuses, // implements domain.StatusStore
		domain.Campaign{ID: cfg.Campaign.ID, Name: cfg.Campaign.Name},
		amount.Amount(cfg.Campaign.MinAmountCents),
		payment.WithTTL(cfg.TTL()),
		payment.WithLogger(logger),
	)

	// API Layer
	handler := api.NewHandler(paymentService, qrcode.NewRenderer(qrcode.Options{}), logger)
	router := api.SetupRouter(handler, cfg.Server.GinMode, mercadopago.NewSignatureValidator(cfg.Payments.WebhookSecret))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func statusStore(ctx context.Context, cfg *config.Config) (domain.StatusStore, error) {
	if cfg.Storage.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, payment statuses are kept in memory")
		return store.NewMemoryStatusStore(), nil
	}
	client, err := store.Connect(ctx, cfg.Storage.RedisURL)
	if err != nil {
		return nil, err
	}
	return store.NewRedisStatusStore(client, statusRetention), nil
}

func paymentGateway(cfg *config.Config) (domain.PaymentGateway, error) {
	if cfg.Payments.AccessToken == "" {
		log.Println("Warning: MP_ACCESS_TOKEN not set, issuing development PIX codes")
		return pix.NewDevGateway(cfg.Pix.Key, cfg.Pix.MerchantName, cfg.Pix.MerchantCity, nil), nil
	}
	return mercadopago.NewAdapter(cfg.Payments.AccessToken, cfg.Payments.NotificationURL)
}

// validateConfig checks that required configuration values are set.
func validateConfig(cfg *config.Config) error {
	if cfg.Payments.AccessToken == "" && cfg.Pix.Key == "" {
		return fmt.Errorf("PIX_KEY is required when MP_ACCESS_TOKEN is not set")
	}
	if cfg.Campaign.MinAmountCents <= 0 {
		return fmt.Errorf("MIN_AMOUNT_CENTS must be positive")
	}
	if cfg.Pix.TTLMinutes <= 0 {
		return fmt.Errorf("PIX_TTL_MINUTES must be positive")
	}
	if cfg.Payments.AccessToken != "" && cfg.Payments.WebhookSecret == "" {
		log.Println("Warning: MP_WEBHOOK_SECRET not set, webhook signatures are not checked")
	}
	return nil
}
