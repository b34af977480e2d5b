package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmlink/internal/config"
	"farmlink/internal/infrastructure"
	"farmlink/internal/interfaces/http"
	"farmlink/internal/repository"
	"farmlink/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the enabled chat channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	pg, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pg.Close()

	// Repositories
	productRepo := repository.NewProductRepository(pg.Pool)
	userRepo := repository.NewUserRepository(pg.Pool)
	orderRepo := repository.NewOrderRepository(pg.Pool)
	settingsRepo := repository.NewSettingsRepository(pg.Pool)

	aiClient, err := infrastructure.NewAIClient(ctx, cfg)
	if err != nil {
		return err
	}

	// Usecases
	vendorGPT := usecases.NewVendorGPT(aiClient, productRepo, logger, usecases.WithOracleTimeout(cfg.OracleTimeout))
	authUsecase := usecases.NewAuthUsecase(userRepo, cfg.JWTSecret)
	productUsecase := usecases.NewProductUsecase(productRepo)
	orderUsecase := usecases.NewOrderUsecase(orderRepo, cfg.PaymentLink)
	dashboardUsecase := usecases.NewDashboardUsecase(userRepo, productRepo, orderRepo, settingsRepo)

	if cfg.AdminEmail != "" {
		if err := authUsecase.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Warn("failed to ensure admin user", "error", err)
		}
	}

	// Chat channels share one router so history and limits are per chat
	limiter := infrastructure.NewMessageRateLimiter(cfg.ChatRatePerSec, cfg.ChatRateBurst)
	router := infrastructure.NewChatRouter(vendorGPT, limiter, logger)
	go sweepLimiters(ctx, limiter)

	var whatsapp http.WhatsAppAdmin
	if cfg.WhatsAppEnabled {
		client, err := infrastructure.NewWhatsAppClient(ctx, cfg.WhatsAppDBPath, logger)
		if err != nil {
			return fmt.Errorf("whatsapp: %w", err)
		}
		channel := infrastructure.NewWhatsAppChannel(client, router, logger)
		if err := channel.Start(ctx); err != nil {
			return fmt.Errorf("whatsapp: %w", err)
		}
		defer channel.Stop()
		whatsapp = channel
		logger.Info("whatsapp channel started")
	}

	if cfg.TelegramBotToken != "" {
		client, err := infrastructure.NewTelegramClient(cfg.TelegramBotToken)
		if err != nil {
			logger.Warn("telegram disabled", "error", err)
		} else {
			channel := infrastructure.NewTelegramChannel(client, router, productUsecase, settingsRepo, logger)
			go func() {
				if err := channel.Run(ctx); err != nil {
					logger.Error("telegram channel stopped", "error", err)
				}
			}()
			logger.Info("telegram channel started", "bot", client.Bot.Self.UserName)
		}
	} else {
		logger.Info("telegram disabled (TELEGRAM_BOT_TOKEN not set)")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	http.SetupRoutes(r, http.Deps{
		Assistant:  vendorGPT,
		Auth:       authUsecase,
		Products:   productUsecase,
		Orders:     orderUsecase,
		Admin:      dashboardUsecase,
		WhatsApp:   whatsapp,
		Middleware: http.NewMiddleware(cfg.JWTSecret),
		ChatRate:   rate.Limit(cfg.ChatRatePerSec),
		ChatBurst:  cfg.ChatRateBurst,
		Logger:     logger,
	})

	srv := &nethttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sweepLimiters(ctx context.Context, limiter *infrastructure.MessageRateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Cleanup(); n > 0 {
				logger.Debug("dropped idle chat limiters", "count", n, "active", limiter.Len())
			}
		}
	}
}
