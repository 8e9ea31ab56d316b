package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	delivery "financial-news-ai/internal/dashboard/delivery/http"
	_ "financial-news-ai/internal/dashboard/docs"
	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/pkg/logger"
	"financial-news-ai/pkg/telegram"
	"financial-news-ai/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var (
	configPath   string
	tickerFlag   string
	digestDryRun bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the dashboard API",
	Run:   runServe,
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Classifies the catalog and sends the sentiment digest to Telegram",
	Run:   runDigest,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Prints the sentiment analysis for one ticker",
	Run:   runClassify,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		log.Fatalf("Failed to start dashboard service: %v", err)
	}
	defer a.close()
	appLogger := a.logger
	cfg := a.cfg

	appLogger.Info("Starting Dashboard Service",
		logger.Field("name", cfg.App.Name),
		logger.StringField("analysis_mode", cfg.Analysis.Mode),
		logger.StringField("catalog_source", cfg.Catalog.Source),
		logger.StringField("session_store", cfg.Session.Store))

	sessionRepo, err := a.sessionRepository()
	if err != nil {
		appLogger.Fatal("Failed to initialize session store", logger.ErrorField(err))
	}

	cardSvc := service.NewCardService(a.feed, a.analysis, cfg.Analysis.SimulatedDelay, cfg.Analysis.CardIdleTTL, appLogger)
	defer cardSvc.Close()

	authSvc := service.NewAuthService(service.AuthConfig{
		JWTSecret:      cfg.Session.JWTSecret,
		TTL:            cfg.Session.TTL,
		SimulatedDelay: cfg.Session.SimulatedDelay,
	}, sessionRepo, cardSvc, appLogger)

	if cfg.Digest.Cron != "" {
		digestSvc := service.NewDigestService(a.feed, a.analysis, a.notifier, a.location, appLogger)
		scheduler, err := service.NewDigestScheduler(cfg.Digest.Cron, digestSvc, a.notifier, a.location, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize digest scheduler", logger.ErrorField(err))
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			scheduler.Stop(stopCtx)
		}()
	}

	e := delivery.NewRouter(delivery.Services{
		Auth:     authSvc,
		Feed:     a.feed,
		Analysis: a.analysis,
		Cards:    cardSvc,
	}, cfg.Session.CookieName, a.checks, appLogger)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func runDigest(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		log.Fatalf("Failed to start digest: %v", err)
	}
	defer a.close()

	digestSvc := service.NewDigestService(a.feed, a.analysis, a.notifier, a.location, a.logger)
	if digestDryRun {
		entries := digestSvc.BuildDigest(ctx)
		generatedAt := utils.FormatLocaleTimestamp(utils.TimeNowIn(a.location))
		for _, msg := range telegram.FormatSentimentDigest(entries, generatedAt) {
			fmt.Println(msg)
		}
		return
	}

	if err := digestSvc.SendDigest(ctx); err != nil {
		a.logger.Error("Failed to send digest", logger.ErrorField(err))
		a.close()
		os.Exit(1)
	}
}

func runClassify(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		log.Fatalf("Failed to start classify: %v", err)
	}
	defer a.close()

	item, err := a.feed.FindByTicker(ctx, tickerFlag)
	if err != nil {
		a.logger.Error("Failed to find ticker", logger.StringField("ticker", tickerFlag), logger.ErrorField(err))
		a.close()
		os.Exit(1)
	}

	out, err := json.MarshalIndent(a.analysis.Analyze(ctx, *item), "", "  ")
	if err != nil {
		a.logger.Error("Failed to encode analysis", logger.ErrorField(err))
		a.close()
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// @title Financial News AI API
// @version 1.0
// @description Stock news feed with headline sentiment analysis, buy ranges and halal screening.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{Use: "dashboard-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-dashboard.yaml", "Path to the configuration file")

	classifyCmd.Flags().StringVarP(&tickerFlag, "ticker", "t", "", "Ticker to classify, e.g. AAPL")
	_ = classifyCmd.MarkFlagRequired("ticker")
	digestCmd.Flags().BoolVar(&digestDryRun, "dry-run", false, "Print the digest instead of sending it")

	rootCmd.AddCommand(serveCmd, digestCmd, classifyCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing dashboard-service CLI: %s\n", err)
		os.Exit(1)
	}
}
