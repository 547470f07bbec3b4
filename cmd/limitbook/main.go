package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/efreitasn/limitbook/internal/config"
	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/engine"
	"github.com/efreitasn/limitbook/internal/handler"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// The book: starts its good_for_day sweeper, stopped on shutdown.
	book := engine.New(engine.Config{
		ExpiryHour:   cfg.ExpiryHour,
		ExpiryMargin: cfg.ExpiryMargin,
		Location:     cfg.ExpiryTZ,
	})

	// Demonstration order flow: a resting bid, a smaller crossing ask.
	demo(book, logger)

	// Router.
	router := handler.NewRouter(book, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, then the book's sweeper.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	book.Close()

	logger.Info("server stopped")
}

// demo submits a resting bid and a smaller crossing ask, logging the
// executed trades and the book size after each step.
func demo(book *engine.Orderbook, logger *slog.Logger) {
	bid, err := domain.NewOrder(uuid.New().String(), domain.OrderTypeGoodTillCancel, domain.SideBid, 10000, 50)
	if err != nil {
		logger.Error("demo bid rejected", slog.String("error", err.Error()))
		return
	}
	book.AddOrder(bid)

	ask, err := domain.NewOrder(uuid.New().String(), domain.OrderTypeGoodTillCancel, domain.SideAsk, 10000, 30)
	if err != nil {
		logger.Error("demo ask rejected", slog.String("error", err.Error()))
		return
	}
	trades := book.AddOrder(ask)

	for _, t := range trades {
		logger.Info("trade executed",
			slog.String("bid_order", t.Bid.OrderID),
			slog.String("ask_order", t.Ask.OrderID),
			slog.String("price", domain.FormatCents(t.Ask.Price)),
			slog.Int64("quantity", t.Ask.Quantity),
		)
	}
	logger.Info("orders in book", slog.Int("size", book.Size()))
}
