package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Hemantgithubpro/rewear-1/internal/api"
	"github.com/Hemantgithubpro/rewear-1/internal/config"
	"github.com/Hemantgithubpro/rewear-1/internal/handler"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/auth"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/kafka"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/observability"
	core "github.com/Hemantgithubpro/rewear-1/internal/repository/postgres"
	service "github.com/Hemantgithubpro/rewear-1/internal/services"
	"github.com/Hemantgithubpro/rewear-1/internal/settlement"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logs, metrics, traces
	shutdownTracing, metricsHandler, err := observability.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up observability: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("failed to shut down tracing", "error", err)
		}
	}()

	db, err := core.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Postgres.MigrateOnStart {
		if err := core.Migrate(ctx, db); err != nil {
			return err
		}
	}

	userRepo := core.NewPostgresUserRepository(db)
	itemRepo := core.NewPostgresItemRepository(db)
	swapRepo := core.NewPostgresSwapRepository(db)
	ledgerRepo := core.NewPostgresLedgerRepository(db)
	txManager := core.NewTxManager(db)

	redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	topics := kafka.Topics{Swaps: cfg.Kafka.SwapsTopic, Items: cfg.Kafka.ItemsTopic}
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	publisher := kafka.NewPublisher(producer, topics)
	// flush in-flight events before the writer closes
	defer publisher.Wait()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topics, cfg.Kafka.GroupID, redisClient)
	defer consumer.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	settler := settlement.NewSettler(txManager, swapRepo, itemRepo, ledgerRepo, settlement.Config{
		MaxRetries:   cfg.Settlement.MaxRetries,
		RetryBackoff: cfg.Settlement.RetryBackoff,
	})

	authService := service.NewAuthService(userRepo, redisClient, tokens, cfg.Ledger.StartingBalance)
	catalogService := service.NewCatalogService(itemRepo, redisClient, publisher, cfg.Cache.ItemTTL)
	ledgerService := service.NewLedgerService(ledgerRepo, redisClient, cfg.Cache.BalanceTTL)
	swapService := service.NewSwapService(txManager, swapRepo, itemRepo, ledgerRepo, redisClient, publisher, settler, cfg.Cache.AcceptLockTTL)

	completed, err := swapService.ResumeAccepted(ctx)
	if err != nil {
		slog.Error("failed to resume accepted swap requests", "error", err)
	} else if completed > 0 {
		slog.Info("resumed accepted swap requests", "completed", completed)
	}

	h := handler.NewHandler(authService, catalogService, ledgerService, swapService)
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.SetupRouter(h, redisClient, tokens),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsServer := &http.Server{
		Addr:              cfg.HTTP.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", server.Addr)
		return listen(server)
	})
	g.Go(func() error {
		slog.Info("serving metrics", "addr", metricsServer.Addr)
		return listen(metricsServer)
	})
	g.Go(func() error {
		consumer.Consume(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return errors.Join(server.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

func listen(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server on %s failed: %w", server.Addr, err)
	}
	return nil
}
