package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ticket-marketplace/config"
	"ticket-marketplace/internal/cache"
	"ticket-marketplace/internal/database"
	"ticket-marketplace/internal/handler"
	"ticket-marketplace/internal/metrics"
	"ticket-marketplace/internal/middleware"
	"ticket-marketplace/internal/model"
	"ticket-marketplace/internal/queue"
	"ticket-marketplace/internal/repository"
	"ticket-marketplace/internal/service"
	"ticket-marketplace/internal/storage"
	"ticket-marketplace/internal/worker"
	"ticket-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	defer logger.Sync()

	// .env 不存在時直接用環境變數
	_ = godotenv.Load(".env")

	if err := run(); err != nil {
		logger.L.Fatal("Server exited with error", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Server.LogLevel)
	gin.SetMode(cfg.Server.GinMode)

	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	blobStore, err := storage.NewLocalBlobStore(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	publisher, closePublisher, err := newEventPublisher(ctx, g, &cfg.Kafka)
	if err != nil {
		return err
	}
	defer closePublisher()

	txManager := repository.NewTxManager(pool)
	ticketRepository := repository.NewTicketRepository(pool)
	favoriteRepository := repository.NewFavoriteRepository(pool)
	ticketCache := cache.NewRedisTicketCache(rdb, cfg.Cache.TicketTTL)

	ticketService := service.NewTicketService(txManager, ticketRepository, ticketCache, blobStore, publisher)
	searchService := service.NewTicketSearchService(ticketRepository, cfg.Search.MaxPageSize)
	favoriteService := service.NewFavoriteService(txManager, favoriteRepository)
	expirationService := service.NewExpirationService(
		ticketRepository,
		ticketCache,
		cache.NewRedisSweepLock(rdb),
		cfg.Sweeper.LockTTL,
		publisher,
	)

	dealWorker, err := newDealEventWorker(ctx, rdb, &cfg.Events, ticketService)
	if err != nil {
		return err
	}
	g.Go(func() error {
		return dealWorker.Run(ctx)
	})

	sweeper := worker.NewExpirationSweeper(expirationService, cfg.Sweeper.Interval)
	g.Go(func() error {
		return sweeper.Run(ctx)
	})

	router := gin.New()
	router.Use(gin.Recovery(), metrics.GinMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.JWTAuth(cfg.Auth.JWTSecret)
	ticketHandler := handler.NewTicketHandler(ticketService, searchService, cfg.Search.DefaultPageSize)
	if cfg.Seed.Enabled {
		seedTickets(ctx, ticketService, cfg.Seed.OwnerID)
		ticketHandler.WithSeedRoute()
	}
	ticketHandler.RegisterRoutes(router, auth)
	handler.NewFavoriteHandler(favoriteService).RegisterRoutes(router, auth)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		logger.L.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.L.Info("Shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newEventPublisher Kafka 未啟用時改用 in-memory queue，只記錄 log
func newEventPublisher(ctx context.Context, g *errgroup.Group, cfg *config.KafkaConfig) (queue.Publisher[model.TicketEvent], func(), error) {
	if cfg.Enabled {
		writer, err := database.InitKafkaWriter(cfg)
		if err != nil {
			return nil, nil, err
		}
		publisher := queue.NewKafkaPublisher(writer, eventKey)
		return publisher, func() {
			if err := writer.Close(); err != nil {
				logger.WithComponent("mq").Warn("Failed to close kafka writer", zap.Error(err))
			}
		}, nil
	}

	sink := queue.NewMemoryQueue[model.TicketEvent](1024)
	events, err := sink.Subscribe(ctx)
	if err != nil {
		return nil, nil, err
	}
	g.Go(func() error {
		log := logger.WithComponent("mq")
		for msg := range events {
			log.Info("Ticket event",
				zap.String("type", msg.Data.Type),
				zap.Int64("ticket_id", msg.Data.TicketID),
				zap.Int("ticket_count", len(msg.Data.TicketIDs)))
			msg.Ack()
		}
		return nil
	})
	return sink, func() {}, nil
}

// seedTickets 開發環境啟動時補示範資料，失敗不影響啟動
func seedTickets(ctx context.Context, tickets service.TicketService, ownerID int64) {
	created, err := tickets.SeedTickets(ctx, ownerID)
	if err != nil {
		logger.L.Warn("Failed to seed demo tickets", zap.Error(err))
		return
	}
	logger.L.Info("Seeded demo tickets", zap.Int64("created", created))
}

// eventKey 同一張票的事件進同一個 partition
func eventKey(event *model.TicketEvent) string {
	if event.TicketID == 0 {
		return event.Type
	}
	return strconv.FormatInt(event.TicketID, 10)
}

func newDealEventWorker(ctx context.Context, rdb *redis.Client, cfg *config.EventsConfig, tickets service.TicketService) (worker.DealEventWorker, error) {
	hostname, _ := os.Hostname()
	dealQueue, err := queue.NewRedisStreamQueue[model.DealEvent](ctx, rdb, cfg.DealStream, cfg.DealGroup, hostname, nil)
	if err != nil {
		return nil, err
	}
	return worker.NewDealEventWorker(tickets, dealQueue), nil
}
