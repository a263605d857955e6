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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/pkg/middleware"
	"golang.org/x/sync/errgroup"

	authapp "github.com/marginalfriend/my-garage/internal/auth/application"
	authdomain "github.com/marginalfriend/my-garage/internal/auth/domain"
	authmysql "github.com/marginalfriend/my-garage/internal/auth/infrastructure/persistence/mysql"
	authhttp "github.com/marginalfriend/my-garage/internal/auth/interfaces/http"
	cartapp "github.com/marginalfriend/my-garage/internal/cart/application"
	cartdomain "github.com/marginalfriend/my-garage/internal/cart/domain"
	cartmysql "github.com/marginalfriend/my-garage/internal/cart/infrastructure/persistence/mysql"
	carthttp "github.com/marginalfriend/my-garage/internal/cart/interfaces/http"
	catalogapp "github.com/marginalfriend/my-garage/internal/catalog/application"
	catalogdomain "github.com/marginalfriend/my-garage/internal/catalog/domain"
	catalogmysql "github.com/marginalfriend/my-garage/internal/catalog/infrastructure/persistence/mysql"
	"github.com/marginalfriend/my-garage/internal/catalog/infrastructure/storage"
	cataloghttp "github.com/marginalfriend/my-garage/internal/catalog/interfaces/http"
	orderapp "github.com/marginalfriend/my-garage/internal/order/application"
	orderdomain "github.com/marginalfriend/my-garage/internal/order/domain"
	ordermysql "github.com/marginalfriend/my-garage/internal/order/infrastructure/persistence/mysql"
	orderconsumer "github.com/marginalfriend/my-garage/internal/order/interfaces/consumer"
	orderhttp "github.com/marginalfriend/my-garage/internal/order/interfaces/http"
	appconfig "github.com/marginalfriend/my-garage/pkg/config"
	appmiddleware "github.com/marginalfriend/my-garage/pkg/middleware"
)

var configPath = flag.String("config", "configs/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. Config
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	appCfg, err := appconfig.LoadApp(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load app config: %v", err))
	}

	// 2. Logger
	logCfg := &logging.Config{Service: cfg.Server.Name, Level: cfg.Log.Level}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. Metrics
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port)
	}

	// 4. Infrastructure
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(
			&authdomain.Account{}, &authdomain.Role{}, &authdomain.Customer{},
			&catalogdomain.Category{}, &catalogdomain.Product{}, &catalogdomain.Image{},
			&cartdomain.CartEntry{},
			&orderdomain.Order{}, &orderdomain.OrderLine{},
			&outbox.Message{},
		); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	fileStore, err := storage.NewLocalStore(appCfg.Upload.Dir, appCfg.Upload.BaseURL)
	if err != nil {
		slog.Error("failed to init upload store", "error", err)
		os.Exit(1)
	}

	// 5. Kafka & Outbox
	kafkaProducer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, metricsImpl)
	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return kafkaProducer.PublishToTopic(ctx, topic, []byte(key), payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)
	publisher := outbox.NewPublisher(outboxMgr)

	// 6. Repositories
	authRepo := authmysql.NewAuthRepository(db.RawDB())
	catalogRepo := catalogmysql.NewCatalogRepository(db.RawDB())
	cartRepo := cartmysql.NewCartRepository(db.RawDB())
	orderRepo := ordermysql.NewOrderRepository(db.RawDB())

	// 7. Application Services
	tokenSvc := authapp.NewTokenService(appCfg.JWT.Secret, time.Duration(appCfg.JWT.ExpireMinutes)*time.Minute)
	authSvc := authapp.NewAuthService(authRepo, authRepo, tokenSvc)
	catalogSvc := catalogapp.NewCatalogService(catalogRepo, catalogRepo, fileStore)
	cartSvc := cartapp.NewCartService(cartRepo, catalogRepo, authSvc)
	orderSvc := orderapp.NewOrderService(orderRepo, catalogRepo, cartRepo, authSvc, publisher, appCfg.Inventory.LowStockThreshold)

	// 8. Consumers
	notificationHandler := orderconsumer.NewNotificationHandler(logger.Logger)
	topics := []string{
		orderdomain.OrderPlacedEventType,
		orderdomain.OrderCancelledEventType,
		orderdomain.PaymentStatusChangedEventType,
		orderdomain.LowStockDetectedEventType,
	}
	consumers := make([]*kafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		consumerCfg := cfg.MessageQueue.Kafka
		consumerCfg.Topic = topic
		if consumerCfg.GroupID == "" {
			consumerCfg.GroupID = "mygarage-notification-group"
		}
		consumer := kafka.NewConsumer(&consumerCfg, logger, metricsImpl)
		consumer.Start(context.Background(), 3, notificationHandler.Handle)
		consumers = append(consumers, consumer)
	}

	// 9. Interfaces
	if cfg.Server.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS())
	r.Static(appCfg.Upload.BaseURL, appCfg.Upload.Dir)

	authMiddleware := appmiddleware.Authenticated(tokenSvc)
	api := r.Group("/api")
	authhttp.NewAuthHandler(authSvc).RegisterRoutes(api)
	cataloghttp.NewCatalogHandler(catalogSvc, authMiddleware).RegisterRoutes(api)
	carthttp.NewCartHandler(cartSvc, authMiddleware).RegisterRoutes(api)
	orderhttp.NewOrderHandler(orderSvc, authMiddleware).RegisterRoutes(api)

	// 10. Start
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
		server := &http.Server{Addr: addr, Handler: r}
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down server...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		for _, c := range consumers {
			if c != nil {
				_ = c.Close()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
