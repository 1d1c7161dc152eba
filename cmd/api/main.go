package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/infra/kafka"
	"storefront/internal/infra/memory"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/obs"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	// .envは任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	obs.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		obs.Logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	tx, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	//Redis（任意）
	var orderCache usecase.OrderCache
	if cfg.RedisAddr != "" {
		rdb := cache.NewClient(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			obs.Logger.Warn("redis unavailable, continuing without cache", "addr", cfg.RedisAddr, "err", err)
		} else {
			orderCache = cache.NewOrderCache(rdb)
		}
	}

	//Kafka（任意）
	var events usecase.OrderEventPublisher
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, 1024)
		producer.Start(context.Background())
		events = kafka.NewOrderPublisher(producer)
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(tx)
	cartUC := usecase.NewCartUsecase(tx)
	orderUC := usecase.NewOrderUsecase(tx, orderCache, events)
	wishlistUC := usecase.NewWishlistUsecase(tx)

	//Handler生成
	e := server.New(cfg, server.Handlers{
		Products: handler.NewProductHandler(productUC),
		Cart:     handler.NewCartHandler(cartUC),
		Orders:   handler.NewOrderHandler(orderUC),
		Wishlist: handler.NewWishlistHandler(wishlistUC),
	})

	err = server.Run(ctx, e, cfg.Addr())

	// HTTPが止まってからイベントを流し切る
	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
	return err
}

func openStore(cfg config.Config) (repo.TransactionManager, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		st := memory.New()
		memory.SeedDemo(st)
		obs.Logger.Info("using in-memory store with demo data")
		return st, func() {}, nil
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	return infraRepo.NewTxManagerGorm(gormDB), func() { _ = sqlDB.Close() }, nil
}
