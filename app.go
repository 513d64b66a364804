package main

import (
	"context"
	"fmt"
	"log/slog"

	"artisanhub/internal/config"
	"artisanhub/internal/handlers"
	"artisanhub/internal/media"
	"artisanhub/internal/middleware"
	"artisanhub/internal/repositories"
	"artisanhub/internal/services"
	"artisanhub/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
)

const appVersion = "1.0.0"

type stores struct {
	products repositories.ProductRepository
	artisans repositories.ArtisanRepository
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	close    func()
}

// openStores selects the JSON file store or a GORM database by STORE_DRIVER.
func openStores(cfg config.Config) (*stores, error) {
	if cfg.StoreDriver == config.DriverJSON {
		products, err := repositories.NewJSONProductRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		artisans, err := repositories.NewJSONArtisanRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		orders, err := repositories.NewJSONOrderRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		users, err := repositories.NewJSONUserRepository(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return &stores{products: products, artisans: artisans, orders: orders, users: users, close: func() {}}, nil
	}

	db, err := repositories.OpenDatabase(cfg.StoreDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return &stores{
		products: repositories.NewGORMProductRepository(db),
		artisans: repositories.NewGORMArtisanRepository(db),
		orders:   repositories.NewGORMOrderRepository(db),
		users:    repositories.NewGORMUserRepository(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		},
	}, nil
}

// NewApp wires stores, optional brokers, the media service and every handler.
// The returned cleanup releases them in reverse order.
func NewApp(ctx context.Context, cfg config.Config, log *slog.Logger, mediaOpts ...media.Option) (*fiber.App, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	st, err := openStores(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	cleanups = append(cleanups, st.close)
	log.Info("store ready", "driver", cfg.StoreDriver)

	// RabbitMQ and Redis are optional; without them events are skipped and
	// descriptions are not cached.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled", "error", err)
		} else {
			publisher = mq
			cleanups = append(cleanups, func() {
				if err := mq.Close(); err != nil {
					log.Warn("rabbitmq close failed", "error", err)
				}
			})
			if err := mq.ConsumeEvents(eventLogger(log)); err != nil {
				log.Warn("failed to start event consumer", "error", err)
			}
		}
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, description cache disabled", "addr", cfg.RedisAddr, "error", err)
			rdb.Close()
		} else {
			mediaOpts = append([]media.Option{media.WithDescriptionCache(rdb, cfg.DescriptionTTL)}, mediaOpts...)
			cleanups = append(cleanups, func() { rdb.Close() })
		}
	}

	mediaService, err := media.Open(ctx, cfg.Media(), log, mediaOpts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { mediaService.Close() })
	log.Info("media ready", "storage", mediaService.StorageType(), "ai_enabled", mediaService.AIEnabled())

	productService := services.NewProductService(st.products, st.artisans, publisher, cfg.LowStockThreshold, log)
	artisanService := services.NewArtisanService(st.artisans, publisher, log)
	orderService := services.NewOrderService(st.orders, st.products, st.artisans, publisher, cfg.LowStockThreshold, log)
	authService := services.NewAuthService(st.users, cfg.JWTSecret, cfg.TokenTTL, log)
	dashboardService := services.NewDashboardService(productService, artisanService)

	app := fiber.New(fiber.Config{
		AppName:   "artisanhub " + appVersion,
		BodyLimit: cfg.MaxUploadBytes,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Static("/uploads", cfg.UploadRoot)

	api := app.Group("/api")
	auth := middleware.AuthRequired(authService, log)

	handlers.NewAuthHandler(authService, log).RegisterRoutes(api)
	handlers.NewUtilityHandler(dashboardService, productService, artisanService, mediaService, appVersion, log).RegisterRoutes(api, auth)
	handlers.NewArtisanHandler(artisanService, productService, mediaService, log).RegisterRoutes(api, auth)
	handlers.NewProductHandler(productService, artisanService, mediaService, log).RegisterRoutes(api, auth)
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(api, auth)

	return app, cleanup, nil
}

func eventLogger(log *slog.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		log.Info("marketplace event", "routing_key", msg.RoutingKey, "body", string(msg.Body))
		return nil
	}
}
