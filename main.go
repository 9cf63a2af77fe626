package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"katalog/internal/client"
	"katalog/internal/config"
	"katalog/internal/imagehost"
	"katalog/internal/repositories"
	"katalog/internal/server"
	"katalog/internal/services"
	"katalog/internal/web"
	"katalog/pkg/rabbitmq"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)
	if cfg.EnvFileErr != nil {
		slog.Debug("no .env file loaded", "error", cfg.EnvFileErr)
	} else {
		slog.Info("loaded configuration from .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Product Store ---
	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Image Host ---
	host, uploadDir, err := openImageHost(cfg)
	if err != nil {
		return err
	}

	// --- Product events (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			return err
		}
		defer mqClient.Close()
		events = mqClient
	} else {
		slog.Info("RABBITMQ_URL not set, product events disabled")
	}

	// --- Services and HTTP ---
	productService := services.NewProductService(repo, host, cfg.ImageFolder, events)
	app := server.New(server.Options{
		Service:     productService,
		Pages:       web.NewHandler(client.New(cfg.APIBaseURL), cfg.WebPageSize),
		FrontendURL: cfg.FrontendURL,
		UploadDir:   uploadDir,
		AccessLog:   true,
	})

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr(), "store", cfg.StoreDriver, "image_host", cfg.ImageHost)
		listenErr <- app.Listen(cfg.Addr())
	}()

	// Wait for a signal or a listener failure, then shut down gracefully.
	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("error during fiber shutdown", "error", err)
	}
	slog.Info("server gracefully stopped")
	return nil
}

func setupLogging(cfg *config.Config) {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore connects the configured product store and returns a function
// releasing it.
func openStore(ctx context.Context, cfg *config.Config) (repositories.ProductRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		mongoClient, err := repositories.ConnectMongo(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		coll := mongoClient.Database(cfg.MongoDatabase).Collection(repositories.ProductCollection)
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoClient.Disconnect(disconnectCtx); err != nil {
				slog.Error("failed to disconnect from MongoDB", "error", err)
			}
		}
		slog.Info("connected to MongoDB", "database", cfg.MongoDatabase)
		return repositories.NewMongoProductRepository(coll), closeFn, nil

	case config.DriverPostgres, config.DriverSQLite:
		dialector := sqlite.Open(cfg.DatabaseDSN)
		if cfg.StoreDriver == config.DriverPostgres {
			dialector = postgres.Open(cfg.DatabaseDSN)
		}
		db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewGORMProductRepository(db)
		if err := repo.Migrate(); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		slog.Info("connected to database", "driver", cfg.StoreDriver)
		return repo, func() { sqlDB.Close() }, nil

	case config.DriverMemory:
		slog.Warn("using in-memory product store, data is lost on restart")
		return repositories.NewMemoryProductRepository(), func() {}, nil
	}
	return nil, nil, errors.New("unknown store driver " + cfg.StoreDriver)
}

// openImageHost builds the configured image host. The returned directory is
// non-empty when uploads must be served locally.
func openImageHost(cfg *config.Config) (imagehost.Host, string, error) {
	if cfg.ImageHost == config.HostCloudinary {
		host, err := imagehost.NewCloudinaryHost(imagehost.CloudinaryConfig{
			URL:       cfg.CloudinaryURL,
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		})
		return host, "", err
	}
	host, err := imagehost.NewLocalHost(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	return host, host.Dir(), nil
}
