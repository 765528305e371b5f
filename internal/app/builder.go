package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/davay42/sw-gallery/internal/config"
	"github.com/davay42/sw-gallery/internal/domain"
	"github.com/davay42/sw-gallery/internal/infra/store/memory"
	"github.com/davay42/sw-gallery/internal/infra/store/postgres"
	redisx "github.com/davay42/sw-gallery/internal/infra/store/redis"
	s3store "github.com/davay42/sw-gallery/internal/infra/store/s3"
	"github.com/davay42/sw-gallery/internal/transport/intercept"
)

type App struct {
	config    *config.Config
	log       *log.Logger
	scope     domain.Scope
	store     domain.BlobStore
	transport *intercept.Transport
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[gallery] ", log.LstdFlags)
	storeLog := log.New(base.Writer(), base.Prefix()+"[store] ", base.Flags())
	icLog := log.New(base.Writer(), base.Prefix()+"[intercept] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	scope, err := domain.ParseScope(cfg.AppScope)
	if err != nil {
		return nil, fmt.Errorf("failed parse scope: %w", err)
	}

	base.Printf("init store backend %q", cfg.StoreBackend)
	store, err := buildStore(ctx, cfg, storeLog)
	if err != nil {
		return nil, fmt.Errorf("failed init store: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}
	base.Println("store is initialized")

	t := intercept.New(scope, store,
		intercept.WithLogger(icLog),
		intercept.WithFetchTimeout(time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
	)
	base.Printf("interceptor is ready, scope %s", scope)

	return &App{
		config:    cfg,
		log:       base,
		scope:     scope,
		store:     store,
		transport: t,
	}, nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (domain.BlobStore, error) {
	switch cfg.StoreBackend {
	case "", "memory":
		return memory.New(), nil
	case "s3":
		return s3store.New(ctx, s3store.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		}, logger)
	case "redis":
		return redisx.New(redisx.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		}, logger), nil
	case "postgres":
		return postgres.New(ctx, logger, cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Client возвращает HTTP-клиента с установленным перехватчиком: запросы
// внутри scope отвечаются локально, остальные уходят в обычную сеть.
func (a *App) Client() *http.Client {
	return &http.Client{Transport: a.transport}
}

func (a *App) Scope() domain.Scope { return a.scope }

func (a *App) Close() {
	a.log.Println("closing store...")
	a.store.Close()
}
