package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/danielcastellanos/peptidehub-backend/api/controllers"
	"github.com/danielcastellanos/peptidehub-backend/api/routes"
	cartsvc "github.com/danielcastellanos/peptidehub-backend/internal/cart"
	"github.com/danielcastellanos/peptidehub-backend/internal/groupbuy"
	mediasvc "github.com/danielcastellanos/peptidehub-backend/internal/media"
	ordersvc "github.com/danielcastellanos/peptidehub-backend/internal/orders"
	"github.com/danielcastellanos/peptidehub-backend/internal/products"
	"github.com/danielcastellanos/peptidehub-backend/internal/profiles"
	"github.com/danielcastellanos/peptidehub-backend/internal/subgroups"
	"github.com/danielcastellanos/peptidehub-backend/pkg/config"
	"github.com/danielcastellanos/peptidehub-backend/pkg/db"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	"github.com/danielcastellanos/peptidehub-backend/pkg/metrics"
	"github.com/danielcastellanos/peptidehub-backend/pkg/migrate"
	pkgredis "github.com/danielcastellanos/peptidehub-backend/pkg/redis"
	"github.com/danielcastellanos/peptidehub-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	redisClient, err := pkgredis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		return multierr.Combine(err, redisClient.Close(), dbClient.Close())
	}

	profileSvc, err := profiles.NewService(profiles.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	productSvc, err := products.NewService(products.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	cartService, err := cartsvc.NewService(redisClient, cfg.Cart, logg)
	if err != nil {
		return err
	}
	groupBuySvc, err := groupbuy.NewService(groupbuy.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		return err
	}
	orderSvc, err := ordersvc.NewService(ordersvc.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	subGroupSvc, err := subgroups.NewService(subgroups.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}
	mediaService, err := mediasvc.NewService(gcsClient, cfg.Media, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		HTTPMetrics:    metrics.NewHTTPMetrics(registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Pingers: map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
			"gcs":      gcsClient,
		},
		KV:        redisClient,
		Profiles:  profileSvc,
		Products:  productSvc,
		Cart:      cartService,
		GroupBuy:  groupBuySvc,
		Orders:    orderSvc,
		SubGroups: subGroupSvc,
		Media:     mediaService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		return multierr.Combine(err, redisClient.Close(), dbClient.Close())
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return multierr.Combine(
		server.Shutdown(shutdownCtx),
		<-serveErr,
		redisClient.Close(),
		dbClient.Close(),
	)
}
