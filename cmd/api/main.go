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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uniformhub/gateway/api"
	"github.com/uniformhub/gateway/api/controllers"
	"github.com/uniformhub/gateway/api/routes"
	"github.com/uniformhub/gateway/internal/auth"
	"github.com/uniformhub/gateway/internal/constraints"
	"github.com/uniformhub/gateway/internal/designrequest"
	"github.com/uniformhub/gateway/internal/fabrics"
	"github.com/uniformhub/gateway/internal/feedback"
	"github.com/uniformhub/gateway/internal/media"
	"github.com/uniformhub/gateway/internal/milestones"
	"github.com/uniformhub/gateway/internal/notifications"
	"github.com/uniformhub/gateway/pkg/backend"
	"github.com/uniformhub/gateway/pkg/cloudinary"
	"github.com/uniformhub/gateway/pkg/config"
	"github.com/uniformhub/gateway/pkg/firestore"
	"github.com/uniformhub/gateway/pkg/google"
	"github.com/uniformhub/gateway/pkg/instance"
	"github.com/uniformhub/gateway/pkg/logger"
	"github.com/uniformhub/gateway/pkg/metrics"
	"github.com/uniformhub/gateway/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	firestoreClient, err := firestore.New(ctx, cfg.GCP, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := firestoreClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing firestore", err)
		}
	}()

	backendClient, err := backend.NewClient(cfg.Backend)
	if err != nil {
		return err
	}
	imageHost, err := cloudinary.NewClient(cfg.Cloudinary)
	if err != nil {
		return err
	}
	googleClient := google.NewClient(cfg.Google)
	gatewayMetrics := metrics.NewGateway(prometheus.DefaultRegisterer)

	constraintsService, err := constraints.NewService(backendClient, logg)
	if err != nil {
		return err
	}
	pipeline, err := media.NewPipeline(imageHost, constraintsService, gatewayMetrics, logg)
	if err != nil {
		return err
	}

	draftStore, err := designrequest.NewRedisStore(redisClient, cfg.Drafts.TTL)
	if err != nil {
		return err
	}
	draftService, err := designrequest.NewService(designrequest.Deps{
		Store:   draftStore,
		Locker:  redisClient,
		Uploads: pipeline,
		Backend: backendClient,
		Metrics: gatewayMetrics,
		Logger:  logg,
		Config:  cfg.Submission,
	})
	if err != nil {
		return err
	}

	milestoneService, err := milestones.NewService(backendClient, pipeline, gatewayMetrics, logg, cfg.Submission.FetchLimit)
	if err != nil {
		return err
	}
	feedbackService, err := feedback.NewService(backendClient, pipeline, logg)
	if err != nil {
		return err
	}
	fabricService, err := fabrics.NewService(backendClient, redisClient, cfg.Drafts.FabricsCacheTTL, logg)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Google:    googleClient,
		Backend:   backendClient,
		JWTConfig: cfg.JWT,
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	notificationService, err := notifications.NewService(notifications.NewRepository(firestoreClient))
	if err != nil {
		return err
	}

	router := routes.NewRouter(cfg, logg, routes.Services{
		Auth:          authService,
		Constraints:   constraintsService,
		Fabrics:       fabricService,
		Drafts:        draftService,
		Milestones:    milestoneService,
		Notifications: notificationService,
		Feedback:      feedbackService,
		RateStore:     redisClient,
		Pingers: map[string]controllers.Pinger{
			"redis":     redisClient,
			"firestore": firestoreClient,
		},
		Metrics: promhttp.Handler(),
	})

	server := api.NewServer(cfg, router)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting gateway")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
