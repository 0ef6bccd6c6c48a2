// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"green-genie/internal/cache"
	"green-genie/internal/common/aws"
	"green-genie/internal/common/config"
	"green-genie/internal/common/database"
	"green-genie/internal/common/logger"
	"green-genie/internal/common/observability"
	"green-genie/internal/dataset"
	"green-genie/internal/history"
	"green-genie/internal/llm"
	"green-genie/internal/notify"
	"green-genie/internal/recommend"
	"green-genie/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting green-genie", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// AWS clients.
	s3Client, err := aws.NewS3Client(ctx, cfg.AWS.Region)
	if err != nil {
		log.Error("failed to create S3 client", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	bedrockClient, err := aws.NewBedrockClient(ctx, cfg.AWS.Region)
	if err != nil {
		log.Error("failed to create Bedrock client", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Datasets: S3 with local CSV fallback, loaded once at startup.
	datasets := dataset.NewService(s3Client, cfg.Datasets, cfg.AWS.S3.Bucket,
		cfg.AWS.S3.Timeout, cfg.Recommender.Sectors, log)
	if err := retryWithBackoff(ctx, 3, func() error {
		return datasets.Refresh(ctx)
	}); err != nil {
		log.Error("initial dataset load failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	engine := recommend.NewEngine(cfg.Recommender.TopN, cfg.Recommender.SampleSeed)
	generator := llm.NewGenerator(llm.Config{
		ModelID:     cfg.AWS.Bedrock.ModelID,
		MaxTokens:   cfg.AWS.Bedrock.MaxTokens,
		Temperature: cfg.AWS.Bedrock.Temperature,
		Timeout:     config.GetDuration(cfg.AWS.Bedrock.Timeout),
		MaxRetries:  cfg.AWS.Bedrock.MaxRetries,
	}, bedrockClient, log)

	// Optional collaborators. Each one degrades to disabled when its
	// backend is unreachable, keeping the core flow available.
	var responseCache server.ResponseCache
	var redisClient *database.RedisClient
	if cfg.Cache.Enabled {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			log.Warn("redis unavailable, response cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			redisClient = rc
			defer redisClient.Close()
			responseCache = cache.NewResponseCache(redisClient.GetClient(),
				config.GetDuration(cfg.Cache.ResponseTTL), log)
		}
	}

	var store server.HistoryStore
	pgClient, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.Warn("postgres unavailable, history disabled", map[string]interface{}{"error": err.Error()})
	} else {
		defer pgClient.Close()
		pgStore := history.NewStore(pgClient.GetDB(), log)
		if err := retryWithBackoff(ctx, 3, func() error {
			return pgStore.EnsureSchema(ctx)
		}); err != nil {
			log.Warn("history schema setup failed, history disabled", map[string]interface{}{"error": err.Error()})
		} else {
			store = pgStore
		}
	}

	var archive server.HistoryArchive
	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		log.Warn("elasticsearch unavailable, history search disabled", map[string]interface{}{"error": err.Error()})
	} else {
		archive = history.NewArchive(esClient.Client, cfg.Database.Elasticsearch.Index, log)
	}

	var notifier server.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.Alerts.Enabled {
		sesClient, sesErr := aws.NewSESClient(ctx, cfg.AWS.Region)
		snsClient, snsErr := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if sesErr != nil || snsErr != nil {
			log.Warn("notification clients unavailable", map[string]interface{}{
				"ses_error": errString(sesErr),
				"sns_error": errString(snsErr),
			})
		} else {
			notifier = notify.NewNotifier(sesClient, snsClient,
				cfg.Notifications.Email.FromEmail, cfg.Notifications.Alerts.TopicARN, log)
		}
	}

	handler := server.NewHandler(datasets, engine, generator, responseCache,
		store, archive, notifier, cfg.AWS.Bedrock.ModelID, log)
	if pgClient != nil {
		handler.RegisterPinger("postgres", pgClient.Ping)
	}
	if redisClient != nil {
		handler.RegisterPinger("redis", redisClient.Ping)
	}
	router := server.NewRouter(handler, log, obs)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	log.Info("server stopped", nil)
}

// retryWithBackoff retries fn with exponential backoff between attempts.
func retryWithBackoff(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(time.Duration(500*(1<<i)) * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
