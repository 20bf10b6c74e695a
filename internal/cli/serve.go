package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	api "github.com/ilmhub/quizhub/internal/api/http"
	"github.com/ilmhub/quizhub/internal/auth"
	"github.com/ilmhub/quizhub/internal/config"
	"github.com/ilmhub/quizhub/internal/db"
	"github.com/ilmhub/quizhub/internal/eventlog"
	"github.com/ilmhub/quizhub/internal/leaderboard"
	"github.com/ilmhub/quizhub/internal/materials"
	"github.com/ilmhub/quizhub/internal/quiz"
	"github.com/ilmhub/quizhub/internal/scoring"
	"github.com/ilmhub/quizhub/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()

	database, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	events := eventlog.NewRepo(database)
	authSvc := auth.NewService(database, auth.NewTokenService(cfg.JWTSecret))
	quizStore := quiz.NewSQLStore(database)
	quizSvc := quiz.NewService(quizStore, scoring.NewDefaultGrader(), events)
	lbSvc := leaderboard.NewService(leaderboard.NewAggregator(quizStore), redisClient, cfg.LeaderboardTTL)
	quizSvc.OnSubmission = lbSvc.Invalidate
	matSvc := materials.NewService(materials.NewSQLStore(database), blobs, moduleChecker{quizStore})

	handler := api.NewRouter(api.Deps{
		DB:          database,
		Auth:        authSvc,
		Quiz:        quizSvc,
		QuizStore:   quizStore,
		Leaderboard: lbSvc,
		Materials:   matSvc,
		Events:      events,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("quizhub listening on %s (db=%s, blob=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.BlobDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Println("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newBlobStore(cfg config.Config) (storage.BlobStore, error) {
	switch cfg.BlobDriver {
	case "oss":
		return storage.NewOSSStore(storage.OSSConfig{
			Endpoint:   cfg.OSSEndpoint,
			AccessKey:  cfg.OSSAccessKey,
			SecretKey:  cfg.OSSSecretKey,
			Bucket:     cfg.OSSBucket,
			PublicBase: cfg.OSSPublicBase,
		})
	default:
		return storage.NewFSStore(cfg.BlobBasePath)
	}
}

// moduleChecker lets the materials service verify module ids without
// depending on the quiz package's store type.
type moduleChecker struct {
	store quiz.Store
}

func (m moduleChecker) ModuleExists(ctx context.Context, id string) error {
	_, err := m.store.GetModule(ctx, id)
	return err
}
