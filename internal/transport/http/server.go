package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/iammohit64/wrap-up/internal/cache"
	"github.com/iammohit64/wrap-up/internal/config"
	"github.com/iammohit64/wrap-up/internal/contentstore"
	"github.com/iammohit64/wrap-up/internal/database"
	"github.com/iammohit64/wrap-up/internal/handler"
	"github.com/iammohit64/wrap-up/internal/ledger"
	"github.com/iammohit64/wrap-up/internal/queue"
	appredis "github.com/iammohit64/wrap-up/internal/redis"
	"github.com/iammohit64/wrap-up/internal/repository"
	"github.com/iammohit64/wrap-up/internal/service"
	"github.com/iammohit64/wrap-up/internal/worker"
)

// Run wires the application together and serves until interrupted.
func Run() error {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	// 3. Connect to Redis
	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		return err
	}
	log.Println("Connected to Redis successfully")

	// 4. Content-addressed storage
	store, err := newContentStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// 5. Repositories
	commentRepo := repository.NewCommentRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 6. Caches and services
	leaderboard := cache.NewLeaderboard(redisClient.Client)

	identityService := service.NewIdentityService(userRepo)
	commentService := service.NewCommentService(commentRepo, articleRepo, identityService, db)
	articleService := service.NewArticleService(articleRepo, identityService)
	stagingService := service.NewStagingService(commentService, articleRepo, store)
	syncService := service.NewSyncService(commentRepo, articleRepo, userRepo, leaderboard)
	leaderboardService := service.NewLeaderboardService(userRepo, leaderboard)

	// 7. Ledger confirmer (optional: requires an RPC endpoint)
	var confirmer *ledger.Confirmer
	if cfg.EVMRPCURL != "" {
		evmClient, err := ledger.DialEVMClient(cfg.EVMRPCURL)
		if err != nil {
			return fmt.Errorf("failed to dial ledger rpc: %w", err)
		}
		defer evmClient.Close()
		confirmer = ledger.NewConfirmer(evmClient, common.HexToAddress(cfg.ContractAddress), cfg.LedgerConfirmations)
		log.Printf("Ledger confirmer enabled: contract=%s confirmations=%d", cfg.ContractAddress, cfg.LedgerConfirmations)
	} else {
		log.Println("EVM_RPC_URL not set, /sync/confirm disabled")
	}

	// 8. Chain-event queue and reconciliation workers
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	workerManager := worker.NewManager(consumer, worker.NewHandler(syncService), worker.DefaultManagerConfig())
	if err := workerManager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer workerManager.Stop()

	// 9. HTTP server
	router := NewRouter(RouterConfig{
		CommentHandler:     handler.NewCommentHandler(commentService, stagingService),
		ArticleHandler:     handler.NewArticleHandler(articleService, commentService, stagingService),
		SyncHandler:        handler.NewSyncHandler(syncService, confirmer, publisher),
		LeaderboardHandler: handler.NewLeaderboardHandler(leaderboardService),
		SessionHandler:     handler.NewSessionHandler(cfg.SessionSecret),
		SessionSecret:      cfg.SessionSecret,
	})

	server := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func newContentStore(ctx context.Context, cfg *config.Config) (contentstore.Store, error) {
	switch cfg.ContentStoreBackend {
	case "r2":
		store, err := contentstore.NewR2Store(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create R2 content store: %w", err)
		}
		log.Printf("Content store: R2 bucket=%s", cfg.R2BucketName)
		return store, nil
	case "bolt":
		store, err := contentstore.OpenBolt(cfg.ContentStorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open content store: %w", err)
		}
		log.Printf("Content store: bolt path=%s", cfg.ContentStorePath)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown content store backend %q", cfg.ContentStoreBackend)
	}
}
