// Package app はアプリケーションの起動とワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/AnastasiaTimoshchuk/library/internal/author"
	"github.com/AnastasiaTimoshchuk/library/internal/book"
	"github.com/AnastasiaTimoshchuk/library/internal/config"
	"github.com/AnastasiaTimoshchuk/library/internal/database"
	"github.com/AnastasiaTimoshchuk/library/internal/handler"
	"github.com/AnastasiaTimoshchuk/library/internal/library"
	"github.com/AnastasiaTimoshchuk/library/internal/logger"
	"github.com/AnastasiaTimoshchuk/library/internal/metrics"
	"github.com/AnastasiaTimoshchuk/library/internal/middleware"
	"github.com/AnastasiaTimoshchuk/library/internal/reader"
	"github.com/AnastasiaTimoshchuk/library/internal/repository"
	"github.com/AnastasiaTimoshchuk/library/internal/ui"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("timezone", cfg.Timezone),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandUI:
		return runUI(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	authorRepo := repository.NewPostgresAuthorRepo(db)
	readerRepo := repository.NewPostgresReaderRepo(db)
	bookRepo := repository.NewPostgresBookRepo(db)
	txManager := repository.NewTxManager(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ドメインサービスの初期化
	authorService := author.NewAuthorService(authorRepo, bookRepo)
	readerService := reader.NewReaderService(readerRepo, bookRepo)
	bookService := book.NewBookService(bookRepo, cfg.Location)

	// 5. 業務オーケストレータの初期化
	// 全更新系操作に対してトランザクション境界を提供する
	libraryService := library.NewLibraryService(
		txManager, authorService, readerService, bookService, collector,
	)

	// 6. レート制限の初期化（configはreq/min単位、limiterはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.MutationRate = rate.Limit(float64(cfg.RateLimitMutation) / 60.0)
	rateLimiterCfg.MutationBurst = cfg.RateLimitMutation
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:      slog.Default(),
		RateLimiter: rateLimiter,
		Metrics:     collector,

		HealthChecker:  db,
		MetricsHandler: metrics.SetupMetricsRoute(registry),

		Paging: handler.PagingConfig{
			DefaultSize: cfg.DefaultPageSize,
			MaxSize:     cfg.MaxPageSize,
		},

		AuthorService: libraryService,
		ReaderService: libraryService,
		BookService:   libraryService,
	}

	router := handler.NewRouter(deps)

	return serveWithGracefulShutdown("API server", ":"+cfg.ServerPort, router)
}

// runUI はWeb UIサーバーモードで起動する。
// UIは自前の永続化を持たず、全操作をAPIサーバーへ転送する。
func runUI(cfg *config.Config) error {
	apiClient := ui.NewClient(cfg.LibraryAPIURL)

	uiHandler, err := ui.NewHandler(apiClient, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to build UI handler: %w", err)
	}

	router := ui.NewRouter(uiHandler, slog.Default())

	slog.Info("UI server configured",
		slog.String("api_url", cfg.LibraryAPIURL),
	)

	return serveWithGracefulShutdown("UI server", ":"+cfg.UIPort, router)
}

// serveWithGracefulShutdown はHTTPサーバーを起動し、
// SIGINT/SIGTERM受信時にグレースフルシャットダウンを行う。
func serveWithGracefulShutdown(name, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info(name+" starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down " + name + "...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info(name + " stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
