// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnastasiaTimoshchuk/library/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なDB疎通確認の操作。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     middleware.HTTPMetricsRecorder

	// ヘルスチェック・メトリクス公開
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// ページング設定
	Paging PagingConfig

	// ドメインサービス
	AuthorService AuthorServiceInterface
	ReaderService ReaderServiceInterface
	BookService   BookServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → Metrics → RateLimit(General)
//
// /healthと/metricsはレート制限の外に配置する。
// 登録・削除・貸出・返却は更新系レート制限を追加で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))

	authorHandler := NewAuthorHandler(deps.AuthorService, deps.Paging)
	readerHandler := NewReaderHandler(deps.ReaderService, deps.Paging)
	bookHandler := NewBookHandler(deps.BookService, deps.Paging)

	// --- 運用系ルート（レート制限の外） ---

	r.Get("/health", healthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		mutation := deps.RateLimiter.MutationMiddleware()

		// 著者管理
		r.Route("/library-api/authors", func(r chi.Router) {
			r.With(mutation).Post("/", authorHandler.CreateAuthor)
			r.Get("/", authorHandler.ListAuthors)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", authorHandler.GetAuthor)
				r.With(mutation).Delete("/", authorHandler.DeleteAuthor)
			})
		})

		// 読者管理
		r.Route("/library-api/readers", func(r chi.Router) {
			r.With(mutation).Post("/", readerHandler.CreateReader)
			r.Get("/", readerHandler.ListReaders)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", readerHandler.GetReader)
				r.With(mutation).Delete("/", readerHandler.DeleteReader)
			})
		})

		// 蔵書管理・貸出・返却
		r.Route("/library-api/books", func(r chi.Router) {
			r.With(mutation).Post("/", bookHandler.CreateBook)
			r.Get("/", bookHandler.ListBooks)

			// 貸出・返却（readerId/bookIdはクエリパラメータ）
			r.With(mutation).Post("/borrow", bookHandler.BorrowBook)
			r.With(mutation).Post("/return", bookHandler.ReturnBook)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", bookHandler.GetBook)
				r.With(mutation).Delete("/", bookHandler.DeleteBook)
			})
		})
	})

	return r
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check: database unreachable", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
