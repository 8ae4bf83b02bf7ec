package ui

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnastasiaTimoshchuk/library/internal/middleware"
)

// NewRouter は図書館Web UIのルーターを構築する。
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())

	// トップページは蔵書一覧へ誘導する。
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/library/books/list", http.StatusSeeOther)
	})

	r.Route("/library/authors", func(r chi.Router) {
		r.Get("/list", h.AuthorsList)
		r.Get("/create", h.NewAuthorForm)
		r.Post("/create", h.CreateAuthor)
		r.Get("/{authorId}", h.AuthorDetail)
		r.Post("/{authorId}/delete", h.DeleteAuthor)
	})

	r.Route("/library/readers", func(r chi.Router) {
		r.Get("/list", h.ReadersList)
		r.Get("/create", h.NewReaderForm)
		r.Post("/create", h.CreateReader)
		r.Get("/{readerId}", h.ReaderDetail)
		r.Post("/{readerId}/delete", h.DeleteReader)
	})

	r.Route("/library/books", func(r chi.Router) {
		r.Get("/list", h.BooksList)
		r.Get("/create", h.NewBookForm)
		r.Post("/create", h.CreateBook)
		r.Post("/borrow", h.BorrowBook)
		r.Post("/return", h.ReturnBook)
		r.Get("/{bookId}", h.BookDetail)
		r.Post("/{bookId}/delete", h.DeleteBook)
	})

	return r
}
