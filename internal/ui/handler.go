package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates は各ページが使うテンプレートファイル名の対応表。
var pageTemplates = map[string]string{
	"authors_list":  "templates/authors_list.html",
	"author_form":   "templates/author_form.html",
	"author_detail": "templates/author_detail.html",
	"readers_list":  "templates/readers_list.html",
	"reader_form":   "templates/reader_form.html",
	"reader_detail": "templates/reader_detail.html",
	"books_list":    "templates/books_list.html",
	"book_form":     "templates/book_form.html",
	"book_detail":   "templates/book_detail.html",
}

// listPageSize は一覧ページの1ページあたりの件数。
const listPageSize = 10

// dropdownFetchSize はフォームの選択肢取得に使うページサイズ。
const dropdownFetchSize = 100

// LibraryAPI はUIが必要とする図書館API操作。
type LibraryAPI interface {
	ListAuthors(ctx context.Context, page, size int) (*AuthorPageDTO, error)
	CreateAuthor(ctx context.Context, firstName, lastName, middleName, birthDate string) (*AuthorDTO, error)
	GetAuthor(ctx context.Context, id int) (*AuthorDTO, error)
	DeleteAuthor(ctx context.Context, id int) error

	ListReaders(ctx context.Context, page, size int) (*ReaderPageDTO, error)
	CreateReader(ctx context.Context, firstName, lastName, middleName, email string) (*ReaderDTO, error)
	GetReader(ctx context.Context, id int) (*ReaderDTO, error)
	DeleteReader(ctx context.Context, id int) error

	ListBooks(ctx context.Context, page, size int) (*BookPageDTO, error)
	CreateBook(ctx context.Context, title string, authorID int) (*BookDTO, error)
	GetBook(ctx context.Context, id int) (*BookDTO, error)
	DeleteBook(ctx context.Context, id int) error
	BorrowBook(ctx context.Context, readerID, bookID int) (*BookDTO, error)
	ReturnBook(ctx context.Context, readerID, bookID int) (*BookDTO, error)
}

// Handler は図書館Web UIのHTTPハンドラー。
type Handler struct {
	api       LibraryAPI
	logger    *slog.Logger
	templates map[string]*template.Template
}

// NewHandler はUIハンドラーを生成する。
// テンプレートの解析に失敗した場合はエラーを返す。
func NewHandler(api LibraryAPI, logger *slog.Logger) (*Handler, error) {
	templates := make(map[string]*template.Template, len(pageTemplates))
	for name, file := range pageTemplates {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("テンプレート %s の解析に失敗しました: %w", file, err)
		}
		templates[name] = tmpl
	}

	return &Handler{
		api:       api,
		logger:    logger,
		templates: templates,
	}, nil
}

// pagerData はページ送りリンクの描画に使うデータ。
type pagerData struct {
	BasePath    string
	CurrentPage int
	PageNumber  int
	PrevPage    int
	NextPage    int
	Size        int
	TotalPages  int
	Last        bool
}

// newPagerData はページ送りデータを組み立てる。
func newPagerData(basePath string, page, size, totalPages int, last bool) pagerData {
	return pagerData{
		BasePath:    basePath,
		CurrentPage: page,
		PageNumber:  page + 1,
		PrevPage:    page - 1,
		NextPage:    page + 1,
		Size:        size,
		TotalPages:  totalPages,
		Last:        last,
	}
}

// render は名前付きページテンプレートを描画する。
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := h.templates[name]
	if !ok {
		h.logger.Error("未登録のテンプレートが指定されました", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "page", data); err != nil {
		h.logger.Error("テンプレートの描画に失敗しました", "template", name, "error", err)
	}
}

// renderError はAPI呼び出しの失敗をユーザー向けページへ変換する。
// 404はそのまま404ページ、それ以外は500として扱う。
func (h *Handler) renderError(w http.ResponseWriter, err error) {
	if apiErr, ok := asAPIError(err); ok && apiErr.IsNotFound() {
		http.Error(w, apiErr.Message, http.StatusNotFound)
		return
	}
	h.logger.Error("APIリクエストに失敗しました", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// asAPIError はエラーがAPIRequestErrorであれば取り出す。
func asAPIError(err error) (*APIRequestError, bool) {
	apiErr, ok := err.(*APIRequestError)
	return apiErr, ok
}

// formErrors はフォーム再表示に使うエラーメッセージを取り出す。
// バリデーションエラーと競合エラーのみフォームに表示し、
// それ以外のエラーはfalseを返して呼び出し側に委ねる。
func formErrors(err error) ([]string, bool) {
	apiErr, ok := asAPIError(err)
	if !ok {
		return nil, false
	}
	switch apiErr.StatusCode {
	case http.StatusBadRequest, http.StatusConflict:
		return []string{apiErr.Message}, true
	default:
		return nil, false
	}
}

// parsePageParams はクエリのpage/sizeを読み取る。不正値は既定値に倒す。
func parsePageParams(r *http.Request) (page, size int) {
	page = 0
	size = listPageSize
	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return page, size
}

// parsePathID はURLパラメータからIDを読み取る。
func parsePathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("不正なIDです: %q", raw)
	}
	return id, nil
}

// --- 著者ページ ---

type authorsListPage struct {
	Title   string
	Errors  []string
	Authors []AuthorDTO
	Pager   pagerData
}

type authorFormPage struct {
	Title  string
	Errors []string
	Form   map[string]string
}

type authorDetailPage struct {
	Title  string
	Errors []string
	Author *AuthorDTO
}

// AuthorsList は著者一覧ページを表示する。
func (h *Handler) AuthorsList(w http.ResponseWriter, r *http.Request) {
	page, size := parsePageParams(r)
	authorPage, err := h.api.ListAuthors(r.Context(), page, size)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, http.StatusOK, "authors_list", authorsListPage{
		Title:   "Authors",
		Authors: authorPage.Content,
		Pager:   newPagerData("/library/authors/list", page, size, authorPage.TotalPages, authorPage.Last),
	})
}

// NewAuthorForm は著者登録フォームを表示する。
func (h *Handler) NewAuthorForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "author_form", authorFormPage{
		Title: "New author",
		Form:  map[string]string{},
	})
}

// CreateAuthor はフォーム入力から著者を登録する。
// 入力不備や重複はフォームを再表示し、成功時は詳細ページへリダイレクトする。
func (h *Handler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := map[string]string{
		"firstName":  r.FormValue("firstName"),
		"lastName":   r.FormValue("lastName"),
		"middleName": r.FormValue("middleName"),
		"birthDate":  r.FormValue("birthDate"),
	}

	author, err := h.api.CreateAuthor(r.Context(), form["firstName"], form["lastName"], form["middleName"], form["birthDate"])
	if err != nil {
		if messages, ok := formErrors(err); ok {
			h.render(w, http.StatusUnprocessableEntity, "author_form", authorFormPage{
				Title:  "New author",
				Errors: messages,
				Form:   form,
			})
			return
		}
		h.renderError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/library/authors/%d", author.ID), http.StatusSeeOther)
}

// AuthorDetail は著者詳細ページを表示する。
func (h *Handler) AuthorDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "authorId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	author, err := h.api.GetAuthor(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, http.StatusOK, "author_detail", authorDetailPage{
		Title:  "Author " + author.FullName(),
		Author: author,
	})
}

// DeleteAuthor は著者を削除し一覧へリダイレクトする。
// 蔵書が残っている場合は詳細ページにエラーを表示する。
func (h *Handler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "authorId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.api.DeleteAuthor(r.Context(), id); err != nil {
		if messages, ok := formErrors(err); ok {
			author, getErr := h.api.GetAuthor(r.Context(), id)
			if getErr != nil {
				h.renderError(w, getErr)
				return
			}
			h.render(w, http.StatusConflict, "author_detail", authorDetailPage{
				Title:  "Author " + author.FullName(),
				Errors: messages,
				Author: author,
			})
			return
		}
		h.renderError(w, err)
		return
	}

	http.Redirect(w, r, "/library/authors/list", http.StatusSeeOther)
}

// --- 読者ページ ---

type readersListPage struct {
	Title   string
	Errors  []string
	Readers []ReaderDTO
	Pager   pagerData
}

type readerFormPage struct {
	Title  string
	Errors []string
	Form   map[string]string
}

type readerDetailPage struct {
	Title  string
	Errors []string
	Reader *ReaderDTO
}

// ReadersList は読者一覧ページを表示する。
func (h *Handler) ReadersList(w http.ResponseWriter, r *http.Request) {
	page, size := parsePageParams(r)
	readerPage, err := h.api.ListReaders(r.Context(), page, size)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, http.StatusOK, "readers_list", readersListPage{
		Title:   "Readers",
		Readers: readerPage.Content,
		Pager:   newPagerData("/library/readers/list", page, size, readerPage.TotalPages, readerPage.Last),
	})
}

// NewReaderForm は読者登録フォームを表示する。
func (h *Handler) NewReaderForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "reader_form", readerFormPage{
		Title: "New reader",
		Form:  map[string]string{},
	})
}

// CreateReader はフォーム入力から読者を登録する。
func (h *Handler) CreateReader(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := map[string]string{
		"firstName":  r.FormValue("firstName"),
		"lastName":   r.FormValue("lastName"),
		"middleName": r.FormValue("middleName"),
		"email":      r.FormValue("email"),
	}

	reader, err := h.api.CreateReader(r.Context(), form["firstName"], form["lastName"], form["middleName"], form["email"])
	if err != nil {
		if messages, ok := formErrors(err); ok {
			h.render(w, http.StatusUnprocessableEntity, "reader_form", readerFormPage{
				Title:  "New reader",
				Errors: messages,
				Form:   form,
			})
			return
		}
		h.renderError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/library/readers/%d", reader.ID), http.StatusSeeOther)
}

// ReaderDetail は読者詳細ページを表示する。
func (h *Handler) ReaderDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "readerId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reader, err := h.api.GetReader(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, http.StatusOK, "reader_detail", readerDetailPage{
		Title:  "Reader " + reader.FullName(),
		Reader: reader,
	})
}

// DeleteReader は読者を削除し一覧へリダイレクトする。
func (h *Handler) DeleteReader(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "readerId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.api.DeleteReader(r.Context(), id); err != nil {
		if messages, ok := formErrors(err); ok {
			reader, getErr := h.api.GetReader(r.Context(), id)
			if getErr != nil {
				h.renderError(w, getErr)
				return
			}
			h.render(w, http.StatusConflict, "reader_detail", readerDetailPage{
				Title:  "Reader " + reader.FullName(),
				Errors: messages,
				Reader: reader,
			})
			return
		}
		h.renderError(w, err)
		return
	}

	http.Redirect(w, r, "/library/readers/list", http.StatusSeeOther)
}

// --- 蔵書ページ ---

type booksListPage struct {
	Title  string
	Errors []string
	Books  []BookDTO
	Pager  pagerData
}

type bookFormPage struct {
	Title   string
	Errors  []string
	Form    map[string]string
	Authors []AuthorDTO
}

type bookDetailPage struct {
	Title   string
	Errors  []string
	Book    *BookDTO
	Readers []ReaderDTO
}

// BooksList は蔵書一覧ページを表示する。
func (h *Handler) BooksList(w http.ResponseWriter, r *http.Request) {
	page, size := parsePageParams(r)
	bookPage, err := h.api.ListBooks(r.Context(), page, size)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, http.StatusOK, "books_list", booksListPage{
		Title: "Books",
		Books: bookPage.Content,
		Pager: newPagerData("/library/books/list", page, size, bookPage.TotalPages, bookPage.Last),
	})
}

// NewBookForm は著者の選択肢付きの書籍登録フォームを表示する。
func (h *Handler) NewBookForm(w http.ResponseWriter, r *http.Request) {
	authors, err := h.api.ListAuthors(r.Context(), 0, dropdownFetchSize)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, http.StatusOK, "book_form", bookFormPage{
		Title:   "New book",
		Form:    map[string]string{},
		Authors: authors.Content,
	})
}

// CreateBook はフォーム入力から書籍を登録する。
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := map[string]string{
		"title":    r.FormValue("title"),
		"authorId": r.FormValue("authorId"),
	}
	authorID, _ := strconv.Atoi(form["authorId"])

	book, err := h.api.CreateBook(r.Context(), form["title"], authorID)
	if err != nil {
		if messages, ok := formErrors(err); ok {
			authors, listErr := h.api.ListAuthors(r.Context(), 0, dropdownFetchSize)
			if listErr != nil {
				h.renderError(w, listErr)
				return
			}
			h.render(w, http.StatusUnprocessableEntity, "book_form", bookFormPage{
				Title:   "New book",
				Errors:  messages,
				Form:    form,
				Authors: authors.Content,
			})
			return
		}
		h.renderError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/library/books/%d", book.ID), http.StatusSeeOther)
}

// BookDetail は貸出フォーム付きの書籍詳細ページを表示する。
func (h *Handler) BookDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "bookId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	book, err := h.api.GetBook(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	var readers []ReaderDTO
	if !book.IsBorrowed {
		readerPage, err := h.api.ListReaders(r.Context(), 0, dropdownFetchSize)
		if err != nil {
			h.renderError(w, err)
			return
		}
		readers = readerPage.Content
	}

	h.render(w, http.StatusOK, "book_detail", bookDetailPage{
		Title:   "Book " + book.Title,
		Book:    book,
		Readers: readers,
	})
}

// BorrowBook は貸出を依頼し書籍詳細へリダイレクトする。
// 貸出競合は詳細ページにエラーを表示する。
func (h *Handler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	h.lendingAction(w, r, h.api.BorrowBook)
}

// ReturnBook は返却を依頼し書籍詳細へリダイレクトする。
func (h *Handler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	h.lendingAction(w, r, h.api.ReturnBook)
}

// lendingAction は貸出・返却フォームの共通処理。
func (h *Handler) lendingAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, readerID, bookID int) (*BookDTO, error)) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	readerID, err1 := strconv.Atoi(r.FormValue("readerId"))
	bookID, err2 := strconv.Atoi(r.FormValue("bookId"))
	if err1 != nil || err2 != nil || readerID <= 0 || bookID <= 0 {
		http.Error(w, "readerIdとbookIdは正の整数で指定してください", http.StatusBadRequest)
		return
	}

	if _, err := action(r.Context(), readerID, bookID); err != nil {
		if messages, ok := formErrors(err); ok {
			book, getErr := h.api.GetBook(r.Context(), bookID)
			if getErr != nil {
				h.renderError(w, getErr)
				return
			}
			h.render(w, http.StatusConflict, "book_detail", bookDetailPage{
				Title:  "Book " + book.Title,
				Errors: messages,
				Book:   book,
			})
			return
		}
		h.renderError(w, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/library/books/%d", bookID), http.StatusSeeOther)
}

// DeleteBook は書籍を削除し一覧へリダイレクトする。
// 貸出中の書籍は詳細ページにエラーを表示する。
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(r, "bookId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.api.DeleteBook(r.Context(), id); err != nil {
		if messages, ok := formErrors(err); ok {
			book, getErr := h.api.GetBook(r.Context(), id)
			if getErr != nil {
				h.renderError(w, getErr)
				return
			}
			h.render(w, http.StatusConflict, "book_detail", bookDetailPage{
				Title:  "Book " + book.Title,
				Errors: messages,
				Book:   book,
			})
			return
		}
		h.renderError(w, err)
		return
	}

	http.Redirect(w, r, "/library/books/list", http.StatusSeeOther)
}
