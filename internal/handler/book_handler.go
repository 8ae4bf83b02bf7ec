package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// BookServiceInterface は蔵書ハンドラーが必要とするサービスインターフェース。
type BookServiceInterface interface {
	// AddBook は書籍を登録する。
	AddBook(ctx context.Context, book *model.Book) (*model.Book, error)
	// GetBook は指定IDの書籍を取得する。
	GetBook(ctx context.Context, id int) (*model.Book, error)
	// DeleteBook は指定IDの書籍を削除する。
	DeleteBook(ctx context.Context, id int) error
	// ListBooks は蔵書一覧をページング取得する。
	ListBooks(ctx context.Context, page, size int) (*model.BookPage, error)
	// BorrowBook は書籍を読者に貸し出す。
	BorrowBook(ctx context.Context, readerID, bookID int) (*model.Book, error)
	// ReturnBook は読者から書籍の返却を受け付ける。
	ReturnBook(ctx context.Context, readerID, bookID int) (*model.Book, error)
}

// BookHandler は蔵書管理と貸出・返却のHTTPハンドラー。
type BookHandler struct {
	service BookServiceInterface
	paging  PagingConfig
}

// NewBookHandler はBookHandlerを生成する。
func NewBookHandler(service BookServiceInterface, paging PagingConfig) *BookHandler {
	return &BookHandler{
		service: service,
		paging:  paging,
	}
}

// createBookRequest は書籍登録リクエストのボディ。
type createBookRequest struct {
	AuthorID int    `json:"authorId"`
	Title    string `json:"title"`
}

// bookResponse は書籍情報のAPIレスポンス。
type bookResponse struct {
	ID         int    `json:"id"`
	AuthorID   int    `json:"authorId"`
	Title      string `json:"title"`
	IsBorrowed bool   `json:"isBorrowed"`
	BorrowDate string `json:"borrowDate,omitempty"`
	ReaderID   *int   `json:"readerId,omitempty"`
}

// bookPageResponse は蔵書一覧のページングレスポンス。
type bookPageResponse struct {
	Content       []bookResponse `json:"content"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Last          bool           `json:"last"`
}

// CreateBook は書籍登録を処理する。
// POST /library-api/books
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.AuthorID < 1 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("authorIdは正の整数で指定してください"))
		return
	}
	if apiErr := validateTitle(req.Title); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	book := &model.Book{
		AuthorID: req.AuthorID,
		Title:    req.Title,
	}

	created, err := h.service.AddBook(r.Context(), book)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toBookResponse(created))
}

// GetBook は書籍詳細を取得する。
// GET /library-api/books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam("id", chi.URLParam(r, "id"))
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBookResponse(book))
}

// DeleteBook は書籍を削除する。
// DELETE /library-api/books/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam("id", chi.URLParam(r, "id"))
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.service.DeleteBook(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListBooks は蔵書一覧を取得する。
// GET /library-api/books?page=&size=
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	page, size, apiErr := parsePaging(r, h.paging)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.ListBooks(r.Context(), page, size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := bookPageResponse{
		Content:       make([]bookResponse, len(result.Content)),
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
		Last:          result.Last,
	}
	for i := range result.Content {
		resp.Content[i] = toBookResponse(&result.Content[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// BorrowBook は書籍の貸出を処理する。
// POST /library-api/books/borrow?readerId=&bookId=
func (h *BookHandler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	readerID, bookID, apiErr := parseLendingParams(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	book, err := h.service.BorrowBook(r.Context(), readerID, bookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBookResponse(book))
}

// ReturnBook は書籍の返却を処理する。
// POST /library-api/books/return?readerId=&bookId=
func (h *BookHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	readerID, bookID, apiErr := parseLendingParams(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	book, err := h.service.ReturnBook(r.Context(), readerID, bookID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBookResponse(book))
}

// parseLendingParams は貸出・返却共通のreaderId/bookIdクエリパラメータを解析する。
func parseLendingParams(r *http.Request) (readerID, bookID int, apiErr *model.APIError) {
	readerID, apiErr = parseIDParam("readerId", r.URL.Query().Get("readerId"))
	if apiErr != nil {
		return 0, 0, apiErr
	}
	bookID, apiErr = parseIDParam("bookId", r.URL.Query().Get("bookId"))
	if apiErr != nil {
		return 0, 0, apiErr
	}
	return readerID, bookID, nil
}

// toBookResponse はドメインのBookをレスポンス型に変換する。
func toBookResponse(book *model.Book) bookResponse {
	resp := bookResponse{
		ID:         book.ID,
		AuthorID:   book.AuthorID,
		Title:      book.Title,
		IsBorrowed: book.IsBorrowed,
		ReaderID:   book.ReaderID,
	}
	if book.BorrowDate != nil {
		resp.BorrowDate = book.BorrowDate.Format(dateFormat)
	}
	return resp
}
