package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// AuthorServiceInterface は著者ハンドラーが必要とするサービスインターフェース。
type AuthorServiceInterface interface {
	// AddAuthor は著者を登録する。
	AddAuthor(ctx context.Context, author *model.Author) (*model.Author, error)
	// GetAuthor は指定IDの著者を取得する。
	GetAuthor(ctx context.Context, id int) (*model.Author, error)
	// DeleteAuthor は指定IDの著者を削除する。
	DeleteAuthor(ctx context.Context, id int) error
	// ListAuthors は著者一覧をページング取得する。
	ListAuthors(ctx context.Context, page, size int) (*model.AuthorPage, error)
}

// AuthorHandler は著者管理のHTTPハンドラー。
type AuthorHandler struct {
	service AuthorServiceInterface
	paging  PagingConfig
}

// NewAuthorHandler はAuthorHandlerを生成する。
func NewAuthorHandler(service AuthorServiceInterface, paging PagingConfig) *AuthorHandler {
	return &AuthorHandler{
		service: service,
		paging:  paging,
	}
}

// createAuthorRequest は著者登録リクエストのボディ。
type createAuthorRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	BirthDate  string `json:"birthDate"`
}

// authorResponse は著者情報のAPIレスポンス。
type authorResponse struct {
	ID         int    `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName,omitempty"`
	BirthDate  string `json:"birthDate"`
}

// authorPageResponse は著者一覧のページングレスポンス。
type authorPageResponse struct {
	Content       []authorResponse `json:"content"`
	TotalElements int64            `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
	Last          bool             `json:"last"`
}

// CreateAuthor は著者登録を処理する。
// POST /library-api/authors
func (h *AuthorHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req createAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if apiErr := validateName("firstName", req.FirstName, true); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validateName("lastName", req.LastName, true); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	if apiErr := validateName("middleName", req.MiddleName, false); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	birthDate, apiErr := parseBirthDate(req.BirthDate)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	author := &model.Author{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		BirthDate:  birthDate,
	}

	created, err := h.service.AddAuthor(r.Context(), author)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAuthorResponse(created))
}

// GetAuthor は著者詳細を取得する。
// GET /library-api/authors/{id}
func (h *AuthorHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam("id", chi.URLParam(r, "id"))
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	author, err := h.service.GetAuthor(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAuthorResponse(author))
}

// DeleteAuthor は著者を削除する。
// DELETE /library-api/authors/{id}
func (h *AuthorHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam("id", chi.URLParam(r, "id"))
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.service.DeleteAuthor(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAuthors は著者一覧を取得する。
// GET /library-api/authors?page=&size=
func (h *AuthorHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	page, size, apiErr := parsePaging(r, h.paging)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.ListAuthors(r.Context(), page, size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := authorPageResponse{
		Content:       make([]authorResponse, len(result.Content)),
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
		Last:          result.Last,
	}
	for i := range result.Content {
		resp.Content[i] = toAuthorResponse(&result.Content[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toAuthorResponse はドメインのAuthorをレスポンス型に変換する。
func toAuthorResponse(author *model.Author) authorResponse {
	return authorResponse{
		ID:         author.ID,
		FirstName:  author.FirstName,
		LastName:   author.LastName,
		MiddleName: author.MiddleName,
		BirthDate:  author.BirthDate.Format(dateFormat),
	}
}
