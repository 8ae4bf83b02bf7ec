package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// ReaderServiceInterface は読者ハンドラーが必要とするサービスインターフェース。
type ReaderServiceInterface interface {
	// AddReader は読者を登録する。
	AddReader(ctx context.Context, reader *model.Reader) (*model.Reader, error)
	// GetReader は指定IDの読者を取得する。
	GetReader(ctx context.Context, id int) (*model.Reader, error)
	// DeleteReader は指定IDの読者を削除する。
	DeleteReader(ctx context.Context, id int) error
	// ListReaders は読者一覧をページング取得する。
	ListReaders(ctx context.Context, page, size int) (*model.ReaderPage, error)
}

// ReaderHandler は読者管理のHTTPハンドラー。
type ReaderHandler struct {
	service ReaderServiceInterface
	paging  PagingConfig
}

// NewReaderHandler はReaderHandlerを生成する。
func NewReaderHandler(service ReaderServiceInterface, paging PagingConfig) *ReaderHandler {
	return &ReaderHandler{
		service: service,
		paging:  paging,
	}
}

// createReaderRequest は読者登録リクエストのボディ。
type createReaderRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	Email      string `json:"email"`
}

// readerResponse は読者情報のAPIレスポンス。
type readerResponse struct {
	ID         int    `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName,omitempty"`
	Email      string `json:"email"`
}

// readerPageResponse は読者一覧のページングレスポンス。
type readerPageResponse struct {
	Content       []readerResponse `json:"content"`
	TotalElements int64            `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
	Last          bool             `json:"last"`
}

// CreateReader は読者登録を処理する。
// POST /library-api/readers
func (h *ReaderHandler) CreateReader(w http.ResponseWriter, r *http.Request) {
	var req createReaderRequest
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
	if apiErr := validateEmail(req.Email); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}
	reader := &model.Reader{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Email:      req.Email,
	}

	created, err := h.service.AddReader(r.Context(), reader)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toReaderResponse(created))
}

// GetReader は読者詳細を取得する。
// GET /library-api/readers/{id}
func (h *ReaderHandler) GetReader(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam("id", chi.URLParam(r, "id"))
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	reader, err := h.service.GetReader(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toReaderResponse(reader))
}

// DeleteReader は読者を削除する。
// DELETE /library-api/readers/{id}
func (h *ReaderHandler) DeleteReader(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam("id", chi.URLParam(r, "id"))
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.service.DeleteReader(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListReaders は読者一覧を取得する。
// GET /library-api/readers?page=&size=
func (h *ReaderHandler) ListReaders(w http.ResponseWriter, r *http.Request) {
	page, size, apiErr := parsePaging(r, h.paging)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	result, err := h.service.ListReaders(r.Context(), page, size)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := readerPageResponse{
		Content:       make([]readerResponse, len(result.Content)),
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
		Last:          result.Last,
	}
	for i := range result.Content {
		resp.Content[i] = toReaderResponse(&result.Content[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// toReaderResponse はドメインのReaderをレスポンス型に変換する。
func toReaderResponse(reader *model.Reader) readerResponse {
	return readerResponse{
		ID:         reader.ID,
		FirstName:  reader.FirstName,
		LastName:   reader.LastName,
		MiddleName: reader.MiddleName,
		Email:      reader.Email,
	}
}
