package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// --- モック定義 ---

// mockReaderService はReaderServiceInterfaceのモック実装。
type mockReaderService struct {
	addReaderFn    func(ctx context.Context, reader *model.Reader) (*model.Reader, error)
	getReaderFn    func(ctx context.Context, id int) (*model.Reader, error)
	deleteReaderFn func(ctx context.Context, id int) error
	listReadersFn  func(ctx context.Context, page, size int) (*model.ReaderPage, error)
}

func (m *mockReaderService) AddReader(ctx context.Context, reader *model.Reader) (*model.Reader, error) {
	if m.addReaderFn != nil {
		return m.addReaderFn(ctx, reader)
	}
	return reader, nil
}

func (m *mockReaderService) GetReader(ctx context.Context, id int) (*model.Reader, error) {
	if m.getReaderFn != nil {
		return m.getReaderFn(ctx, id)
	}
	return nil, model.NewReaderNotFoundError(id)
}

func (m *mockReaderService) DeleteReader(ctx context.Context, id int) error {
	if m.deleteReaderFn != nil {
		return m.deleteReaderFn(ctx, id)
	}
	return nil
}

func (m *mockReaderService) ListReaders(ctx context.Context, page, size int) (*model.ReaderPage, error) {
	if m.listReadersFn != nil {
		return m.listReadersFn(ctx, page, size)
	}
	return &model.ReaderPage{Content: []model.Reader{}, Last: true}, nil
}

// --- POST /library-api/readers テスト ---

func TestReaderHandler_CreateReader_Success(t *testing.T) {
	svc := &mockReaderService{
		addReaderFn: func(ctx context.Context, reader *model.Reader) (*model.Reader, error) {
			reader.ID = 1
			return reader, nil
		},
	}
	h := NewReaderHandler(svc, testPaging)

	body := bytes.NewBufferString(`{"firstName":"Анна","lastName":"Иванова","email":"anna@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/library-api/readers", body)
	w := httptest.NewRecorder()

	h.CreateReader(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp readerResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Email != "anna@example.com" {
		t.Errorf("email = %q, want %q", resp.Email, "anna@example.com")
	}
}

func TestReaderHandler_CreateReader_InvalidEmail(t *testing.T) {
	h := NewReaderHandler(&mockReaderService{}, testPaging)

	body := bytes.NewBufferString(`{"firstName":"Анна","lastName":"Иванова","email":"not-an-email"}`)
	req := httptest.NewRequest(http.MethodPost, "/library-api/readers", body)
	w := httptest.NewRecorder()

	h.CreateReader(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := parseAPIErrorResponse(t, w)
	if resp["code"] != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", resp["code"], model.ErrCodeInvalidRequest)
	}
}

func TestReaderHandler_CreateReader_MissingEmail(t *testing.T) {
	h := NewReaderHandler(&mockReaderService{}, testPaging)

	body := bytes.NewBufferString(`{"firstName":"Анна","lastName":"Иванова"}`)
	req := httptest.NewRequest(http.MethodPost, "/library-api/readers", body)
	w := httptest.NewRecorder()

	h.CreateReader(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReaderHandler_CreateReader_DuplicateEmailReturns409(t *testing.T) {
	svc := &mockReaderService{
		addReaderFn: func(ctx context.Context, reader *model.Reader) (*model.Reader, error) {
			return nil, model.NewReaderAlreadyExistsError(reader.Email)
		},
	}
	h := NewReaderHandler(svc, testPaging)

	body := bytes.NewBufferString(`{"firstName":"Анна","lastName":"Иванова","email":"anna@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/library-api/readers", body)
	w := httptest.NewRecorder()

	h.CreateReader(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	resp := parseAPIErrorResponse(t, w)
	if resp["code"] != model.ErrCodeReaderAlreadyExists {
		t.Errorf("code = %q, want %q", resp["code"], model.ErrCodeReaderAlreadyExists)
	}
}

// --- GET /library-api/readers/{id} テスト ---

func TestReaderHandler_GetReader_Success(t *testing.T) {
	svc := &mockReaderService{
		getReaderFn: func(ctx context.Context, id int) (*model.Reader, error) {
			return &model.Reader{
				ID:        id,
				FirstName: "Анна",
				LastName:  "Иванова",
				Email:     "anna@example.com",
			}, nil
		},
	}
	h := NewReaderHandler(svc, testPaging)

	req := httptest.NewRequest(http.MethodGet, "/library-api/readers/2", nil)
	req = withChiURLParam(req, "id", "2")
	w := httptest.NewRecorder()

	h.GetReader(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp readerResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 2 {
		t.Errorf("id = %d, want 2", resp.ID)
	}
}

func TestReaderHandler_GetReader_NotFoundReturns404(t *testing.T) {
	h := NewReaderHandler(&mockReaderService{}, testPaging)

	req := httptest.NewRequest(http.MethodGet, "/library-api/readers/99", nil)
	req = withChiURLParam(req, "id", "99")
	w := httptest.NewRecorder()

	h.GetReader(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- DELETE /library-api/readers/{id} テスト ---

func TestReaderHandler_DeleteReader_Success(t *testing.T) {
	h := NewReaderHandler(&mockReaderService{}, testPaging)

	req := httptest.NewRequest(http.MethodDelete, "/library-api/readers/2", nil)
	req = withChiURLParam(req, "id", "2")
	w := httptest.NewRecorder()

	h.DeleteReader(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestReaderHandler_DeleteReader_HasBorrowedBooksReturns409(t *testing.T) {
	svc := &mockReaderService{
		deleteReaderFn: func(ctx context.Context, id int) error {
			return model.NewReaderHasBooksError(id)
		},
	}
	h := NewReaderHandler(svc, testPaging)

	req := httptest.NewRequest(http.MethodDelete, "/library-api/readers/2", nil)
	req = withChiURLParam(req, "id", "2")
	w := httptest.NewRecorder()

	h.DeleteReader(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	resp := parseAPIErrorResponse(t, w)
	if resp["code"] != model.ErrCodeReaderHasBooks {
		t.Errorf("code = %q, want %q", resp["code"], model.ErrCodeReaderHasBooks)
	}
}

// --- GET /library-api/readers テスト ---

func TestReaderHandler_ListReaders_ReturnsPage(t *testing.T) {
	svc := &mockReaderService{
		listReadersFn: func(ctx context.Context, page, size int) (*model.ReaderPage, error) {
			return &model.ReaderPage{
				Content: []model.Reader{
					{ID: 1, FirstName: "Анна", LastName: "Иванова", Email: "anna@example.com"},
					{ID: 2, FirstName: "Пётр", LastName: "Петров", Email: "petr@example.com"},
				},
				TotalElements: 2,
				TotalPages:    1,
				Last:          true,
			}, nil
		},
	}
	h := NewReaderHandler(svc, testPaging)

	req := httptest.NewRequest(http.MethodGet, "/library-api/readers", nil)
	w := httptest.NewRecorder()

	h.ListReaders(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp readerPageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Content) != 2 {
		t.Errorf("content length = %d, want 2", len(resp.Content))
	}
	if resp.TotalElements != 2 {
		t.Errorf("totalElements = %d, want 2", resp.TotalElements)
	}
}
