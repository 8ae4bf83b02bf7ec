// Package ui は図書館APIを呼び出すWeb UIサービスを提供する。
// 自前の永続化は持たず、全データ操作をAPIへ転送する。
package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIRequestError はAPIから返されたエラーレスポンスを表す。
type APIRequestError struct {
	StatusCode int
	Code       string
	Message    string
	Action     string
}

// Error はerrorインターフェースを実装する。
func (e *APIRequestError) Error() string {
	return fmt.Sprintf("API error %d [%s] %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound は404エラーかどうかを返す。
func (e *APIRequestError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// AuthorDTO はAPIの著者レスポンス。
type AuthorDTO struct {
	ID         int    `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	BirthDate  string `json:"birthDate"`
}

// FullName は表示用の氏名を返す。
func (a AuthorDTO) FullName() string {
	parts := []string{a.LastName, a.FirstName}
	if a.MiddleName != "" {
		parts = append(parts, a.MiddleName)
	}
	return strings.Join(parts, " ")
}

// AuthorPageDTO はAPIの著者一覧レスポンス。
type AuthorPageDTO struct {
	Content       []AuthorDTO `json:"content"`
	TotalElements int64       `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
	Last          bool        `json:"last"`
}

// ReaderDTO はAPIの読者レスポンス。
type ReaderDTO struct {
	ID         int    `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	MiddleName string `json:"middleName"`
	Email      string `json:"email"`
}

// FullName は表示用の氏名を返す。
func (r ReaderDTO) FullName() string {
	parts := []string{r.LastName, r.FirstName}
	if r.MiddleName != "" {
		parts = append(parts, r.MiddleName)
	}
	return strings.Join(parts, " ")
}

// ReaderPageDTO はAPIの読者一覧レスポンス。
type ReaderPageDTO struct {
	Content       []ReaderDTO `json:"content"`
	TotalElements int64       `json:"totalElements"`
	TotalPages    int         `json:"totalPages"`
	Last          bool        `json:"last"`
}

// BookDTO はAPIの書籍レスポンス。
type BookDTO struct {
	ID         int    `json:"id"`
	AuthorID   int    `json:"authorId"`
	Title      string `json:"title"`
	IsBorrowed bool   `json:"isBorrowed"`
	BorrowDate string `json:"borrowDate"`
	ReaderID   *int   `json:"readerId"`
}

// BookPageDTO はAPIの蔵書一覧レスポンス。
type BookPageDTO struct {
	Content       []BookDTO `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Last          bool      `json:"last"`
}

// Client は図書館APIのRESTクライアント。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient は図書館APIクライアントを生成する。
// baseURLはAPIサーバーのルートURL（例: http://localhost:8080）。
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// --- 著者 ---

// ListAuthors は著者一覧を取得する。
func (c *Client) ListAuthors(ctx context.Context, page, size int) (*AuthorPageDTO, error) {
	var result AuthorPageDTO
	if err := c.doJSON(ctx, http.MethodGet, c.pagedURL("/library-api/authors", page, size), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateAuthor は著者を登録する。
func (c *Client) CreateAuthor(ctx context.Context, firstName, lastName, middleName, birthDate string) (*AuthorDTO, error) {
	body := map[string]string{
		"firstName":  firstName,
		"lastName":   lastName,
		"middleName": middleName,
		"birthDate":  birthDate,
	}
	var result AuthorDTO
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/library-api/authors", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAuthor は著者詳細を取得する。
func (c *Client) GetAuthor(ctx context.Context, id int) (*AuthorDTO, error) {
	var result AuthorDTO
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/library-api/authors/%d", c.baseURL, id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteAuthor は著者を削除する。
func (c *Client) DeleteAuthor(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/library-api/authors/%d", c.baseURL, id), nil, nil)
}

// --- 読者 ---

// ListReaders は読者一覧を取得する。
func (c *Client) ListReaders(ctx context.Context, page, size int) (*ReaderPageDTO, error) {
	var result ReaderPageDTO
	if err := c.doJSON(ctx, http.MethodGet, c.pagedURL("/library-api/readers", page, size), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateReader は読者を登録する。
func (c *Client) CreateReader(ctx context.Context, firstName, lastName, middleName, email string) (*ReaderDTO, error) {
	body := map[string]string{
		"firstName":  firstName,
		"lastName":   lastName,
		"middleName": middleName,
		"email":      email,
	}
	var result ReaderDTO
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/library-api/readers", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetReader は読者詳細を取得する。
func (c *Client) GetReader(ctx context.Context, id int) (*ReaderDTO, error) {
	var result ReaderDTO
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/library-api/readers/%d", c.baseURL, id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteReader は読者を削除する。
func (c *Client) DeleteReader(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/library-api/readers/%d", c.baseURL, id), nil, nil)
}

// --- 蔵書 ---

// ListBooks は蔵書一覧を取得する。
func (c *Client) ListBooks(ctx context.Context, page, size int) (*BookPageDTO, error) {
	var result BookPageDTO
	if err := c.doJSON(ctx, http.MethodGet, c.pagedURL("/library-api/books", page, size), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateBook は書籍を登録する。
func (c *Client) CreateBook(ctx context.Context, title string, authorID int) (*BookDTO, error) {
	body := map[string]any{
		"title":    title,
		"authorId": authorID,
	}
	var result BookDTO
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/library-api/books", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBook は書籍詳細を取得する。
func (c *Client) GetBook(ctx context.Context, id int) (*BookDTO, error) {
	var result BookDTO
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/library-api/books/%d", c.baseURL, id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteBook は書籍を削除する。
func (c *Client) DeleteBook(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/library-api/books/%d", c.baseURL, id), nil, nil)
}

// BorrowBook は書籍の貸出を依頼する。
func (c *Client) BorrowBook(ctx context.Context, readerID, bookID int) (*BookDTO, error) {
	var result BookDTO
	if err := c.doJSON(ctx, http.MethodPost, c.lendingURL("/library-api/books/borrow", readerID, bookID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReturnBook は書籍の返却を依頼する。
func (c *Client) ReturnBook(ctx context.Context, readerID, bookID int) (*BookDTO, error) {
	var result BookDTO
	if err := c.doJSON(ctx, http.MethodPost, c.lendingURL("/library-api/books/return", readerID, bookID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- 内部ヘルパー ---

// pagedURL はページングクエリ付きのURLを組み立てる。
func (c *Client) pagedURL(path string, page, size int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return c.baseURL + path + "?" + q.Encode()
}

// lendingURL は貸出・返却のreaderId/bookIdクエリ付きURLを組み立てる。
func (c *Client) lendingURL(path string, readerID, bookID int) string {
	q := url.Values{}
	q.Set("readerId", strconv.Itoa(readerID))
	q.Set("bookId", strconv.Itoa(bookID))
	return c.baseURL + path + "?" + q.Encode()
}

// doJSON はJSONリクエストを送信し、レスポンスをoutにデコードする。
// 2xx以外のレスポンスはAPIRequestErrorとして返す。
func (c *Client) doJSON(ctx context.Context, method, rawURL string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("APIリクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("レスポンスのデコードに失敗しました: %w", err)
	}
	return nil
}

// decodeAPIError はエラーレスポンスのボディをAPIRequestErrorに変換する。
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIRequestError{StatusCode: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Action  string `json:"action"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		apiErr.Action = body.Action
	}

	return apiErr
}
