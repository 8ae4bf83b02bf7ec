package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// 機械可読なエラーコードと、UIに表示する原因カテゴリ・対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: author, reader, book, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthorNotFound      = "AUTHOR_NOT_FOUND"
	ErrCodeAuthorAlreadyExists = "AUTHOR_ALREADY_EXISTS"
	ErrCodeAuthorHasBooks      = "AUTHOR_HAS_BOOKS"
	ErrCodeReaderNotFound      = "READER_NOT_FOUND"
	ErrCodeReaderAlreadyExists = "READER_ALREADY_EXISTS"
	ErrCodeReaderHasBooks      = "READER_HAS_BOOKS"
	ErrCodeBookNotFound        = "BOOK_NOT_FOUND"
	ErrCodeBookAlreadyExists   = "BOOK_ALREADY_EXISTS"
	ErrCodeBookNotAvailable    = "BOOK_NOT_AVAILABLE"
	ErrCodeBookNotBorrowed     = "BOOK_NOT_BORROWED"
	ErrCodeBookWrongReader     = "BOOK_WRONG_READER"
	ErrCodeBookBorrowed        = "BOOK_BORROWED"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
)

// NewAuthorNotFoundError は著者未検出エラーを生成する。
func NewAuthorNotFoundError(authorID int) *APIError {
	return &APIError{
		Code:     ErrCodeAuthorNotFound,
		Message:  fmt.Sprintf("指定された著者が見つかりません: %d", authorID),
		Category: "author",
		Action:   "著者IDを確認してください。",
	}
}

// NewAuthorAlreadyExistsError は著者の重複登録エラーを生成する。
// 氏名と生年月日の組み合わせが既存の著者と一致する場合に返す。
func NewAuthorAlreadyExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthorAlreadyExists,
		Message:  "同じ氏名・生年月日の著者が既に登録されています。",
		Category: "author",
		Action:   "著者一覧から既存の登録を確認してください。",
	}
}

// NewAuthorHasBooksError は蔵書が紐づく著者の削除エラーを生成する。
func NewAuthorHasBooksError(authorID int) *APIError {
	return &APIError{
		Code:     ErrCodeAuthorHasBooks,
		Message:  fmt.Sprintf("著者 %d にはこの著者の蔵書が存在するため削除できません。", authorID),
		Category: "author",
		Action:   "先にこの著者の蔵書をすべて削除してください。",
	}
}

// NewReaderNotFoundError は読者未検出エラーを生成する。
func NewReaderNotFoundError(readerID int) *APIError {
	return &APIError{
		Code:     ErrCodeReaderNotFound,
		Message:  fmt.Sprintf("指定された読者が見つかりません: %d", readerID),
		Category: "reader",
		Action:   "読者IDを確認してください。",
	}
}

// NewReaderAlreadyExistsError は読者の重複登録エラーを生成する。
func NewReaderAlreadyExistsError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeReaderAlreadyExists,
		Message:  fmt.Sprintf("メールアドレス %s の読者が既に登録されています。", email),
		Category: "reader",
		Action:   "別のメールアドレスを使用するか、既存の登録を確認してください。",
	}
}

// NewReaderHasBooksError は貸出中の書籍が残る読者の削除エラーを生成する。
func NewReaderHasBooksError(readerID int) *APIError {
	return &APIError{
		Code:     ErrCodeReaderHasBooks,
		Message:  fmt.Sprintf("読者 %d には貸出中の書籍が存在するため削除できません。", readerID),
		Category: "reader",
		Action:   "先に貸出中の書籍をすべて返却してください。",
	}
}

// NewBookNotFoundError は書籍未検出エラーを生成する。
func NewBookNotFoundError(bookID int) *APIError {
	return &APIError{
		Code:     ErrCodeBookNotFound,
		Message:  fmt.Sprintf("指定された書籍が見つかりません: %d", bookID),
		Category: "book",
		Action:   "書籍IDを確認してください。",
	}
}

// NewBookAlreadyExistsError は書籍の重複登録エラーを生成する。
// 同一著者・同一タイトルの書籍が既に存在する場合に返す。
func NewBookAlreadyExistsError(title string) *APIError {
	return &APIError{
		Code:     ErrCodeBookAlreadyExists,
		Message:  fmt.Sprintf("この著者の書籍「%s」は既に登録されています。", title),
		Category: "book",
		Action:   "蔵書一覧から既存の登録を確認してください。",
	}
}

// NewBookNotAvailableError は貸出中の書籍への貸出要求エラーを生成する。
func NewBookNotAvailableError(bookID int) *APIError {
	return &APIError{
		Code:     ErrCodeBookNotAvailable,
		Message:  fmt.Sprintf("書籍 %d は貸出中のため貸出できません。", bookID),
		Category: "book",
		Action:   "返却されるまでお待ちください。",
	}
}

// NewBookNotBorrowedError は貸出されていない書籍への返却要求エラーを生成する。
func NewBookNotBorrowedError(bookID int) *APIError {
	return &APIError{
		Code:     ErrCodeBookNotBorrowed,
		Message:  fmt.Sprintf("書籍 %d は貸出されていません。", bookID),
		Category: "book",
		Action:   "書籍IDを確認してください。",
	}
}

// NewBookWrongReaderError は貸出中の読者以外からの返却要求エラーを生成する。
func NewBookWrongReaderError(bookID, readerID int) *APIError {
	return &APIError{
		Code:     ErrCodeBookWrongReader,
		Message:  fmt.Sprintf("書籍 %d は読者 %d への貸出ではありません。", bookID, readerID),
		Category: "book",
		Action:   "貸出中の読者IDを確認してください。",
	}
}

// NewBookBorrowedError は貸出中の書籍の削除エラーを生成する。
func NewBookBorrowedError(bookID int) *APIError {
	return &APIError{
		Code:     ErrCodeBookBorrowed,
		Message:  fmt.Sprintf("書籍 %d は貸出中のため削除できません。", bookID),
		Category: "book",
		Action:   "返却された後に削除してください。",
	}
}

// NewInvalidRequestError はリクエスト内容の検証エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエスト内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}
