// Package library は著者・読者・蔵書を横断する貸出業務のオーケストレーションを提供する。
package library

import (
	"context"
	"errors"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// Transactor はユニットオブワーク境界の操作。
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthorManager は著者ドメインの操作。
type AuthorManager interface {
	CreateAuthor(ctx context.Context, author *model.Author) (*model.Author, error)
	GetAuthor(ctx context.Context, id int) (*model.Author, error)
	DeleteAuthor(ctx context.Context, id int) error
	ListAuthors(ctx context.Context, page, size int) (*model.AuthorPage, error)
}

// ReaderManager は読者ドメインの操作。
type ReaderManager interface {
	CreateReader(ctx context.Context, reader *model.Reader) (*model.Reader, error)
	GetReader(ctx context.Context, id int) (*model.Reader, error)
	DeleteReader(ctx context.Context, id int) error
	ListReaders(ctx context.Context, page, size int) (*model.ReaderPage, error)
}

// BookManager は蔵書ドメインの操作。
type BookManager interface {
	CreateBook(ctx context.Context, book *model.Book) (*model.Book, error)
	GetBook(ctx context.Context, id int) (*model.Book, error)
	DeleteBook(ctx context.Context, id int) error
	Borrow(ctx context.Context, bookID, readerID int) (*model.Book, error)
	Return(ctx context.Context, bookID, readerID int) (*model.Book, error)
	ListBooks(ctx context.Context, page, size int) (*model.BookPage, error)
}

// LendingMetrics は貸出業務のメトリクス記録操作。
type LendingMetrics interface {
	RecordBorrowSuccess()
	RecordReturnSuccess()
	RecordLendingConflict(reason string)
}

// LibraryService は貸出業務全体の進行役。
// 全ての更新操作をトランザクション境界（RunInTx）で包み、
// 参照整合性のための存在確認と状態遷移を同一トランザクション内で行う。
// 参照系操作はトランザクションを張らない。
type LibraryService struct {
	tx      Transactor
	authors AuthorManager
	readers ReaderManager
	books   BookManager
	metrics LendingMetrics
}

// NewLibraryService はLibraryServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewLibraryService(
	tx Transactor,
	authors AuthorManager,
	readers ReaderManager,
	books BookManager,
	metrics LendingMetrics,
) *LibraryService {
	return &LibraryService{
		tx:      tx,
		authors: authors,
		readers: readers,
		books:   books,
		metrics: metrics,
	}
}

// --- 著者 ---

// AddAuthor は著者を登録する。
func (s *LibraryService) AddAuthor(ctx context.Context, author *model.Author) (*model.Author, error) {
	var created *model.Author
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.authors.CreateAuthor(ctx, author)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetAuthor は指定IDの著者を取得する。
func (s *LibraryService) GetAuthor(ctx context.Context, id int) (*model.Author, error) {
	return s.authors.GetAuthor(ctx, id)
}

// DeleteAuthor は指定IDの著者を削除する。
// 蔵書の存在確認と削除を同一トランザクション内で行い、
// 確認と削除の間に書籍が登録される競合を防ぐ。
func (s *LibraryService) DeleteAuthor(ctx context.Context, id int) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.authors.DeleteAuthor(ctx, id)
	})
}

// ListAuthors は著者一覧をページング取得する。
func (s *LibraryService) ListAuthors(ctx context.Context, page, size int) (*model.AuthorPage, error) {
	return s.authors.ListAuthors(ctx, page, size)
}

// --- 読者 ---

// AddReader は読者を登録する。
func (s *LibraryService) AddReader(ctx context.Context, reader *model.Reader) (*model.Reader, error) {
	var created *model.Reader
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.readers.CreateReader(ctx, reader)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetReader は指定IDの読者を取得する。
func (s *LibraryService) GetReader(ctx context.Context, id int) (*model.Reader, error) {
	return s.readers.GetReader(ctx, id)
}

// DeleteReader は指定IDの読者を削除する。
func (s *LibraryService) DeleteReader(ctx context.Context, id int) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.readers.DeleteReader(ctx, id)
	})
}

// ListReaders は読者一覧をページング取得する。
func (s *LibraryService) ListReaders(ctx context.Context, page, size int) (*model.ReaderPage, error) {
	return s.readers.ListReaders(ctx, page, size)
}

// --- 蔵書 ---

// AddBook は書籍を登録する。
// 著者の存在確認と書籍作成を同一トランザクション内で行う。
func (s *LibraryService) AddBook(ctx context.Context, book *model.Book) (*model.Book, error) {
	var created *model.Book
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.authors.GetAuthor(ctx, book.AuthorID); err != nil {
			return err
		}
		var err error
		created, err = s.books.CreateBook(ctx, book)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetBook は指定IDの書籍を取得する。
func (s *LibraryService) GetBook(ctx context.Context, id int) (*model.Book, error) {
	return s.books.GetBook(ctx, id)
}

// DeleteBook は指定IDの書籍を削除する。
func (s *LibraryService) DeleteBook(ctx context.Context, id int) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.books.DeleteBook(ctx, id)
	})
}

// ListBooks は蔵書一覧をページング取得する。
func (s *LibraryService) ListBooks(ctx context.Context, page, size int) (*model.BookPage, error) {
	return s.books.ListBooks(ctx, page, size)
}

// --- 貸出・返却 ---

// BorrowBook は書籍を読者に貸し出す。
// 読者の存在確認、行ロック付きの書籍取得、貸出状態への遷移を
// 1つのトランザクション内で実行する。同一書籍への同時貸出は
// 行ロックにより直列化され、勝者は1人だけになる。
func (s *LibraryService) BorrowBook(ctx context.Context, readerID, bookID int) (*model.Book, error) {
	var book *model.Book
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.readers.GetReader(ctx, readerID); err != nil {
			return err
		}
		var err error
		book, err = s.books.Borrow(ctx, bookID, readerID)
		return err
	})
	if err != nil {
		s.recordConflict(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordBorrowSuccess()
	}
	return book, nil
}

// ReturnBook は読者から書籍の返却を受け付ける。
// 読者の存在確認、行ロック付きの書籍取得、貸出可能状態への遷移を
// 1つのトランザクション内で実行する。
func (s *LibraryService) ReturnBook(ctx context.Context, readerID, bookID int) (*model.Book, error) {
	var book *model.Book
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.readers.GetReader(ctx, readerID); err != nil {
			return err
		}
		var err error
		book, err = s.books.Return(ctx, bookID, readerID)
		return err
	})
	if err != nil {
		s.recordConflict(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordReturnSuccess()
	}
	return book, nil
}

// recordConflict は貸出・返却の競合による拒否をメトリクスに記録する。
func (s *LibraryService) recordConflict(err error) {
	if s.metrics == nil {
		return
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return
	}

	switch apiErr.Code {
	case model.ErrCodeBookNotAvailable:
		s.metrics.RecordLendingConflict("not_available")
	case model.ErrCodeBookNotBorrowed:
		s.metrics.RecordLendingConflict("not_borrowed")
	case model.ErrCodeBookWrongReader:
		s.metrics.RecordLendingConflict("wrong_reader")
	}
}
