// Package book は蔵書管理と貸出・返却のドメインロジックを提供する。
package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
	"github.com/AnastasiaTimoshchuk/library/internal/repository"
)

// BookService は書籍の登録・取得・削除・一覧と貸出・返却のサービス層。
// 貸出・返却はSELECT ... FOR UPDATEで取得した行に対して状態遷移を適用するため、
// BorrowとReturnはトランザクションのコンテキスト内で呼び出すこと。
type BookService struct {
	bookRepo repository.BookRepository
	location *time.Location
	now      func() time.Time
}

// NewBookService はBookServiceの新しいインスタンスを生成する。
// locationは貸出日の日付を決めるタイムゾーン。
func NewBookService(bookRepo repository.BookRepository, location *time.Location) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		location: location,
		now:      time.Now,
	}
}

// CreateBook は書籍を登録する。
// 同一著者の同一タイトルの既存書籍がある場合は登録を拒否する。
// 新規書籍は必ず貸出可能状態で登録される。
func (s *BookService) CreateBook(ctx context.Context, book *model.Book) (*model.Book, error) {
	existing, err := s.bookRepo.FindByTitleAndAuthorID(ctx, book.Title, book.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("書籍の重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewBookAlreadyExistsError(book.Title)
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		// 事前チェックをすり抜けた同時登録はDBの一意性制約で検出される
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, model.NewBookAlreadyExistsError(book.Title)
		}
		return nil, fmt.Errorf("書籍の作成に失敗しました: %w", err)
	}

	return book, nil
}

// GetBook は指定IDの書籍を取得する。
func (s *BookService) GetBook(ctx context.Context, id int) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("書籍の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(id)
	}
	return book, nil
}

// DeleteBook は指定IDの書籍を削除する。
// 貸出中の書籍は返却されるまで削除を拒否する。
func (s *BookService) DeleteBook(ctx context.Context, id int) error {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("書籍の取得に失敗しました: %w", err)
	}
	if book == nil {
		return model.NewBookNotFoundError(id)
	}
	if book.IsBorrowed {
		return model.NewBookBorrowedError(id)
	}

	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("書籍の削除に失敗しました: %w", err)
	}

	return nil
}

// Borrow は書籍を読者に貸し出す。
// 行ロック付きで書籍を取得し、貸出可能な場合のみ貸出中に遷移させる。
// 既に貸出中の場合はエラーを返す。貸出日は設定タイムゾーンの当日日付。
func (s *BookService) Borrow(ctx context.Context, bookID, readerID int) (*model.Book, error) {
	book, err := s.bookRepo.FindByIDForUpdate(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("書籍のロック取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}
	if book.IsBorrowed {
		return nil, model.NewBookNotAvailableError(bookID)
	}

	book.Lend(readerID, s.today())

	if err := s.bookRepo.UpdateBorrowState(ctx, book); err != nil {
		return nil, fmt.Errorf("貸出状態の更新に失敗しました: %w", err)
	}

	return book, nil
}

// Return は読者から書籍の返却を受け付ける。
// 行ロック付きで書籍を取得し、貸出中かつ借主本人からの返却の場合のみ
// 貸出可能状態に戻す。
func (s *BookService) Return(ctx context.Context, bookID, readerID int) (*model.Book, error) {
	book, err := s.bookRepo.FindByIDForUpdate(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("書籍のロック取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(bookID)
	}
	if !book.IsBorrowed {
		return nil, model.NewBookNotBorrowedError(bookID)
	}
	if book.ReaderID == nil || *book.ReaderID != readerID {
		return nil, model.NewBookWrongReaderError(bookID, readerID)
	}

	book.GiveBack()

	if err := s.bookRepo.UpdateBorrowState(ctx, book); err != nil {
		return nil, fmt.Errorf("貸出状態の更新に失敗しました: %w", err)
	}

	return book, nil
}

// ListBooks は蔵書一覧をページング取得する。
func (s *BookService) ListBooks(ctx context.Context, page, size int) (*model.BookPage, error) {
	books, total, err := s.bookRepo.List(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("蔵書一覧の取得に失敗しました: %w", err)
	}

	totalPages := model.TotalPages(total, size)
	return &model.BookPage{
		Content:       books,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          model.IsLastPage(page, totalPages),
	}, nil
}

// today は設定タイムゾーンにおける当日の日付（時刻0時）を返す。
func (s *BookService) today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}
