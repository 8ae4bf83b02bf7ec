// Package reader は読者登録・管理のドメインロジックを提供する。
package reader

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
	"github.com/AnastasiaTimoshchuk/library/internal/repository"
)

// BorrowedBookChecker は読者削除ガードに必要な貸出中書籍の存在確認操作。
type BorrowedBookChecker interface {
	ExistsByReaderID(ctx context.Context, readerID int) (bool, error)
}

// ReaderService は読者の登録・取得・削除・一覧のサービス層。
// メールアドレスの重複登録を防ぎ、貸出中の書籍を持つ読者の削除を拒否する。
type ReaderService struct {
	readerRepo repository.ReaderRepository
	bookAccess BorrowedBookChecker
}

// NewReaderService はReaderServiceの新しいインスタンスを生成する。
func NewReaderService(readerRepo repository.ReaderRepository, bookAccess BorrowedBookChecker) *ReaderService {
	return &ReaderService{
		readerRepo: readerRepo,
		bookAccess: bookAccess,
	}
}

// CreateReader は読者を登録する。
// 同一メールアドレスの既存読者がいる場合は登録を拒否する。
func (s *ReaderService) CreateReader(ctx context.Context, reader *model.Reader) (*model.Reader, error) {
	existing, err := s.readerRepo.FindByEmail(ctx, reader.Email)
	if err != nil {
		return nil, fmt.Errorf("読者の重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewReaderAlreadyExistsError(reader.Email)
	}

	if err := s.readerRepo.Create(ctx, reader); err != nil {
		// 事前チェックをすり抜けた同時登録はDBの一意性制約で検出される
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, model.NewReaderAlreadyExistsError(reader.Email)
		}
		return nil, fmt.Errorf("読者の作成に失敗しました: %w", err)
	}

	return reader, nil
}

// GetReader は指定IDの読者を取得する。
func (s *ReaderService) GetReader(ctx context.Context, id int) (*model.Reader, error) {
	reader, err := s.readerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("読者の取得に失敗しました: %w", err)
	}
	if reader == nil {
		return nil, model.NewReaderNotFoundError(id)
	}
	return reader, nil
}

// DeleteReader は指定IDの読者を削除する。
// 読者が借りている書籍が1冊でも残っている間は削除を拒否する。
func (s *ReaderService) DeleteReader(ctx context.Context, id int) error {
	reader, err := s.readerRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("読者の取得に失敗しました: %w", err)
	}
	if reader == nil {
		return model.NewReaderNotFoundError(id)
	}

	hasBorrowed, err := s.bookAccess.ExistsByReaderID(ctx, id)
	if err != nil {
		return fmt.Errorf("読者の貸出状況確認に失敗しました: %w", err)
	}
	if hasBorrowed {
		return model.NewReaderHasBooksError(id)
	}

	if err := s.readerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("読者の削除に失敗しました: %w", err)
	}

	return nil
}

// ListReaders は読者一覧をページング取得する。
func (s *ReaderService) ListReaders(ctx context.Context, page, size int) (*model.ReaderPage, error) {
	readers, total, err := s.readerRepo.List(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("読者一覧の取得に失敗しました: %w", err)
	}

	totalPages := model.TotalPages(total, size)
	return &model.ReaderPage{
		Content:       readers,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          model.IsLastPage(page, totalPages),
	}, nil
}
