// Package author は著者登録・管理のドメインロジックを提供する。
package author

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
	"github.com/AnastasiaTimoshchuk/library/internal/repository"
)

// BookExistenceChecker は著者削除ガードに必要な蔵書の存在確認操作。
type BookExistenceChecker interface {
	ExistsByAuthorID(ctx context.Context, authorID int) (bool, error)
}

// AuthorService は著者の登録・取得・削除・一覧のサービス層。
// 同姓同名かつ同一生年月日の著者の重複登録を防ぎ、
// 蔵書が残っている著者の削除を拒否する。
type AuthorService struct {
	authorRepo repository.AuthorRepository
	bookAccess BookExistenceChecker
}

// NewAuthorService はAuthorServiceの新しいインスタンスを生成する。
func NewAuthorService(authorRepo repository.AuthorRepository, bookAccess BookExistenceChecker) *AuthorService {
	return &AuthorService{
		authorRepo: authorRepo,
		bookAccess: bookAccess,
	}
}

// CreateAuthor は著者を登録する。
// 氏名と生年月日が完全に一致する既存著者がいる場合は登録を拒否する。
func (s *AuthorService) CreateAuthor(ctx context.Context, author *model.Author) (*model.Author, error) {
	existing, err := s.authorRepo.FindByNameAndBirthDate(ctx, author.FirstName, author.LastName, author.MiddleName, author.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("著者の重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewAuthorAlreadyExistsError()
	}

	if err := s.authorRepo.Create(ctx, author); err != nil {
		// 事前チェックをすり抜けた同時登録はDBの一意性制約で検出される
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, model.NewAuthorAlreadyExistsError()
		}
		return nil, fmt.Errorf("著者の作成に失敗しました: %w", err)
	}

	return author, nil
}

// GetAuthor は指定IDの著者を取得する。
func (s *AuthorService) GetAuthor(ctx context.Context, id int) (*model.Author, error) {
	author, err := s.authorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("著者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return nil, model.NewAuthorNotFoundError(id)
	}
	return author, nil
}

// DeleteAuthor は指定IDの著者を削除する。
// 著者の書籍が1冊でも登録されている間は削除を拒否する。
func (s *AuthorService) DeleteAuthor(ctx context.Context, id int) error {
	author, err := s.authorRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("著者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return model.NewAuthorNotFoundError(id)
	}

	hasBooks, err := s.bookAccess.ExistsByAuthorID(ctx, id)
	if err != nil {
		return fmt.Errorf("著者の蔵書確認に失敗しました: %w", err)
	}
	if hasBooks {
		return model.NewAuthorHasBooksError(id)
	}

	if err := s.authorRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("著者の削除に失敗しました: %w", err)
	}

	return nil
}

// ListAuthors は著者一覧をページング取得する。
func (s *AuthorService) ListAuthors(ctx context.Context, page, size int) (*model.AuthorPage, error) {
	authors, total, err := s.authorRepo.List(ctx, page, size)
	if err != nil {
		return nil, fmt.Errorf("著者一覧の取得に失敗しました: %w", err)
	}

	totalPages := model.TotalPages(total, size)
	return &model.AuthorPage{
		Content:       authors,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          model.IsLastPage(page, totalPages),
	}, nil
}
