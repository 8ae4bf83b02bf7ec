// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// AuthorRepository は著者データの永続化インターフェース。
type AuthorRepository interface {
	// FindByID は指定IDの著者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int) (*model.Author, error)

	// FindByNameAndBirthDate は氏名と生年月日の自然キーで著者を検索する。
	// middleNameは空文字列をNULLと同一視して比較する。見つからない場合はnilを返す。
	FindByNameAndBirthDate(ctx context.Context, firstName, lastName, middleName string, birthDate time.Time) (*model.Author, error)

	// Create は著者を作成し、採番されたIDを設定して返す。
	Create(ctx context.Context, author *model.Author) error

	// Delete は指定IDの著者を削除する。
	Delete(ctx context.Context, id int) error

	// List は著者一覧をID昇順でページング取得し、総件数とともに返す。
	List(ctx context.Context, page, size int) ([]model.Author, int64, error)
}

// ReaderRepository は読者データの永続化インターフェース。
type ReaderRepository interface {
	// FindByID は指定IDの読者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int) (*model.Reader, error)

	// FindByEmail はメールアドレスで読者を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Reader, error)

	// Create は読者を作成し、採番されたIDを設定して返す。
	Create(ctx context.Context, reader *model.Reader) error

	// Delete は指定IDの読者を削除する。
	Delete(ctx context.Context, id int) error

	// List は読者一覧をID昇順でページング取得し、総件数とともに返す。
	List(ctx context.Context, page, size int) ([]model.Reader, int64, error)
}

// BookRepository は蔵書データの永続化インターフェース。
type BookRepository interface {
	// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int) (*model.Book, error)

	// FindByIDForUpdate は指定IDの書籍を行ロック付き（SELECT ... FOR UPDATE）で取得する。
	// ロックは取得したトランザクションの終了（コミットまたはロールバック）まで保持され、
	// 同一行への他のFindByIDForUpdate・更新はその間ブロックされる。
	// トランザクションのコンテキスト内でのみ呼び出すこと。見つからない場合はnilを返す。
	FindByIDForUpdate(ctx context.Context, id int) (*model.Book, error)

	// FindByTitleAndAuthorID はタイトルと著者IDの自然キーで書籍を検索する。
	// 見つからない場合はnilを返す。
	FindByTitleAndAuthorID(ctx context.Context, title string, authorID int) (*model.Book, error)

	// Create は書籍を作成し、採番されたIDを設定して返す。
	Create(ctx context.Context, book *model.Book) error

	// UpdateBorrowState は書籍の貸出状態3フィールドを同時に更新する。
	UpdateBorrowState(ctx context.Context, book *model.Book) error

	// Delete は指定IDの書籍を削除する。
	Delete(ctx context.Context, id int) error

	// List は蔵書一覧をID昇順でページング取得し、総件数とともに返す。
	List(ctx context.Context, page, size int) ([]model.Book, int64, error)

	// ExistsByAuthorID は指定著者の書籍が1冊でも存在するかを返す。
	// 著者削除ガード用。一覧を取得せずEXISTSで判定する。
	ExistsByAuthorID(ctx context.Context, authorID int) (bool, error)

	// ExistsByReaderID は指定読者に貸出中の書籍が1冊でも存在するかを返す。
	// 読者削除ガード用。一覧を取得せずEXISTSで判定する。
	ExistsByReaderID(ctx context.Context, readerID int) (bool, error)
}
