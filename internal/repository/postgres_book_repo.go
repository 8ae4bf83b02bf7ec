package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// PostgresBookRepo はPostgreSQLを使用した蔵書リポジトリ。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

// scanBook は1行分の書籍レコードを読み取る。
func scanBook(row interface{ Scan(...any) error }) (*model.Book, error) {
	book := &model.Book{}
	var borrowDate sql.NullTime
	var readerID sql.NullInt64

	err := row.Scan(&book.ID, &book.AuthorID, &book.Title, &book.IsBorrowed, &borrowDate, &readerID, &book.CreatedAt)
	if err != nil {
		return nil, err
	}

	if borrowDate.Valid {
		d := borrowDate.Time
		book.BorrowDate = &d
	}
	if readerID.Valid {
		id := int(readerID.Int64)
		book.ReaderID = &id
	}

	return book, nil
}

// FindByID は指定IDの書籍を取得する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByID(ctx context.Context, id int) (*model.Book, error) {
	book, err := scanBook(execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, author_id, title, is_borrowed, borrow_date, reader_id, created_at
		 FROM library.book WHERE id = $1`,
		id,
	))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("書籍の取得に失敗しました: %w", err)
	}
	return book, nil
}

// FindByIDForUpdate は指定IDの書籍を行ロック付きで取得する。見つからない場合はnilを返す。
// ロックはトランザクションの終了まで保持される。同一書籍への同時貸出・返却は
// このロックで直列化され、後続のトランザクションは更新後の状態を読み直す。
func (r *PostgresBookRepo) FindByIDForUpdate(ctx context.Context, id int) (*model.Book, error) {
	book, err := scanBook(execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, author_id, title, is_borrowed, borrow_date, reader_id, created_at
		 FROM library.book WHERE id = $1
		 FOR UPDATE`,
		id,
	))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("書籍のロック付き取得に失敗しました: %w", err)
	}
	return book, nil
}

// FindByTitleAndAuthorID はタイトルと著者IDで書籍を検索する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByTitleAndAuthorID(ctx context.Context, title string, authorID int) (*model.Book, error) {
	book, err := scanBook(execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, author_id, title, is_borrowed, borrow_date, reader_id, created_at
		 FROM library.book WHERE title = $1 AND author_id = $2`,
		title, authorID,
	))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("タイトルと著者IDによる書籍の検索に失敗しました: %w", err)
	}
	return book, nil
}

// Create は書籍を作成し、採番されたIDをbookに設定する。
// 新規書籍は常に貸出可能状態で作成される。
func (r *PostgresBookRepo) Create(ctx context.Context, book *model.Book) error {
	err := execer(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO library.book (author_id, title, is_borrowed, created_at)
		 VALUES ($1, $2, false, now())
		 RETURNING id, created_at`,
		book.AuthorID, book.Title,
	).Scan(&book.ID, &book.CreatedAt)

	if err != nil {
		if uniqueViolation(err) {
			return fmt.Errorf("書籍の作成に失敗しました: %w", ErrUniqueViolation)
		}
		return fmt.Errorf("書籍の作成に失敗しました: %w", err)
	}

	book.IsBorrowed = false
	book.BorrowDate = nil
	book.ReaderID = nil
	return nil
}

// UpdateBorrowState は書籍の貸出状態3フィールドを1文で同時に更新する。
func (r *PostgresBookRepo) UpdateBorrowState(ctx context.Context, book *model.Book) error {
	var borrowDate sql.NullTime
	if book.BorrowDate != nil {
		borrowDate = sql.NullTime{Time: *book.BorrowDate, Valid: true}
	}
	var readerID sql.NullInt64
	if book.ReaderID != nil {
		readerID = sql.NullInt64{Int64: int64(*book.ReaderID), Valid: true}
	}

	_, err := execer(ctx, r.db).ExecContext(ctx,
		`UPDATE library.book
		 SET is_borrowed = $2, borrow_date = $3, reader_id = $4
		 WHERE id = $1`,
		book.ID, book.IsBorrowed, borrowDate, readerID,
	)
	if err != nil {
		return fmt.Errorf("貸出状態の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの書籍を削除する。
func (r *PostgresBookRepo) Delete(ctx context.Context, id int) error {
	_, err := execer(ctx, r.db).ExecContext(ctx,
		`DELETE FROM library.book WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("書籍の削除に失敗しました: %w", err)
	}
	return nil
}

// List は蔵書一覧をID昇順でページング取得し、総件数とともに返す。
func (r *PostgresBookRepo) List(ctx context.Context, page, size int) ([]model.Book, int64, error) {
	var total int64
	if err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT count(*) FROM library.book`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("書籍の件数取得に失敗しました: %w", err)
	}

	rows, err := execer(ctx, r.db).QueryContext(ctx,
		`SELECT id, author_id, title, is_borrowed, borrow_date, reader_id, created_at
		 FROM library.book
		 ORDER BY id ASC
		 LIMIT $1 OFFSET $2`,
		size, page*size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("蔵書一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var book model.Book
		var borrowDate sql.NullTime
		var readerID sql.NullInt64

		if err := rows.Scan(&book.ID, &book.AuthorID, &book.Title, &book.IsBorrowed, &borrowDate, &readerID, &book.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("蔵書一覧の読み取りに失敗しました: %w", err)
		}

		if borrowDate.Valid {
			d := borrowDate.Time
			book.BorrowDate = &d
		}
		if readerID.Valid {
			id := int(readerID.Int64)
			book.ReaderID = &id
		}

		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("蔵書一覧の走査に失敗しました: %w", err)
	}

	return books, total, nil
}

// ExistsByAuthorID は指定著者の書籍が存在するかをEXISTSで判定する。
func (r *PostgresBookRepo) ExistsByAuthorID(ctx context.Context, authorID int) (bool, error) {
	var exists bool
	err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM library.book WHERE author_id = $1)`,
		authorID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("著者の蔵書有無の判定に失敗しました: %w", err)
	}
	return exists, nil
}

// ExistsByReaderID は指定読者に貸出中の書籍が存在するかをEXISTSで判定する。
func (r *PostgresBookRepo) ExistsByReaderID(ctx context.Context, readerID int) (bool, error) {
	var exists bool
	err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM library.book WHERE reader_id = $1)`,
		readerID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("読者の貸出中書籍有無の判定に失敗しました: %w", err)
	}
	return exists, nil
}

// compile-time interface check
var _ BookRepository = (*PostgresBookRepo)(nil)
