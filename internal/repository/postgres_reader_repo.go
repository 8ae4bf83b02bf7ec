package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// PostgresReaderRepo はPostgreSQLを使用した読者リポジトリ。
type PostgresReaderRepo struct {
	db *sql.DB
}

// NewPostgresReaderRepo はPostgresReaderRepoを生成する。
func NewPostgresReaderRepo(db *sql.DB) *PostgresReaderRepo {
	return &PostgresReaderRepo{db: db}
}

// FindByID は指定IDの読者を取得する。見つからない場合はnilを返す。
func (r *PostgresReaderRepo) FindByID(ctx context.Context, id int) (*model.Reader, error) {
	reader := &model.Reader{}
	var middleName sql.NullString

	err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, first_name, last_name, middle_name, email, created_at
		 FROM library.reader WHERE id = $1`,
		id,
	).Scan(&reader.ID, &reader.FirstName, &reader.LastName, &middleName, &reader.Email, &reader.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("読者の取得に失敗しました: %w", err)
	}

	reader.MiddleName = nullStringValue(middleName)
	return reader, nil
}

// FindByEmail はメールアドレスで読者を検索する。見つからない場合はnilを返す。
func (r *PostgresReaderRepo) FindByEmail(ctx context.Context, email string) (*model.Reader, error) {
	reader := &model.Reader{}
	var middleName sql.NullString

	err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, first_name, last_name, middle_name, email, created_at
		 FROM library.reader WHERE email = $1`,
		email,
	).Scan(&reader.ID, &reader.FirstName, &reader.LastName, &middleName, &reader.Email, &reader.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メールアドレスによる読者の検索に失敗しました: %w", err)
	}

	reader.MiddleName = nullStringValue(middleName)
	return reader, nil
}

// Create は読者を作成し、採番されたIDをreaderに設定する。
func (r *PostgresReaderRepo) Create(ctx context.Context, reader *model.Reader) error {
	err := execer(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO library.reader (first_name, last_name, middle_name, email, created_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING id, created_at`,
		reader.FirstName, reader.LastName, nullString(reader.MiddleName), reader.Email,
	).Scan(&reader.ID, &reader.CreatedAt)

	if err != nil {
		if uniqueViolation(err) {
			return fmt.Errorf("読者の作成に失敗しました: %w", ErrUniqueViolation)
		}
		return fmt.Errorf("読者の作成に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの読者を削除する。
func (r *PostgresReaderRepo) Delete(ctx context.Context, id int) error {
	_, err := execer(ctx, r.db).ExecContext(ctx,
		`DELETE FROM library.reader WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("読者の削除に失敗しました: %w", err)
	}
	return nil
}

// List は読者一覧をID昇順でページング取得し、総件数とともに返す。
func (r *PostgresReaderRepo) List(ctx context.Context, page, size int) ([]model.Reader, int64, error) {
	var total int64
	if err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT count(*) FROM library.reader`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("読者の件数取得に失敗しました: %w", err)
	}

	rows, err := execer(ctx, r.db).QueryContext(ctx,
		`SELECT id, first_name, last_name, middle_name, email, created_at
		 FROM library.reader
		 ORDER BY id ASC
		 LIMIT $1 OFFSET $2`,
		size, page*size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("読者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var readers []model.Reader
	for rows.Next() {
		var reader model.Reader
		var middleName sql.NullString

		if err := rows.Scan(&reader.ID, &reader.FirstName, &reader.LastName, &middleName, &reader.Email, &reader.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("読者一覧の読み取りに失敗しました: %w", err)
		}

		reader.MiddleName = nullStringValue(middleName)
		readers = append(readers, reader)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("読者一覧の走査に失敗しました: %w", err)
	}

	return readers, total, nil
}

// compile-time interface check
var _ ReaderRepository = (*PostgresReaderRepo)(nil)
