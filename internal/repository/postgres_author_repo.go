package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// ErrUniqueViolation はDBの一意性制約違反を表す。
// サービス層の事前チェックをすり抜けた同時登録の競合は、
// 最終的にこのエラーとしてDB制約で検出される。
var ErrUniqueViolation = errors.New("unique constraint violation")

// uniqueViolation はpqのエラーコード23505（unique_violation）かどうかを判定する。
func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// PostgresAuthorRepo はPostgreSQLを使用した著者リポジトリ。
type PostgresAuthorRepo struct {
	db *sql.DB
}

// NewPostgresAuthorRepo はPostgresAuthorRepoを生成する。
func NewPostgresAuthorRepo(db *sql.DB) *PostgresAuthorRepo {
	return &PostgresAuthorRepo{db: db}
}

// FindByID は指定IDの著者を取得する。見つからない場合はnilを返す。
func (r *PostgresAuthorRepo) FindByID(ctx context.Context, id int) (*model.Author, error) {
	author := &model.Author{}
	var middleName sql.NullString

	err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, first_name, last_name, middle_name, birth_date, created_at
		 FROM library.author WHERE id = $1`,
		id,
	).Scan(&author.ID, &author.FirstName, &author.LastName, &middleName, &author.BirthDate, &author.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("著者の取得に失敗しました: %w", err)
	}

	author.MiddleName = nullStringValue(middleName)
	return author, nil
}

// FindByNameAndBirthDate は氏名と生年月日の自然キーで著者を検索する。見つからない場合はnilを返す。
// middle_nameはNULL同士も一致とみなすためIS NOT DISTINCT FROMで比較する。
func (r *PostgresAuthorRepo) FindByNameAndBirthDate(ctx context.Context, firstName, lastName, middleName string, birthDate time.Time) (*model.Author, error) {
	author := &model.Author{}
	var middle sql.NullString

	err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, first_name, last_name, middle_name, birth_date, created_at
		 FROM library.author
		 WHERE first_name = $1 AND last_name = $2
		   AND middle_name IS NOT DISTINCT FROM $3
		   AND birth_date = $4`,
		firstName, lastName, nullString(middleName), birthDate,
	).Scan(&author.ID, &author.FirstName, &author.LastName, &middle, &author.BirthDate, &author.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("自然キーによる著者の検索に失敗しました: %w", err)
	}

	author.MiddleName = nullStringValue(middle)
	return author, nil
}

// Create は著者を作成し、採番されたIDをauthorに設定する。
func (r *PostgresAuthorRepo) Create(ctx context.Context, author *model.Author) error {
	err := execer(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO library.author (first_name, last_name, middle_name, birth_date, created_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING id, created_at`,
		author.FirstName, author.LastName, nullString(author.MiddleName), author.BirthDate,
	).Scan(&author.ID, &author.CreatedAt)

	if err != nil {
		if uniqueViolation(err) {
			return fmt.Errorf("著者の作成に失敗しました: %w", ErrUniqueViolation)
		}
		return fmt.Errorf("著者の作成に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの著者を削除する。
func (r *PostgresAuthorRepo) Delete(ctx context.Context, id int) error {
	_, err := execer(ctx, r.db).ExecContext(ctx,
		`DELETE FROM library.author WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("著者の削除に失敗しました: %w", err)
	}
	return nil
}

// List は著者一覧をID昇順でページング取得し、総件数とともに返す。
func (r *PostgresAuthorRepo) List(ctx context.Context, page, size int) ([]model.Author, int64, error) {
	var total int64
	if err := execer(ctx, r.db).QueryRowContext(ctx,
		`SELECT count(*) FROM library.author`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("著者の件数取得に失敗しました: %w", err)
	}

	rows, err := execer(ctx, r.db).QueryContext(ctx,
		`SELECT id, first_name, last_name, middle_name, birth_date, created_at
		 FROM library.author
		 ORDER BY id ASC
		 LIMIT $1 OFFSET $2`,
		size, page*size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("著者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var authors []model.Author
	for rows.Next() {
		var author model.Author
		var middleName sql.NullString

		if err := rows.Scan(&author.ID, &author.FirstName, &author.LastName, &middleName, &author.BirthDate, &author.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("著者一覧の読み取りに失敗しました: %w", err)
		}

		author.MiddleName = nullStringValue(middleName)
		authors = append(authors, author)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("著者一覧の走査に失敗しました: %w", err)
	}

	return authors, total, nil
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ AuthorRepository = (*PostgresAuthorRepo)(nil)
