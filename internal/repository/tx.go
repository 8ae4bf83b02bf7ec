package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// txKey はコンテキストにトランザクションを格納するためのキー。
type txKey struct{}

// withTx はコンテキストにトランザクションを格納する。
func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// txFrom はコンテキストからトランザクションを取り出す。
func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// executor はsql.DBとsql.Txに共通するクエリ実行インターフェース。
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer はコンテキストにトランザクションがあればそれを、なければdbを返す。
// 各リポジトリはこの関数を通じてクエリを実行することで、
// RunInTxのユニットオブワークに透過的に参加する。
func execer(ctx context.Context, db *sql.DB) executor {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return db
}

// TxManager はユニットオブワーク（1トランザクション）の境界を管理する。
// RunInTx内で行われた全リポジトリ操作は、fnが成功すればまとめてコミットされ、
// エラーを返せばまとめてロールバックされる。
// FindByIDForUpdateが取得する行ロックも同じ境界で解放される。
type TxManager struct {
	db *sql.DB
}

// NewTxManager はTxManagerを生成する。
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx はfnを1つのトランザクション内で実行する。
// ネストした呼び出しは既存のトランザクションにそのまま参加する。
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return nil
}
