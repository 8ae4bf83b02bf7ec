// Package model はドメインモデルを定義する。
package model

import "time"

// Author は書籍の著者を表す。
// 同姓同名・同生年月日の著者は同一人物とみなし、重複登録を許さない。
type Author struct {
	ID         int
	FirstName  string
	LastName   string
	MiddleName string // ミドルネームなしの場合は空文字列
	BirthDate  time.Time
	CreatedAt  time.Time
}
