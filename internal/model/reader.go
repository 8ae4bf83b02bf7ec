package model

import "time"

// Reader は図書館の読者を表す。
// メールアドレスは読者を一意に識別する自然キー。
type Reader struct {
	ID         int
	FirstName  string
	LastName   string
	MiddleName string // ミドルネームなしの場合は空文字列
	Email      string
	CreatedAt  time.Time
}
