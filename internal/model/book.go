package model

import "time"

// Book は蔵書を表す。
// 貸出状態は IsBorrowed / ReaderID / BorrowDate の3フィールドで表現し、
// IsBorrowed == true ⇔ ReaderID != nil ⇔ BorrowDate != nil が常に成り立つ。
// 3フィールドは必ず同時に遷移させること（Lend / Return 経由でのみ変更する）。
type Book struct {
	ID         int
	AuthorID   int
	Title      string
	IsBorrowed bool
	BorrowDate *time.Time // 貸出中のみ設定される
	ReaderID   *int       // 貸出中の読者ID。貸出中のみ設定される
	CreatedAt  time.Time
}

// Lend は書籍を貸出状態に遷移させる。3フィールドを同時に更新する。
// 状態チェック（貸出可能かどうか）は呼び出し側の責務。
func (b *Book) Lend(readerID int, borrowDate time.Time) {
	b.IsBorrowed = true
	b.ReaderID = &readerID
	b.BorrowDate = &borrowDate
}

// GiveBack は書籍を貸出可能状態に戻す。3フィールドを同時にクリアする。
func (b *Book) GiveBack() {
	b.IsBorrowed = false
	b.ReaderID = nil
	b.BorrowDate = nil
}

// StateConsistent は貸出状態の3フィールドが整合しているかを返す。
// DBのCHECK制約と同じ不変条件をアプリケーション側でも検証できるようにする。
func (b *Book) StateConsistent() bool {
	return b.IsBorrowed == (b.ReaderID != nil) && b.IsBorrowed == (b.BorrowDate != nil)
}
