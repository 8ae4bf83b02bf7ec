package model

// AuthorPage は著者一覧のページング結果。
type AuthorPage struct {
	Content       []Author
	TotalElements int64
	TotalPages    int
	Last          bool
}

// ReaderPage は読者一覧のページング結果。
type ReaderPage struct {
	Content       []Reader
	TotalElements int64
	TotalPages    int
	Last          bool
}

// BookPage は蔵書一覧のページング結果。
type BookPage struct {
	Content       []Book
	TotalElements int64
	TotalPages    int
	Last          bool
}

// TotalPages は総件数とページサイズから総ページ数を計算する。
// sizeが0以下の場合は0を返す。
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	return pages
}

// IsLastPage は指定ページが最終ページかどうかを返す。
// 総件数を超えたページ指定も最終ページ扱いとする。
func IsLastPage(page int, totalPages int) bool {
	return page >= totalPages-1
}
