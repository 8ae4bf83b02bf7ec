package handler

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// dateFormat はAPIで受け渡しする日付のフォーマット。
const dateFormat = "2006-01-02"

// maxNameLength は氏名各フィールドの最大長。
const maxNameLength = 100

// maxTitleLength は書籍タイトルの最大長。
const maxTitleLength = 200

// namePattern は氏名に許可する文字。ラテン文字・キリル文字と、
// 語中に限りスペースとハイフンを許可する。
var namePattern = regexp.MustCompile(`^[A-Za-zА-Яа-яЁё](?:[A-Za-zА-Яа-яЁё \-]*[A-Za-zА-Яа-яЁё])?$`)

// emailPattern はメールアドレスの簡易チェック。
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// validateName は氏名フィールドを検証する。
// requiredがfalseの場合は空文字列を許可する。
func validateName(field, value string, required bool) *model.APIError {
	if value == "" {
		if required {
			return model.NewInvalidRequestError(fmt.Sprintf("%sは必須です", field))
		}
		return nil
	}
	if len([]rune(value)) > maxNameLength {
		return model.NewInvalidRequestError(fmt.Sprintf("%sは%d文字以内で指定してください", field, maxNameLength))
	}
	if !namePattern.MatchString(value) {
		return model.NewInvalidRequestError(fmt.Sprintf("%sに使用できない文字が含まれています", field))
	}
	return nil
}

// validateEmail はメールアドレスを検証する。
func validateEmail(value string) *model.APIError {
	if value == "" {
		return model.NewInvalidRequestError("emailは必須です")
	}
	if !emailPattern.MatchString(value) {
		return model.NewInvalidRequestError("emailの形式が不正です")
	}
	return nil
}

// parseBirthDate は生年月日を解析する。未来日は許可しない。
func parseBirthDate(value string) (time.Time, *model.APIError) {
	if value == "" {
		return time.Time{}, model.NewInvalidRequestError("birthDateは必須です")
	}
	d, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, model.NewInvalidRequestError("birthDateはYYYY-MM-DD形式で指定してください")
	}
	if d.After(time.Now()) {
		return time.Time{}, model.NewInvalidRequestError("birthDateに未来の日付は指定できません")
	}
	return d, nil
}

// validateTitle は書籍タイトルを検証する。
func validateTitle(value string) *model.APIError {
	if value == "" {
		return model.NewInvalidRequestError("titleは必須です")
	}
	if len([]rune(value)) > maxTitleLength {
		return model.NewInvalidRequestError(fmt.Sprintf("titleは%d文字以内で指定してください", maxTitleLength))
	}
	return nil
}

// PagingConfig はページングパラメータの既定値と上限。
type PagingConfig struct {
	DefaultSize int
	MaxSize     int
}

// parsePaging はクエリパラメータpage/sizeを解析する。
// pageは0始まり。省略時はpage=0、size=DefaultSize。
func parsePaging(r *http.Request, cfg PagingConfig) (page, size int, apiErr *model.APIError) {
	page = 0
	size = cfg.DefaultSize

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, model.NewInvalidRequestError("pageは0以上の整数で指定してください")
		}
		page = n
	}

	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return 0, 0, model.NewInvalidRequestError("sizeは1以上の整数で指定してください")
		}
		if n > cfg.MaxSize {
			return 0, 0, model.NewInvalidRequestError(fmt.Sprintf("sizeは%d以下で指定してください", cfg.MaxSize))
		}
		size = n
	}

	return page, size, nil
}

// parseIDParam はパスまたはクエリのID文字列を正の整数として解析する。
func parseIDParam(name, value string) (int, *model.APIError) {
	if value == "" {
		return 0, model.NewInvalidRequestError(fmt.Sprintf("%sは必須です", name))
	}
	id, err := strconv.Atoi(value)
	if err != nil || id < 1 {
		return 0, model.NewInvalidRequestError(fmt.Sprintf("%sは正の整数で指定してください", name))
	}
	return id, nil
}
