package repository

import (
	"testing"

	"github.com/AnastasiaTimoshchuk/library/internal/model"
)

// PostgresReaderRepoはReaderRepositoryインターフェースを満たすことを検証
func TestPostgresReaderRepo_ImplementsInterface(t *testing.T) {
	var _ ReaderRepository = (*PostgresReaderRepo)(nil)
}

// NewPostgresReaderRepoが正しく初期化されることを検証
func TestNewPostgresReaderRepo_Initializes(t *testing.T) {
	repo := NewPostgresReaderRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Readerモデルのフィールドが正しく構築されることを検証
func TestPostgresReaderRepo_ReaderModel_Fields(t *testing.T) {
	reader := &model.Reader{
		ID:         1,
		FirstName:  "Мария",
		LastName:   "Иванова",
		MiddleName: "Сергеевна",
		Email:      "maria.ivanova@example.com",
	}

	if reader.Email != "maria.ivanova@example.com" {
		t.Errorf("reader.Email = %q, want %q", reader.Email, "maria.ivanova@example.com")
	}
	if reader.LastName != "Иванова" {
		t.Errorf("reader.LastName = %q, want %q", reader.LastName, "Иванова")
	}
}

// ミドルネームが省略可能であることを検証
func TestPostgresReaderRepo_ReaderModel_OptionalMiddleName(t *testing.T) {
	reader := &model.Reader{
		ID:        2,
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
	}

	if reader.MiddleName != "" {
		t.Error("middle_name should be empty by default")
	}
}
