package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/gorm"

	"tradejournal/src/model"
)

func TestUserRepositoryCreate_DuplicateEmailConflicts(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &GormUserRepository{db: mockDB}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	email := "trader@example.com"
	err := repo.Create(context.Background(), &model.User{Email: &email})

	var conflictErr *model.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestUserRepositoryFindByEmail_MissingUserIsNil(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &GormUserRepository{db: mockDB}

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("nobody@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil for a missing user, got %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestUserRepositoryFindByOAuth(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &GormUserRepository{db: mockDB}

	rows := sqlmock.NewRows([]string{"id", "oauth_provider", "oauth_id"}).
		AddRow(4, "google", "sub-123")

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE oauth_provider = \$1 AND oauth_id = \$2`).
		WithArgs("google", "sub-123", 1).
		WillReturnRows(rows)

	user, err := repo.FindByOAuth(context.Background(), "google", "sub-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != 4 {
		t.Fatalf("expected user 4, got %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestUserRepositoryUpdateUsername_Collision(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &GormUserRepository{db: mockDB}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "username"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	err := repo.UpdateUsername(context.Background(), 1, "swingtrader")

	var conflictErr *model.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
