package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/medguard/internal/core/domain"
)

func TestNotificationCreateRegistersRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewNotificationRepository(db)
	n := &domain.Notification{ID: "n-1", UserID: "u-1", Type: domain.NotificationSystem, Title: "t", Message: "m", CreatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs("n-1", "u-1", "SYSTEM", "t", "m", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notification_recipients").
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNotificationCreateRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewNotificationRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	if err := repo.Create(context.Background(), &domain.Notification{ID: "n-1", UserID: "u-1"}); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNotificationMarkReadReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewNotificationRepository(db)
	mock.ExpectExec("UPDATE notifications").
		WithArgs("n-9", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.MarkRead(context.Background(), "u-1", "n-9")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNotificationListRecipients(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery("FROM notification_recipients").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u-1").AddRow("u-2"))

	ids, err := repo.ListRecipients(context.Background())
	if err != nil {
		t.Fatalf("ListRecipients() error = %v", err)
	}
	if len(ids) != 2 || ids[1] != "u-2" {
		t.Fatalf("unexpected recipients: %v", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
