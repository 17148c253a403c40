package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/medguard/internal/core/domain"
)

var postColumnNames = []string{"id", "author", "author_id", "content", "likes", "tags", "created_at", "comments", "liked_by"}

func TestCommunityGetPostDecodesAggregates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewCommunityRepository(db)
	rows := sqlmock.NewRows(postColumnNames).AddRow(
		"p1", "Dr. Jane Foster", "", "content", 12, []byte(`["Training","GP"]`), time.Now(),
		[]byte(`[{"id":"c1","author":"Dr. Mark Sloan","author_id":"","content":"Yes","created_at":"2025-03-15T07:00:00+00:00"}]`),
		[]byte(`["u-1"]`),
	)
	mock.ExpectQuery("FROM posts p").WithArgs("p1").WillReturnRows(rows)

	post, err := repo.GetPost(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPost() error = %v", err)
	}
	if post.TotalLikes() != 13 || !post.IsLikedBy("u-1") {
		t.Fatalf("unexpected likes: %+v", post)
	}
	if len(post.Tags) != 2 || len(post.Comments) != 1 || post.Comments[0].Author != "Dr. Mark Sloan" {
		t.Fatalf("unexpected aggregates: %+v", post)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCommunityGetPostReturnsDomainNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewCommunityRepository(db)
	mock.ExpectQuery("FROM posts p").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetPost(context.Background(), "missing"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommunityAddCommentReturnsDomainNotFoundForMissingPost(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewCommunityRepository(db)
	mock.ExpectExec("INSERT INTO post_comments").
		WithArgs("c-1", "missing", "Dr. X", "u-1", "hi", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.AddComment(context.Background(), "missing", &domain.Comment{ID: "c-1", Author: "Dr. X", AuthorID: "u-1", Content: "hi"})
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCommunitySetLikeTogglesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewCommunityRepository(db)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("p1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO post_likes").WithArgs("p1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("p1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("DELETE FROM post_likes").WithArgs("p1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetLike(context.Background(), "p1", "u-1", true); err != nil {
		t.Fatalf("SetLike(true) error = %v", err)
	}
	if err := repo.SetLike(context.Background(), "p1", "u-1", false); err != nil {
		t.Fatalf("SetLike(false) error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
