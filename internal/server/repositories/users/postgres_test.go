package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "avatar", "sports", "interests",
		"location", "phone_number", "terms", "token_version", "created_at", "updated_at",
	}).AddRow("u-1", "alice", "a@x.com", "$2a$10$hash", nil,
		[]byte(`["Football"]`), []byte(`["NBA"]`), "Nairobi", nil, true, int64(0),
		time.Now(), time.Now())
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*token_version,\s*created_at,\s*updated_at\s*$`

	rows := sqlmock.NewRows([]string{"id", "token_version", "created_at", "updated_at"}).
		AddRow("u-1", int64(0), time.Now(), time.Now())
	mock.ExpectQuery(q).
		WithArgs("alice", "a@x.com", "$2a$10$hash").
		WillReturnRows(rows)

	u := &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "$2a$10$hash"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || got.TokenVersion != 0 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "a@x.com", "$2a$10$hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "$2a$10$hash"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("want common.ErrConflict, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@x.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("a@x.com").
		WillReturnRows(userRow())

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.Username != "alice" || got.Sports[0] != "Football" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.Location != "Nairobi" || got.PhoneNumber != "" {
		t.Fatalf("nullable fields mishandled: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnRows(userRow())

	got, err := repo.GetByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUpdateProfile_PartialPatch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	location := "Mombasa"
	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET.*COALESCE.*WHERE\s+id\s*=\s*\$1`).
		WithArgs("u-1", []byte(`["Tennis"]`), nil, "Mombasa", nil, nil, nil).
		WillReturnRows(userRow())

	patch := &models.UserPatch{Sports: []string{"Tennis"}, Location: &location}
	_, err := repo.UpdateProfile(context.Background(), "u-1", patch)
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateProfile(context.Background(), "ghost", &models.UserPatch{})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestIncrementTokenVersion_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+token_version\s*=\s*token_version\s*\+\s*1\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+token_version\s*$`

	rows := sqlmock.NewRows([]string{"token_version"}).AddRow(int64(3))
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.IncrementTokenVersion(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("IncrementTokenVersion error: %v", err)
	}
	if got != 3 {
		t.Fatalf("version = %d, want 3", got)
	}
}

func TestIncrementTokenVersion_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+users\s+SET\s+token_version`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.IncrementTokenVersion(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestSetResetToken_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET\s+reset_token\s*=\s*\$2`).
		WithArgs("u-1", "tok", expires).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))

	if err := repo.SetResetToken(context.Background(), "u-1", "tok", expires); err != nil {
		t.Fatalf("SetResetToken error: %v", err)
	}
}

func TestConsumeResetToken_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,\s*reset_token\s*=\s*NULL.*WHERE\s+reset_token\s*=\s*\$1\s+AND\s+reset_token_expires\s*>\s*now\(\)`

	mock.ExpectQuery(q).
		WithArgs("tok", "$2a$10$newhash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-1"))

	if err := repo.ConsumeResetToken(context.Background(), "tok", "$2a$10$newhash"); err != nil {
		t.Fatalf("ConsumeResetToken error: %v", err)
	}
}

func TestConsumeResetToken_ExpiredOrUsed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs("stale", "$2a$10$newhash").
		WillReturnError(sql.ErrNoRows)

	err := repo.ConsumeResetToken(context.Background(), "stale", "$2a$10$newhash")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want common.ErrInvalidToken, got %v", err)
	}
}
