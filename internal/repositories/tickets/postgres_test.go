package tickets

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func ticketColumns() []string {
	return []string{"id", "owner", "encrypted_payload", "created_at", "expires_at", "max_uses", "use_count", "valid"}
}

func TestPostgres_Create_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+tickets\s*\(id,\s*owner,\s*encrypted_payload,\s*created_at,\s*expires_at,\s*max_uses,\s*use_count,\s*valid\)`

	now := time.Now()
	tk := &models.ShareTicket{
		ID: "t1", Owner: "alice", EncryptedPayload: []byte("blob"),
		CreatedAt: now, ExpiresAt: now.Add(time.Hour), MaxUses: 2, Valid: true,
	}

	mock.ExpectExec(q).
		WithArgs("t1", "alice", []byte("blob"), now, now.Add(time.Hour), 2, 0, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), tk); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgres_Create_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+tickets`).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.ShareTicket{ID: "t1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgres_Get_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(ticketColumns()).
		AddRow("t1", "alice", []byte("blob"), now, now.Add(time.Hour), 2, 1, true)

	mock.ExpectQuery(`(?s)^\s*SELECT\s+.*\s+FROM\s+tickets\s+WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("t1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ID != "t1" || got.UseCount != 1 || !got.Valid {
		t.Fatalf("unexpected ticket: %+v", got)
	}
}

func TestPostgres_Get_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*SELECT\s+.*\s+FROM\s+tickets\s+WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestPostgres_Consume_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(ticketColumns()).
		AddRow("t1", "alice", []byte("blob"), now, now.Add(time.Hour), 2, 2, false)

	mock.ExpectQuery(`(?s)^\s*UPDATE\s+tickets\s+SET\s+use_count\s*=\s*use_count\s*\+\s*1.*RETURNING`).
		WithArgs("t1", now).
		WillReturnRows(rows)

	got, err := repo.Consume(context.Background(), "t1", now)
	if err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if got.UseCount != 2 || got.Valid {
		t.Fatalf("unexpected ticket: %+v", got)
	}
}

func TestPostgres_Consume_GuardFailed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)^\s*UPDATE\s+tickets\s+SET\s+use_count`).
		WithArgs("t1", now).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "t1", now)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestPostgres_Invalidate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+tickets\s+SET\s+valid\s*=\s*FALSE\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Invalidate(context.Background(), "t1"); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}

	mock.ExpectExec(q).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Invalidate(context.Background(), "ghost"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestPostgres_ListByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(ticketColumns()).
		AddRow("t1", "alice", []byte("b1"), now, now.Add(time.Hour), 0, 0, true).
		AddRow("t2", "alice", []byte("b2"), now.Add(time.Second), now.Add(time.Hour), 1, 1, false)

	mock.ExpectQuery(`(?s)^\s*SELECT\s+.*\s+FROM\s+tickets\s+WHERE\s+owner\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s*$`).
		WithArgs("alice").
		WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t2" || got[1].Valid {
		t.Fatalf("unexpected tickets: %+v", got)
	}
}
