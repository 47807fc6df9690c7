package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/serpent-showdown/internal/domain"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestAccountRepo_Create_OK_and_DuplicateEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	a := &domain.Account{
		ID:        "acc-1",
		Username:  "snakefan",
		Email:     "snake@example.com",
		Password:  "password123",
		CreatedAt: time.Now().UTC(),
	}

	// OK
	mock.ExpectExec(`INSERT INTO accounts \(id, username, email, password, created_at\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(a.ID, a.Username, a.Email, a.Password, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, a))

	// Unique violation on email
	mock.ExpectExec(`INSERT INTO accounts \(id, username, email, password, created_at\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(a.ID, a.Username, a.Email, a.Password, a.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Create(ctx, a)
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAccountRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	created := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, username, email, password, created_at FROM accounts WHERE email = \$1`).
		WithArgs("snake@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password", "created_at"}).
			AddRow("acc-1", "snakefan", "snake@example.com", "password123", created))
	a, err := r.GetByEmail(ctx, "snake@example.com")
	require.NoError(t, err)
	require.Equal(t, "acc-1", a.ID)
	require.Equal(t, "snakefan", a.Username)

	mock.ExpectQuery(`SELECT id, username, email, password, created_at FROM accounts WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepo_Count(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM accounts`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))
	n, err := r.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
}
