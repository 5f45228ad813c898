package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/kstepanov/dormhub/internal/errs"
	"github.com/kstepanov/dormhub/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestUserRepo_Create_OK_and_Duplicate(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	u := &model.User{
		ID:      uuid.Must(uuid.NewV4()),
		Name:    "alice",
		PwdHash: []byte("h"),
		Salt:    []byte("s"),
	}

	// OK
	mock.ExpectExec(`INSERT INTO users \(id, name, pwd_hash, salt\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(u.ID, u.Name, u.PwdHash, u.Salt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	// Unique violation maps to ErrAlreadyExists
	mock.ExpectExec(`INSERT INTO users \(id, name, pwd_hash, salt\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(u.ID, u.Name, u.PwdHash, u.Salt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err := r.Create(ctx, u)
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestUserRepo_GetByName(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, name, pwd_hash, salt, created_at FROM users WHERE name=\$1`).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "pwd_hash", "salt", "created_at"}).
			AddRow(id, "alice", []byte("h"), []byte("s"), pgxmock.AnyArg()))
	u, err := r.GetByName(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Name)
	require.Equal(t, id, u.ID)

	mock.ExpectQuery(`SELECT id, name, pwd_hash, salt, created_at FROM users WHERE name=\$1`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByName(ctx, "nobody")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewUserRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, name, pwd_hash, salt, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "pwd_hash", "salt", "created_at"}).
			AddRow(id, "alice", []byte("h"), []byte("s"), pgxmock.AnyArg()))
	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, u.ID)

	mock.ExpectQuery(`SELECT id, name, pwd_hash, salt, created_at FROM users WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
