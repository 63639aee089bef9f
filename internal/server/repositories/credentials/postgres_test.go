package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credCols = []string{"id", "user_id", "site", "username", "password", "created_at", "updated_at"}

func newRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+credentials\s*\(id,\s*user_id,\s*site,\s*username,\s*password\).*RETURNING\s+created_at,\s*updated_at`).
		WithArgs("c1", "u1", "github.com", "alice@x.com", "CIPHER").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	c := &models.Credential{ID: "c1", UserID: "u1", Site: "github.com", UserName: "alice@x.com", Password: "CIPHER"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.True(t, c.CreatedAt.Equal(now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT\s.*\sFROM credentials WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(credCols).AddRow("c1", "u1", "s", "n", "CIPHER", now, now))

	got, err := repo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "CIPHER", got.Password)

	mock.ExpectQuery(`(?s)SELECT\s.*\sFROM credentials WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByOwner(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT\s.*\sFROM credentials WHERE user_id = \$1\s+ORDER BY created_at, id`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(credCols).
			AddRow("c1", "u1", "a", "", "X", now, now).
			AddRow("c2", "u1", "b", "bob", "Y", now, now))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[1].ID)
}

func TestListByOwner_Empty(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`FROM credentials WHERE user_id`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(credCols))

	got, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByOwner_QueryError(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`FROM credentials WHERE user_id`).WillReturnError(errors.New("boom"))

	_, err := repo.ListByOwner(context.Background(), "u1")
	assert.ErrorContains(t, err, "failed to select credentials")
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	q := `(?s)UPDATE\s+credentials\s+SET.*WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`
	mock.ExpectQuery(q).
		WithArgs("c1", "u1", "site", "name", "NEW").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Update(context.Background(),
		&models.Credential{ID: "c1", UserID: "u1", Site: "site", UserName: "name", Password: "NEW"}))

	mock.ExpectQuery(q).
		WithArgs("c1", "intruder", "site", "name", "NEW").
		WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(),
		&models.Credential{ID: "c1", UserID: "intruder", Site: "site", UserName: "name", Password: "NEW"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepo(t)
	q := `DELETE FROM credentials WHERE id = \$1 AND user_id = \$2`

	mock.ExpectExec(q).WithArgs("c1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "c1", "u1"))

	mock.ExpectExec(q).WithArgs("c1", "u2").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "c1", "u2"), common.ErrorNotFound)

	mock.ExpectExec(q).WithArgs("c1", "u1").WillReturnError(errors.New("db down"))
	assert.ErrorContains(t, repo.Delete(context.Background(), "c1", "u1"), "db error")
}
