package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medstock/internal/logging"
	"medstock/internal/model"
)

func expectSeed(mock sqlmock.Sqlmock) {
	for _, tt := range model.TransactionTypes {
		mock.ExpectExec("INSERT INTO transaction_types").
			WithArgs(tt.ID, tt.Code, tt.Label, string(tt.Direction)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
}

func TestEnsureMigrated_FreshDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := logging.New(&buf, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT to_regclass('public.revoked_tokens') IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for range steps {
		mock.ExpectExec(".+").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	expectSeed(mock)

	err = EnsureMigrated(context.Background(), db, logger, "localhost")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), "db_migration_step")
	assert.Contains(t, buf.String(), "db_migration_success")
}

func TestEnsureMigrated_SchemaExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	mock.ExpectQuery("SELECT to_regclass").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	expectSeed(mock)

	err = EnsureMigrated(context.Background(), db, logging.New(&buf, time.UTC), "localhost")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), "db_migration_skip")
	assert.NotContains(t, buf.String(), "db_migration_step")
}

func TestEnsureMigrated_StepFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	mock.ExpectQuery("SELECT to_regclass").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").
		WillReturnError(errors.New("permission denied"))

	err = EnsureMigrated(context.Background(), db, logging.New(&buf, time.UTC), "localhost")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration step create_table_users failed")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestEnsureMigrated_SentinelFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT to_regclass").WillReturnError(errors.New("connection reset"))

	var buf bytes.Buffer
	err = EnsureMigrated(context.Background(), db, logging.New(&buf, time.UTC), "localhost")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check sentinel table")
}
