// internal/history/store_test.go
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "green-genie/internal/common/errors"
	"green-genie/internal/common/logger"
	"green-genie/internal/models"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(db, logger.NewTestLogger(t)), mock
}

func sampleInteraction() models.Interaction {
	return models.Interaction{
		ID:       "8b8f4b2e-0000-4000-8000-000000000001",
		Sector:   "Renewable Energy",
		Risk:     "Medium",
		FreeText: "long term growth",
		Prompt:   "You are an investment assistant...",
		Companies: []models.Recommendation{
			{Company: "SolarCo", Sector: "Renewable Energy", ESGScore: 91},
		},
		Explanation: "Diversify across solar and wind.",
		CreatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_Insert(t *testing.T) {
	store, mock := newTestStore(t)
	it := sampleInteraction()

	companies, err := json.Marshal(it.Companies)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO interactions").
		WithArgs(it.ID, it.Sector, it.Risk, it.FreeText, it.Prompt, companies, it.Explanation, it.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Insert(context.Background(), it))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertFailure(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO interactions").
		WillReturnError(errors.New("connection reset"))

	err := store.Insert(context.Background(), sampleInteraction())
	require.Error(t, err)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeHistoryWriteFailed, stdErr.Code)
}

func TestStore_Recent(t *testing.T) {
	store, mock := newTestStore(t)
	it := sampleInteraction()

	companies, err := json.Marshal(it.Companies)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "sector", "risk", "free_text", "prompt", "companies", "explanation", "created_at"}).
		AddRow(it.ID, it.Sector, it.Risk, it.FreeText, it.Prompt, companies, it.Explanation, it.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM interactions").
		WithArgs(10).
		WillReturnRows(rows)

	got, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, it.ID, got[0].ID)
	assert.Equal(t, it.Companies, got[0].Companies)
}

func TestStore_RecentDefaultsLimit(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT (.+) FROM interactions").
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sector", "risk", "free_text", "prompt", "companies", "explanation", "created_at"}))

	got, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Get(t *testing.T) {
	store, mock := newTestStore(t)
	it := sampleInteraction()

	companies, err := json.Marshal(it.Companies)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "sector", "risk", "free_text", "prompt", "companies", "explanation", "created_at"}).
		AddRow(it.ID, it.Sector, it.Risk, it.FreeText, it.Prompt, companies, it.Explanation, it.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM interactions WHERE").
		WithArgs(it.ID).
		WillReturnRows(rows)

	got, err := store.Get(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Equal(t, it.Explanation, got.Explanation)
}

func TestStore_GetNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT (.+) FROM interactions WHERE").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeInteractionNotFound, stdErr.Code)
}

func TestStore_EnsureSchema(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS interactions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
