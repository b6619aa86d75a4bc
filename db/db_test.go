package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codedrip/models"
)

// setupTestDB creates a new test database connection with a mock
func setupTestDB(t *testing.T) (*DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	database := newDB(sqlx.NewDb(db, "sqlmock"))

	cleanup := func() {
		database.Close()
		db.Close()
	}

	return database, mock, cleanup
}

func sampleAnalysis() models.RepoAnalysis {
	return models.RepoAnalysis{
		Name:   "gin",
		GitURL: "https://github.com/gin-gonic/gin",
		Basic: models.BasicInfo{
			FullName: "gin-gonic/gin",
			Stars:    80000,
			Language: "Go",
		},
		Health:     models.HealthResult{Score: 85},
		Languages:  []models.LanguageShare{{Language: "Go", Percentage: 100}},
		AIInsights: "A fast router.",
		AnalyzedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func documentOf(t *testing.T, a models.RepoAnalysis) []byte {
	a.ID = ""
	doc, err := json.Marshal(a)
	require.NoError(t, err)
	return doc
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name        string
		mockSetup   func(sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "successful insert",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("INSERT INTO repo_analyses").
					ExpectExec().
					WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "exec failure",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("INSERT INTO repo_analyses").
					ExpectExec().
					WillReturnError(errors.New("disk full"))
			},
			expectedErr: models.ErrPersistence,
		},
		{
			name: "prepare failure",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("INSERT INTO repo_analyses").
					WillReturnError(errors.New("connection reset"))
			},
			expectedErr: models.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			tt.mockSetup(mock)

			analysis := sampleAnalysis()
			id, err := db.Insert(context.Background(), &analysis)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, id)
			} else {
				require.NoError(t, err)
				assert.Len(t, id, 36)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInsertGeneratesDistinctIDs(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	// The statement is prepared once and reused from the cache.
	prep := mock.ExpectPrepare("INSERT INTO repo_analyses")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))

	analysis := sampleAnalysis()
	first, err := db.Insert(context.Background(), &analysis)
	require.NoError(t, err)
	second, err := db.Insert(context.Background(), &analysis)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAll(t *testing.T) {
	analysis := sampleAnalysis()

	tests := []struct {
		name        string
		mockSetup   func(*testing.T, sqlmock.Sqlmock)
		expectedIDs []string
		expectedErr error
	}{
		{
			name: "two documents",
			mockSetup: func(t *testing.T, mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "document"}).
					AddRow("6f1c2d3e-0000-4000-8000-000000000001", documentOf(t, analysis)).
					AddRow("6f1c2d3e-0000-4000-8000-000000000002", documentOf(t, analysis))
				mock.ExpectPrepare("SELECT id, document").
					ExpectQuery().
					WillReturnRows(rows)
			},
			expectedIDs: []string{
				"6f1c2d3e-0000-4000-8000-000000000001",
				"6f1c2d3e-0000-4000-8000-000000000002",
			},
		},
		{
			name: "empty store",
			mockSetup: func(t *testing.T, mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("SELECT id, document").
					ExpectQuery().
					WillReturnRows(sqlmock.NewRows([]string{"id", "document"}))
			},
			expectedIDs: []string{},
		},
		{
			name: "corrupt document",
			mockSetup: func(t *testing.T, mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "document"}).
					AddRow("6f1c2d3e-0000-4000-8000-000000000001", []byte("{not json"))
				mock.ExpectPrepare("SELECT id, document").
					ExpectQuery().
					WillReturnRows(rows)
			},
			expectedErr: models.ErrPersistence,
		},
		{
			name: "query failure",
			mockSetup: func(t *testing.T, mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("SELECT id, document").
					ExpectQuery().
					WillReturnError(errors.New("timeout"))
			},
			expectedErr: models.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			tt.mockSetup(t, mock)

			result, err := db.FindAll(context.Background())
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				ids := make([]string, 0, len(result))
				for _, a := range result {
					ids = append(ids, a.ID)
					assert.Equal(t, "gin-gonic/gin", a.Basic.FullName)
				}
				assert.Equal(t, tt.expectedIDs, ids)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFindByID(t *testing.T) {
	const id = "6f1c2d3e-0000-4000-8000-000000000001"
	analysis := sampleAnalysis()

	tests := []struct {
		name        string
		id          string
		mockSetup   func(*testing.T, sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name: "successful retrieval",
			id:   id,
			mockSetup: func(t *testing.T, mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "document"}).
					AddRow(id, documentOf(t, analysis))
				mock.ExpectPrepare("SELECT id, document").
					ExpectQuery().
					WithArgs(id).
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			id:   id,
			mockSetup: func(t *testing.T, mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("SELECT id, document").
					ExpectQuery().
					WithArgs(id).
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: models.ErrNotFound,
		},
		{
			name: "driver failure",
			id:   id,
			mockSetup: func(t *testing.T, mock sqlmock.Sqlmock) {
				mock.ExpectPrepare("SELECT id, document").
					ExpectQuery().
					WithArgs(id).
					WillReturnError(errors.New("connection refused"))
			},
			expectedErr: models.ErrPersistence,
		},
		{
			name:        "malformed id",
			id:          "not-an-id",
			mockSetup:   func(t *testing.T, mock sqlmock.Sqlmock) {},
			expectedErr: models.ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()

			tt.mockSetup(t, mock)

			result, err := db.FindByID(context.Background(), tt.id)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, result.ID)
				assert.Equal(t, analysis.Basic, result.Basic)
				assert.Equal(t, analysis.Languages, result.Languages)
				assert.True(t, analysis.AnalyzedAt.Equal(result.AnalyzedAt))
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPing(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	database := newDB(sqlx.NewDb(sqlDB, "sqlmock"))

	mock.ExpectPing()
	assert.NoError(t, database.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	err = database.Ping(context.Background())
	assert.ErrorIs(t, err, models.ErrPersistence)

	assert.NoError(t, mock.ExpectationsWereMet())
}
