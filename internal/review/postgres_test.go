package review

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomerkin/decision-engine/internal/domain"
)

// newMockStore returns a PostgresStore backed by sqlmock.
func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()

	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return store, mock
}

func reviewColumns() []string {
	return []string{
		"id", "report_id", "reviewer",
		"suggested_risk_level", "reviewed_risk_level", "reviewer_agreed",
		"risk_factor_summary", "notes", "created_at", "updated_at",
	}
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	store, err := NewPostgresStore(nil)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := newMockStore(t)

	created := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
		WithArgs(
			"RPT_1A2B3C4D", "dr.chen",
			"high", "moderate", false,
			"Pathogenic mutation in BRCA1", "Family history considered",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	rv := &Review{
		ReportID:           "RPT_1A2B3C4D",
		Reviewer:           "dr.chen",
		SuggestedRiskLevel: domain.HIGH,
		ReviewedRiskLevel:  domain.MODERATE,
		ReviewerAgreed:     false,
		RiskFactorSummary:  "Pathogenic mutation in BRCA1",
		Notes:              "Family history considered",
	}

	err := store.Save(context.Background(), rv)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rv.ID)
	assert.Equal(t, created, rv.CreatedAt)
	assert.False(t, rv.UpdatedAt.IsZero())
}

func TestPostgresStore_Save_Error(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
		WillReturnError(errors.New("connection reset"))

	err := store.Save(context.Background(), &Review{ReportID: "RPT_1A2B3C4D"})
	assert.ErrorContains(t, err, "failed to save review")
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	rows := sqlmock.NewRows(reviewColumns()).AddRow(
		int64(3), "RPT_CAFE0001", "dr.okafor",
		"high", "moderate", false,
		"", "Penetrance data not yet conclusive", now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).
		WithArgs("RPT_CAFE0001", "dr.okafor").
		WillReturnRows(rows)

	rv, err := store.Get(context.Background(), "RPT_CAFE0001", "dr.okafor")
	require.NoError(t, err)
	require.NotNil(t, rv)
	assert.Equal(t, domain.HIGH, rv.SuggestedRiskLevel)
	assert.Equal(t, domain.MODERATE, rv.ReviewedRiskLevel)
	assert.False(t, rv.ReviewerAgreed)
	assert.Equal(t, "Penetrance data not yet conclusive", rv.Notes)
}

func TestPostgresStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).
		WithArgs("RPT_MISSING0", "").
		WillReturnError(sql.ErrNoRows)

	rv, err := store.Get(context.Background(), "RPT_MISSING0", "")
	require.NoError(t, err)
	assert.Nil(t, rv)
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	rows := sqlmock.NewRows(reviewColumns()).
		AddRow(int64(2), "RPT_00000002", "dr.chen", "low", "low", true, "", "", now, now).
		AddRow(int64(1), "RPT_00000001", "dr.chen", "high", "high", true, "", "", now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(10, 0).
		WillReturnRows(rows)

	list, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "RPT_00000002", list[0].ReportID)
	assert.Equal(t, domain.HIGH, list[1].ReviewedRiskLevel)
}

func TestPostgresStore_Count(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reviews WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Delete(context.Background(), 3)
	assert.NoError(t, err)
}

func TestPostgresStore_ImportJSON_SkipDuplicates(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()

	// First entry exists, second does not.
	existing := sqlmock.NewRows(reviewColumns()).AddRow(
		int64(1), "RPT_1A2B3C4D", "dr.chen",
		"high", "high", true, "", "", now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).
		WithArgs("RPT_1A2B3C4D", "dr.chen").
		WillReturnRows(existing)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).
		WithArgs("RPT_CAFE0001", "dr.okafor").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), now))

	jsonData := `{
		"version": "1.0",
		"count": 2,
		"reviews": [
			{"report_id": "RPT_1A2B3C4D", "reviewer": "dr.chen", "suggested_risk_level": "high", "reviewed_risk_level": "low", "reviewer_agreed": false},
			{"report_id": "RPT_CAFE0001", "reviewer": "dr.okafor", "suggested_risk_level": "moderate", "reviewed_risk_level": "moderate", "reviewer_agreed": true}
		]
	}`

	imported, skipped, err := store.ImportJSON(context.Background(), bytes.NewReader([]byte(jsonData)))
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)
}
