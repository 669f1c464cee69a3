package calls

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var callLogColumns = []string{
	"id", "agent_config_id", "provider_call_id", "driver_name", "driver_phone", "load_number",
	"call_status", "started_at", "completed_at", "call_duration", "full_transcript", "structured_data", "updated_at",
}

func TestPostgresRepo_CreateStoresNullProviderID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO call_logs").
		WithArgs("log-1", "cfg-1", nil, "Sam", "+15551234567", "789-B", "initiated", t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresRepo(db).Create(context.Background(), CallLog{
		ID:            "log-1",
		AgentConfigID: "cfg-1",
		DriverName:    "Sam",
		DriverPhone:   "+15551234567",
		LoadNumber:    "789-B",
		Status:        CallStatusInitiated,
		StartedAt:     t0,
		UpdatedAt:     t0,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetByProviderCallID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	done := t0.Add(time.Minute)
	mock.ExpectQuery("WHERE provider_call_id = \\$1").
		WithArgs("rc-1").
		WillReturnRows(sqlmock.NewRows(callLogColumns).AddRow(
			"log-1", "cfg-1", "rc-1", "Sam", "+15551234567", "789-B",
			"completed", t0, done, int64(95), "agent: Hi\nuser: Arrived", []byte(`{"driver_status":"Arrived"}`), done,
		))

	got, err := NewPostgresRepo(db).GetByProviderCallID(context.Background(), "rc-1")
	require.NoError(t, err)
	assert.Equal(t, CallStatusCompleted, got.Status)
	assert.Equal(t, "rc-1", got.ProviderCallID)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, done, *got.CompletedAt)
	require.NotNil(t, got.CallDuration)
	assert.Equal(t, 95, *got.CallDuration)
	assert.JSONEq(t, `{"driver_status":"Arrived"}`, string(got.StructuredData))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetNullColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE id = \\$1").
		WithArgs("log-1").
		WillReturnRows(sqlmock.NewRows(callLogColumns).AddRow(
			"log-1", "cfg-1", nil, "Sam", "+15551234567", "789-B",
			"initiated", t0, nil, nil, nil, nil, t0,
		))

	got, err := NewPostgresRepo(db).Get(context.Background(), "log-1")
	require.NoError(t, err)
	assert.Empty(t, got.ProviderCallID)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.CallDuration)
	assert.Nil(t, got.FullTranscript)
	assert.Nil(t, got.StructuredData)
}

func TestPostgresRepo_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM call_logs").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err = NewPostgresRepo(db).Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresRepo_MarkInProgressReportsSkippedUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE call_logs").
		WithArgs("log-1", "rc-1", t0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewPostgresRepo(db).MarkInProgress(context.Background(), "log-1", "rc-1", t0)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Complete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE call_logs").
		WithArgs("log-1", t0, 95, "agent: Hi\nuser: Arrived", `{"driver_status":"Arrived"}`, "rc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := NewPostgresRepo(db).Complete(context.Background(), "log-1", Completion{
		ProviderCallID: "rc-1",
		CompletedAt:    t0,
		Duration:       95,
		Transcript:     "agent: Hi\nuser: Arrived",
		StructuredData: []byte(`{"driver_status":"Arrived"}`),
	})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
