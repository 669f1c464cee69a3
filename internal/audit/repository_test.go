package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_AppendAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Unix(1700000000, 0).UTC()
	mock.ExpectExec("INSERT INTO call_events").
		WithArgs("ev-1", "log-1", "call_triggered", "call triggered", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM call_events").
		WithArgs("log-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "call_log_id", "type", "message", "metadata", "created_at"}).
			AddRow("ev-1", "log-1", "call_triggered", "call triggered", nil, now).
			AddRow("ev-2", "log-1", "provider_rejected", "provider rejected call", `{"status":422}`, now))

	repo := NewPostgresRepo(db)
	require.NoError(t, repo.Append(context.Background(), Event{
		ID: "ev-1", CallLogID: "log-1", Type: EventCallTriggered, Message: "call triggered", CreatedAt: now,
	}))

	evs, err := repo.ListByCall(context.Background(), "log-1")
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, EventProviderRejected, evs[1].Type)
	assert.Equal(t, `{"status":422}`, evs[1].Metadata)
	assert.Empty(t, evs[0].Metadata)
	require.NoError(t, mock.ExpectationsWereMet())
}
