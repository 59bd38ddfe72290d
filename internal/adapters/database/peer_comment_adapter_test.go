package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/infrastructure/clients/postgres"
	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

func setupMockClient(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return postgres.NewClientFromDB(mockDB), mock
}

func TestPeerCommentAdapter_Create(t *testing.T) {
	t.Run("inserts when consultation is shared", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := NewPeerCommentAdapter(client)

		mock.ExpectExec("INSERT INTO peer_comments").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.Create(context.Background(), &entities.PeerComment{
			ConsultationID: "consult-1",
			UserID:         "user-1",
			Comment:        "Nice safety-netting",
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when the commenting user does not exist", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := NewPeerCommentAdapter(client)

		mock.ExpectExec("INSERT INTO peer_comments").
			WillReturnError(&pq.Error{Code: "23503", Constraint: "peer_comments_user_id_fkey"})

		err := adapter.Create(context.Background(), &entities.PeerComment{
			ConsultationID: "consult-1",
			UserID:         "ghost",
			Comment:        "hello",
		})

		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
		assert.Contains(t, err.Error(), "user with id ghost")
	})

	t.Run("returns forbidden when consultation exists but is not shared", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := NewPeerCommentAdapter(client)

		mock.ExpectExec("INSERT INTO peer_comments").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := adapter.Create(context.Background(), &entities.PeerComment{
			ConsultationID: "consult-1",
			UserID:         "user-1",
			Comment:        "hello",
		})

		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeForbidden, appErr.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when consultation does not exist", func(t *testing.T) {
		client, mock := setupMockClient(t)
		adapter := NewPeerCommentAdapter(client)

		mock.ExpectExec("INSERT INTO peer_comments").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		err := adapter.Create(context.Background(), &entities.PeerComment{
			ConsultationID: "missing",
			UserID:         "user-1",
			Comment:        "hello",
		})

		require.Error(t, err)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	})
}

func TestPeerCommentAdapter_ListByConsultation(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPeerCommentAdapter(client)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "first_name", "last_name", "comment", "created_at"}).
		AddRow("comment-1", "user-1", "Aisha", "Bello", "Good rapport", now).
		AddRow("comment-2", "user-2", nil, nil, "Missed red flags", now)

	mock.ExpectQuery("SELECT pc.id, pc.user_id").
		WithArgs("consult-1").
		WillReturnRows(rows)

	comments, err := adapter.ListByConsultation(context.Background(), "consult-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, "Aisha Bello", comments[0].Username)
	assert.Equal(t, "Anonymous", comments[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPeerCommentAdapter_CountByConsultation(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPeerCommentAdapter(client)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("consult-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := adapter.CountByConsultation(context.Background(), "consult-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Aisha Bello", displayName("Aisha", "Bello"))
	assert.Equal(t, "Aisha", displayName("Aisha", ""))
	assert.Equal(t, "Bello", displayName("", "Bello"))
	assert.Equal(t, "Anonymous", displayName("", ""))
}
