package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/supply-desk-api/internal/models"
)

func TestParticipantRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewParticipantRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO participants")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	participant := &models.Participant{
		ID:          "handler-1",
		DisplayName: "N. Pavlov",
		Role:        models.RoleHandler,
	}
	require.NoError(t, repo.Upsert(context.Background(), participant))
	require.False(t, participant.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewParticipantRepository(db)
	rows := sqlmock.NewRows([]string{"id", "display_name", "role", "tag", "created_at"}).
		AddRow("chief-1", "A. Petrov", "AUTHOR", "site-north", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, display_name, role, tag, created_at FROM participants WHERE id =")).
		WithArgs("chief-1").
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), "chief-1")
	require.NoError(t, err)
	require.Equal(t, models.RoleAuthor, found.Role)
	require.NotNil(t, found.Tag)
	require.Equal(t, "site-north", *found.Tag)
}

func TestParticipantRepositoryListByRole(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewParticipantRepository(db)
	rows := sqlmock.NewRows([]string{"id", "display_name", "role", "tag", "created_at"}).
		AddRow("handler-1", "D. Morozov", "HANDLER", nil, time.Now()).
		AddRow("handler-2", "N. Pavlov", "HANDLER", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, display_name, role, tag, created_at FROM participants")).
		WithArgs("HANDLER").
		WillReturnRows(rows)

	role := models.RoleHandler
	list, err := repo.List(context.Background(), models.ParticipantFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "handler-1", list[0].ID)
}
