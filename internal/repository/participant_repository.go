package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/supply-desk-api/internal/models"
)

// ParticipantRepository persists the participant directory.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs the repository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Upsert inserts a directory entry, refreshing only the display name when the
// id already exists. Role and tag follow register-once semantics.
func (r *ParticipantRepository) Upsert(ctx context.Context, participant *models.Participant) error {
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO participants (id, display_name, role, tag, created_at)
	VALUES (:id, :display_name, :role, :tag, :created_at)
	ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name`
	if _, err := r.db.NamedExecContext(ctx, query, participant); err != nil {
		return fmt.Errorf("upsert participant: %w", err)
	}
	return nil
}

// GetByID fetches a directory entry by identifier.
func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (*models.Participant, error) {
	const query = `SELECT id, display_name, role, tag, created_at FROM participants WHERE id = $1`
	var participant models.Participant
	if err := r.db.GetContext(ctx, &participant, query, id); err != nil {
		return nil, err
	}
	return &participant, nil
}

// List returns directory entries matching the filter, ordered by display name.
func (r *ParticipantRepository) List(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(`SELECT id, display_name, role, tag, created_at FROM participants`)

	conditions := make([]string, 0, 3)
	if filter.Role != nil {
		args = append(args, *filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		conditions = append(conditions, fmt.Sprintf("tag = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("display_name ILIKE $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY display_name ASC")

	var participants []models.Participant
	if err := r.db.SelectContext(ctx, &participants, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}
