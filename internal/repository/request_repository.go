package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/supply-desk-api/internal/models"
)

const requestColumns = `id, created_at, author_id, author_name, tag, body, attachment, deadline,
       handler_id, status, status_changed_at, closing_document`

// RequestRepository persists the request ledger. Identifier allocation rides
// on the table's BIGSERIAL sequence, so the append is atomic: concurrent
// submissions can never observe or reuse each other's id.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create appends a new request row and fills in the allocated id.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	if request.Status == "" {
		request.Status = models.StatusSubmitted
	}
	if request.StatusChangedAt.IsZero() {
		request.StatusChangedAt = request.CreatedAt
	}
	const query = `INSERT INTO requests
	(created_at, author_id, author_name, tag, body, attachment, deadline, handler_id, status, status_changed_at, closing_document)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id`
	row := r.db.QueryRowContext(ctx, query,
		request.CreatedAt,
		request.AuthorID,
		request.AuthorName,
		request.Tag,
		request.Body,
		request.Attachment,
		request.Deadline,
		request.HandlerID,
		request.Status,
		request.StatusChangedAt,
		request.ClosingDocument,
	)
	if err := row.Scan(&request.ID); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns ledger rows matching the filter (newest first) together with
// the total number of matching rows before the limit/offset window.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	args := make([]interface{}, 0, 6)
	conditions := make([]string, 0, 4)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)))
	}
	if filter.HandlerID != "" {
		args = append(args, filter.HandlerID)
		conditions = append(conditions, fmt.Sprintf("handler_id = $%d", len(args)))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		conditions = append(conditions, fmt.Sprintf("tag = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM requests`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + requestColumns + ` FROM requests` + where +
		fmt.Sprintf(" ORDER BY id DESC LIMIT %d OFFSET %d", limit, offset)

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	return requests, total, nil
}

// SetHandler assigns a handler to a submitted request. The status guard makes
// the update a compare-and-swap: when a concurrent transition got there first
// the statement matches zero rows and sql.ErrNoRows is returned.
func (r *RequestRepository) SetHandler(ctx context.Context, id int64, handlerID string, at time.Time) error {
	const query = `UPDATE requests SET handler_id = $1, status = $2, status_changed_at = $3
	WHERE id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, handlerID, models.StatusAssigned, at, id, models.StatusSubmitted)
	if err != nil {
		return fmt.Errorf("assign request: %w", err)
	}
	return requireRowAffected(result, "assign request")
}

// ClaimHandler implements first-claimant-wins for broadcast assignment: the
// swap only succeeds while the request is still unowned.
func (r *RequestRepository) ClaimHandler(ctx context.Context, id int64, handlerID string, at time.Time) error {
	const query = `UPDATE requests SET handler_id = $1, status = $2, status_changed_at = $3
	WHERE id = $4 AND status = $5 AND handler_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, handlerID, models.StatusAssigned, at, id, models.StatusSubmitted)
	if err != nil {
		return fmt.Errorf("claim request: %w", err)
	}
	return requireRowAffected(result, "claim request")
}

// MarkInProgress moves an assigned request into IN_PROGRESS for its handler.
func (r *RequestRepository) MarkInProgress(ctx context.Context, id int64, handlerID string, at time.Time) error {
	const query = `UPDATE requests SET status = $1, status_changed_at = $2
	WHERE id = $3 AND status = $4 AND handler_id = $5`
	result, err := r.db.ExecContext(ctx, query, models.StatusInProgress, at, id, models.StatusAssigned, handlerID)
	if err != nil {
		return fmt.Errorf("start request: %w", err)
	}
	return requireRowAffected(result, "start request")
}

// MarkCompleted finishes an in-progress request, persisting the closing
// document alongside the terminal status in one statement.
func (r *RequestRepository) MarkCompleted(ctx context.Context, id int64, handlerID string, closingDocument *string, at time.Time) error {
	const query = `UPDATE requests SET status = $1, status_changed_at = $2, closing_document = $3
	WHERE id = $4 AND status = $5 AND handler_id = $6`
	result, err := r.db.ExecContext(ctx, query, models.StatusCompleted, at, closingDocument, id, models.StatusInProgress, handlerID)
	if err != nil {
		return fmt.Errorf("complete request: %w", err)
	}
	return requireRowAffected(result, "complete request")
}

// HandlerLoad pairs a handler with the count of their open requests.
type HandlerLoad struct {
	HandlerID string `db:"handler_id"`
	Open      int    `db:"open"`
}

// OpenCountsByHandler aggregates non-terminal requests per handler, used by
// the least-loaded selection policy.
func (r *RequestRepository) OpenCountsByHandler(ctx context.Context) ([]HandlerLoad, error) {
	const query = `SELECT handler_id, COUNT(*) AS open FROM requests
	WHERE handler_id IS NOT NULL AND status <> $1
	GROUP BY handler_id`
	var loads []HandlerLoad
	if err := r.db.SelectContext(ctx, &loads, query, models.StatusCompleted); err != nil {
		return nil, fmt.Errorf("count open requests: %w", err)
	}
	return loads, nil
}

func requireRowAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
