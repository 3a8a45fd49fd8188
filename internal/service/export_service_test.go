package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/supply-desk-api/internal/models"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
)

type staticLister struct {
	requests []models.Request
}

func (l staticLister) List(_ context.Context, _ models.RequestFilter) ([]models.Request, int, error) {
	return l.requests, len(l.requests), nil
}

func exportFixture() []models.Request {
	handler := "h1"
	doc := "invoice_42.pdf"
	deadline := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	return []models.Request{
		{
			ID:              1,
			CreatedAt:       time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
			AuthorID:        "a1",
			AuthorName:      "Alex",
			Body:            "need 20 boxes of paper",
			Deadline:        &deadline,
			HandlerID:       &handler,
			Status:          models.StatusCompleted,
			StatusChangedAt: time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC),
			ClosingDocument: &doc,
		},
		{
			ID:              2,
			CreatedAt:       time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
			AuthorID:        "a2",
			AuthorName:      "Sam",
			Body:            "printer toner",
			Status:          models.StatusSubmitted,
			StatusChangedAt: time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestExportRequestsCSV(t *testing.T) {
	svc := NewExportService(staticLister{requests: exportFixture()})

	result, err := svc.ExportRequests(context.Background(), models.RequestFilter{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "requests_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	content := string(result.Content)
	assert.Contains(t, content, "ID")
	assert.Contains(t, content, "Closing Document")
	assert.Contains(t, content, "need 20 boxes of paper")
	assert.Contains(t, content, "invoice_42.pdf")
	assert.Contains(t, content, "2026-09-30")
	assert.Contains(t, content, "COMPLETED")
}

func TestExportRequestsDefaultsToCSV(t *testing.T) {
	svc := NewExportService(staticLister{requests: exportFixture()})

	result, err := svc.ExportRequests(context.Background(), models.RequestFilter{}, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
}

func TestExportRequestsPDF(t *testing.T) {
	svc := NewExportService(staticLister{requests: exportFixture()})

	result, err := svc.ExportRequests(context.Background(), models.RequestFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportRequestsUnknownFormat(t *testing.T) {
	svc := NewExportService(staticLister{})

	_, err := svc.ExportRequests(context.Background(), models.RequestFilter{}, "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
