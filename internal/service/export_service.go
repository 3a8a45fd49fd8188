package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/supply-desk-api/internal/models"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
	"github.com/noah-isme/supply-desk-api/pkg/export"
)

// Export formats accepted by the ledger export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{"ID", "Created", "Author", "Tag", "Body", "Deadline", "Handler", "Status", "Status Changed", "Closing Document"}

type requestLister interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
}

// ExportResult bundles the rendered bytes with download metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService re-renders the recorded request ledger as CSV or PDF. It only
// ever exposes columns already stored on the row.
type ExportService struct {
	requests requestLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
}

// NewExportService constructs the service.
func NewExportService(requests requestLister) *ExportService {
	return &ExportService{
		requests: requests,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
	}
}

// ExportRequests renders the ledger rows matching the filter.
func (s *ExportService) ExportRequests(ctx context.Context, filter models.RequestFilter, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	requests, _, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(requests))}
	for _, request := range requests {
		dataset.Rows = append(dataset.Rows, exportRow(request))
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	if format == ExportFormatPDF {
		content, err := s.pdf.Render(dataset, "Request Ledger")
		if err != nil {
			return nil, fmt.Errorf("render pdf export: %w", err)
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("requests_%s.pdf", stamp),
		}, nil
	}

	content, err := s.csv.Render(dataset)
	if err != nil {
		return nil, fmt.Errorf("render csv export: %w", err)
	}
	return &ExportResult{
		Content:     content,
		ContentType: "text/csv",
		Filename:    fmt.Sprintf("requests_%s.csv", stamp),
	}, nil
}

func exportRow(request models.Request) map[string]string {
	row := map[string]string{
		"ID":             strconv.FormatInt(request.ID, 10),
		"Created":        request.CreatedAt.Format("2006-01-02 15:04"),
		"Author":         request.AuthorName,
		"Body":           request.Body,
		"Status":         string(request.Status),
		"Status Changed": request.StatusChangedAt.Format("2006-01-02 15:04"),
	}
	if request.Tag != nil {
		row["Tag"] = *request.Tag
	}
	if request.Deadline != nil {
		row["Deadline"] = request.Deadline.Format(models.DeadlineLayout)
	}
	if request.HandlerID != nil {
		row["Handler"] = *request.HandlerID
	}
	if request.ClosingDocument != nil {
		row["Closing Document"] = *request.ClosingDocument
	}
	return row
}
