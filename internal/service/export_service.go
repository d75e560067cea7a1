package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/inbalnitzani/Integrations/internal/models"
	appErrors "github.com/inbalnitzani/Integrations/pkg/errors"
	"github.com/inbalnitzani/Integrations/pkg/export"
)

// ExportFormat selects the catalog export encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered document and its HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

var exportHeaders = []string{"Name", "Type", "Supplier", "Description", "Tags", "Created At"}

// ExportService renders the filtered catalog into downloadable documents.
type ExportService struct {
	repo   integrationRepository
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(repo integrationRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, logger: logger}
}

// Export renders every record matching the filter, ignoring pagination.
func (s *ExportService) Export(ctx context.Context, filter models.IntegrationFilter, format ExportFormat) (*ExportResult, error) {
	records, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load integrations for export")
	}

	table := export.Table{
		Title:   "Integrations Catalog",
		Headers: exportHeaders,
		Rows:    make([][]string, 0, len(records)),
	}
	for _, record := range records {
		table.Rows = append(table.Rows, []string{
			record.Name,
			string(record.Type),
			record.Supplier,
			record.Description,
			record.Tags,
			record.CreatedAt.Format("2006-01-02"),
		})
	}

	switch ExportFormat(strings.ToLower(string(format))) {
	case FormatCSV:
		content, err := export.RenderCSV(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "integrations.csv"}, nil
	case FormatPDF:
		content, err := export.RenderPDF(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "integrations.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
