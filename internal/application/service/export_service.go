package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/domain/entity"
)

// WorkbookRenderer turns an event summary into a spreadsheet
type WorkbookRenderer interface {
	Render(summary *EventSummary, expenses []*entity.Expense) ([]byte, error)
}

// ExportFile is a rendered export ready to be served or stored
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ExportService renders budget exports
type ExportService interface {
	Export(ctx context.Context, eventID int64) (*ExportFile, error)

	// ExportToStorage renders the export and saves it, returning the stored path
	ExportToStorage(ctx context.Context, eventID int64) (string, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportServiceImpl struct {
	summaries   SummaryService
	expenseRepo port.ExpenseRepository
	renderer    WorkbookRenderer
	storage     port.FileStorage
	logger      Logger
	now         func() time.Time
}

// NewExportService creates a new ExportService. storage may be nil when
// exports are only streamed.
func NewExportService(
	summaries SummaryService,
	expenseRepo port.ExpenseRepository,
	renderer WorkbookRenderer,
	storage port.FileStorage,
	logger Logger,
) ExportService {
	return &exportServiceImpl{
		summaries:   summaries,
		expenseRepo: expenseRepo,
		renderer:    renderer,
		storage:     storage,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *exportServiceImpl) Export(ctx context.Context, eventID int64) (*ExportFile, error) {
	summary, err := s.summaries.EventSummary(ctx, eventID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("Failed to list expenses for export", "error", err, "event_id", eventID)
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	content, err := s.renderer.Render(summary, expenses)
	if err != nil {
		s.logger.Error("Failed to render export", "error", err, "event_id", eventID)
		return nil, fmt.Errorf("render export: %w", err)
	}

	return &ExportFile{
		Name:        fmt.Sprintf("event-%d-budget-%s.xlsx", eventID, s.now().UTC().Format("20060102-150405")),
		ContentType: xlsxContentType,
		Content:     content,
	}, nil
}

func (s *exportServiceImpl) ExportToStorage(ctx context.Context, eventID int64) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("export storage is not configured")
	}

	file, err := s.Export(ctx, eventID)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("event-%d/%s", eventID, file.Name)
	if err := s.storage.Save(ctx, path, file.Content); err != nil {
		s.logger.Error("Failed to store export", "error", err, "path", path)
		return "", fmt.Errorf("store export: %w", err)
	}

	s.logger.Info("Export stored", "event_id", eventID, "path", path, "size", len(file.Content))
	return s.storage.GetFullPath(path), nil
}
