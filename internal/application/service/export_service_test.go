package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/event-finance/internal/domain/entity"
)

type stubRenderer struct {
	err      error
	expenses int
}

func (r *stubRenderer) Render(summary *EventSummary, expenses []*entity.Expense) ([]byte, error) {
	r.expenses = len(expenses)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("xlsx:" + summary.Event.Name), nil
}

type memoryStorage struct {
	files map[string][]byte
}

func (m *memoryStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[path] = content
	return nil
}

func (m *memoryStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.files[path], nil
}

func (m *memoryStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *memoryStorage) Delete(ctx context.Context, path string) error {
	delete(m.files, path)
	return nil
}

func (m *memoryStorage) GetFullPath(relativePath string) string {
	return filepath.Join("/exports", relativePath)
}

func newExportFixture(renderer WorkbookRenderer, storage *memoryStorage) *exportServiceImpl {
	expenseRepo := &mockExpenseRepo{
		listByEventFunc: func(ctx context.Context, eventID int64) ([]*entity.Expense, error) {
			return []*entity.Expense{{ID: 1, EventID: eventID}}, nil
		},
	}
	summaries := NewSummaryService(&mockEventRepo{}, &mockBudgetItemRepo{}, expenseRepo, &mockLogger{})
	svc := &exportServiceImpl{
		summaries:   summaries,
		expenseRepo: expenseRepo,
		renderer:    renderer,
		logger:      &mockLogger{},
		now:         func() time.Time { return time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC) },
	}
	if storage != nil {
		svc.storage = storage
	}
	return svc
}

func TestExportService_Export(t *testing.T) {
	renderer := &stubRenderer{}
	svc := newExportFixture(renderer, nil)

	file, err := svc.Export(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "event-5-budget-20240701-083000.xlsx", file.Name)
	assert.Equal(t, xlsxContentType, file.ContentType)
	assert.Equal(t, "xlsx:Launch", string(file.Content))
	assert.Equal(t, 1, renderer.expenses)
}

func TestExportService_RenderError(t *testing.T) {
	boom := errors.New("boom")
	svc := newExportFixture(&stubRenderer{err: boom}, nil)

	_, err := svc.Export(context.Background(), 5)

	assert.ErrorIs(t, err, boom)
}

func TestExportService_ExportToStorage(t *testing.T) {
	storage := &memoryStorage{}
	svc := newExportFixture(&stubRenderer{}, storage)

	path, err := svc.ExportToStorage(context.Background(), 5)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join("/exports", "event-5")))
	assert.True(t, storage.Exists(context.Background(), "event-5/event-5-budget-20240701-083000.xlsx"))
}

func TestExportService_ExportToStorageWithoutStorage(t *testing.T) {
	svc := newExportFixture(&stubRenderer{}, nil)

	_, err := svc.ExportToStorage(context.Background(), 5)

	assert.Error(t, err)
}
