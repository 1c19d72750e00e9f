// Package report renders event budgets as XLSX workbooks.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/application/service"
	"github.com/garyjia/event-finance/internal/domain/budget"
	"github.com/garyjia/event-finance/internal/domain/entity"
	"github.com/garyjia/event-finance/internal/domain/money"
)

// Sheet names
const (
	SheetBudget     = "Budget"
	SheetCategories = "Categories"
	SheetExpenses   = "Expenses"
)

var (
	budgetHeader   = []interface{}{"Category", "Subcategory", "Description", "Vendor", "Status", "Estimated", "Actual", "Variance", "Variance Label"}
	categoryHeader = []interface{}{"Category", "Allocated", "Spent", "Variance", "Variance Label"}
	expenseHeader  = []interface{}{"Category", "Title", "Vendor", "Status", "Amount", "Created By", "Created At"}
)

// WorkbookRenderer builds the export workbook for one event
type WorkbookRenderer struct {
	logger *zap.Logger
}

// NewWorkbookRenderer creates a WorkbookRenderer
func NewWorkbookRenderer(logger *zap.Logger) *WorkbookRenderer {
	return &WorkbookRenderer{logger: logger}
}

type styles struct {
	header int
	money  int
	pct    int
}

// Render returns the XLSX bytes for the summary and its expenses
func (r *WorkbookRenderer) Render(summary *service.EventSummary, expenses []*entity.Expense) ([]byte, error) {
	if summary == nil || summary.Event == nil {
		return nil, fmt.Errorf("render workbook: missing event summary")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetBudget); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetCategories, SheetExpenses} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := r.writeBudget(f, st, summary); err != nil {
		return nil, err
	}
	if err := r.writeCategories(f, st, summary.Categories); err != nil {
		return nil, err
	}
	if err := r.writeExpenses(f, st, expenses); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	r.logger.Info("Workbook rendered",
		zap.Int64("event_id", summary.Event.ID),
		zap.Int("items", len(summary.Items)),
		zap.Int("expenses", len(expenses)),
		zap.Int("size", buf.Len()))
	return buf.Bytes(), nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}
	st.money, err = f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return st, fmt.Errorf("create money style: %w", err)
	}
	st.pct, err = f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return st, fmt.Errorf("create percentage style: %w", err)
	}
	return st, nil
}

func (r *WorkbookRenderer) writeBudget(f *excelize.File, st styles, summary *service.EventSummary) error {
	if err := writeHeader(f, SheetBudget, budgetHeader, st.header); err != nil {
		return err
	}

	row := 2
	for _, item := range summary.Items {
		est := money.FromNullDecimal(item.EstimatedCost)
		act := money.FromNullDecimal(item.ActualCost)
		signed := budget.Variance(est, act)
		v := budget.DescribeVariance(signed)

		values := []interface{}{
			item.Category.String(),
			item.Subcategory,
			item.Description,
			item.Vendor,
			item.Status.String(),
			money.NormalizeFloat(est),
			money.NormalizeFloat(act),
			signed.InexactFloat64(),
			string(v.Label),
		}
		if err := setRow(f, SheetBudget, row, values); err != nil {
			return err
		}
		row++
	}
	if row > 2 {
		if err := f.SetCellStyle(SheetBudget, "F2", cell("H", row-1), st.money); err != nil {
			return fmt.Errorf("style budget amounts: %w", err)
		}
	}

	// summary rows below the items
	row++
	totals := summary.Budget
	summaryRows := [][]interface{}{
		{"Event", summary.Event.Name},
		{"Event Budget", summary.Event.Budget.InexactFloat64()},
		{"Total Estimated", totals.TotalAllocated.InexactFloat64()},
		{"Total Actual", totals.TotalSpent.InexactFloat64()},
		{"Remaining", totals.Remaining.InexactFloat64()},
		{"Percentage Spent", totals.PercentageSpent},
		{"Status", string(summary.BudgetStatus.Tier)},
		{"Approved Expenses", summary.Expenses.TotalSpent.InexactFloat64()},
		{"Event Progress", summary.Progress},
	}
	for i, values := range summaryRows {
		if err := setRow(f, SheetBudget, row+i, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetBudget, cell("A", row+i), cell("A", row+i), st.header); err != nil {
			return fmt.Errorf("style summary label: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetBudget, cell("B", row+1), cell("B", row+4), st.money); err != nil {
		return fmt.Errorf("style summary amounts: %w", err)
	}
	if err := f.SetCellStyle(SheetBudget, cell("B", row+5), cell("B", row+5), st.pct); err != nil {
		return fmt.Errorf("style percentage: %w", err)
	}

	return f.SetColWidth(SheetBudget, "A", "I", 18)
}

func (r *WorkbookRenderer) writeCategories(f *excelize.File, st styles, totals budget.CategoryTotals) error {
	if err := writeHeader(f, SheetCategories, categoryHeader, st.header); err != nil {
		return err
	}

	for i, ct := range totals {
		variance := ct.Variance()
		values := []interface{}{
			ct.Category.String(),
			ct.Allocated.InexactFloat64(),
			ct.Spent.InexactFloat64(),
			variance.InexactFloat64(),
			string(budget.DescribeVariance(variance).Label),
		}
		if err := setRow(f, SheetCategories, i+2, values); err != nil {
			return err
		}
	}
	if len(totals) > 0 {
		if err := f.SetCellStyle(SheetCategories, "B2", cell("D", len(totals)+1), st.money); err != nil {
			return fmt.Errorf("style category amounts: %w", err)
		}
	}
	return f.SetColWidth(SheetCategories, "A", "E", 16)
}

func (r *WorkbookRenderer) writeExpenses(f *excelize.File, st styles, expenses []*entity.Expense) error {
	if err := writeHeader(f, SheetExpenses, expenseHeader, st.header); err != nil {
		return err
	}

	for i, e := range expenses {
		values := []interface{}{
			e.Category.String(),
			e.Title,
			e.Vendor,
			e.Status.String(),
			e.Amount.InexactFloat64(),
			e.CreatedBy,
			e.CreatedAt.Format("2006-01-02"),
		}
		if err := setRow(f, SheetExpenses, i+2, values); err != nil {
			return err
		}
	}
	if len(expenses) > 0 {
		if err := f.SetCellStyle(SheetExpenses, "E2", cell("E", len(expenses)+1), st.money); err != nil {
			return fmt.Errorf("style expense amounts: %w", err)
		}
	}
	return f.SetColWidth(SheetExpenses, "A", "G", 16)
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if err := f.SetSheetRow(sheet, cell("A", row), &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// FileName is the export file name for an event
func FileName(evt *entity.Event) string {
	return fmt.Sprintf("event-%d-budget.xlsx", evt.ID)
}
