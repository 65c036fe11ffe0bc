package storage

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportOrdersToExcel writes all orders into an .xlsx workbook at path.
func ExportOrdersToExcel(path string, orders []Order) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Customer", "Phone", "Date", "Time", "Items", "Total, ₽", "Status", "Created At"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, style)

	for row, order := range orders {
		items := make([]string, 0, len(order.Cart))
		for _, item := range order.Cart {
			items = append(items, fmt.Sprintf("%s: %v кг", item.Berry, item.Kg))
		}

		values := []any{
			order.ID,
			order.FullName,
			"+7" + order.Phone,
			order.Date,
			order.Time,
			strings.Join(items, "; "),
			order.Total(),
			order.Status.Label(),
			order.CreatedAt.Format("02.01.2006 15:04"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	f.SetActiveSheet(index)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
