// Package export renders the product catalog as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"time"

	"katalog/internal/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the catalog rows.
const SheetName = "Products"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Header lists the column titles in order.
var Header = []string{"ID", "Title", "Description", "Status", "Date", "Image", "Created At", "Updated At"}

// FileName returns the attachment name for an export taken at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("products-%s.xlsx", t.UTC().Format("20060102-150405"))
}

// WriteProducts writes products as an .xlsx workbook to w. An empty slice
// yields a workbook with the header row only.
func WriteProducts(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			p.ID,
			p.Title,
			p.Description,
			p.Status,
			p.Date,
			p.Image,
			formatTime(p.CreatedAt),
			formatTime(p.UpdatedAt),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "B", "C", 32); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
