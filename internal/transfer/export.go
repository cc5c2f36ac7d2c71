// Package transfer exports contacts to and imports contacts from spreadsheets. A spreadsheet has
// one row per contact with the columns Name, Bookmarked, and one column per method type.
package transfer

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
)

const (
	// SheetName is the name of the worksheet holding the contacts.
	SheetName = "Contacts"
	// FileName is the name under which the export is offered for download.
	FileName = "contacts_export.xlsx"
	// ContentType is the media type of the export.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	nameColumn       = "Name"
	bookmarkedColumn = "Bookmarked"
	maxColumnWidth   = 50
)

// Columns returns the header row of an export.
func Columns() []string {
	columns := []string{nameColumn, bookmarkedColumn}
	for _, t := range model.MethodTypes {
		columns = append(columns, t.Label())
	}
	return columns
}

// Rows renders the contacts as spreadsheet rows without the header row. Within a cell the
// methods follow their default order, so the primary one comes first.
func Rows(contacts []model.Contact) [][]string {
	rows := make([][]string, 0, len(contacts))
	for _, contact := range contacts {
		bookmarked := "No"
		if contact.Bookmarked {
			bookmarked = "Yes"
		}
		methods := slices.Clone(contact.ContactMethods)
		model.SortMethods(methods)
		row := []string{contact.Name, bookmarked}
		for _, t := range model.MethodTypes {
			row = append(row, EncodeCell(methods, t))
		}
		rows = append(rows, row)
	}
	return rows
}

// Export writes the contacts into an in-memory workbook and returns its bytes. Column widths
// follow the longest cell of each column, up to a maximum.
func Export(contacts []model.Contact) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	columns := Columns()
	rows := append([][]string{columns}, Rows(contacts)...)
	widths := make([]int, len(columns))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		values := make([]any, len(row))
		for j, value := range row {
			values[j] = value
			widths[j] = max(widths[j], utf8.RuneCountInString(value))
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return nil, fmt.Errorf("column name: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for j, width := range widths {
		column, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, column, column, float64(min(width+2, maxColumnWidth))); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
