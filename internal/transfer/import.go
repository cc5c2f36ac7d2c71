package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
	"go.uber.org/zap"
)

// maxReportedErrors limits the row errors that are reported back to the client.
const maxReportedErrors = 10

// MissingColumnsError reports required columns that are absent from the header row.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Missing required columns: " + strings.Join(e.Columns, ", ")
}

// Sheet is a decoded spreadsheet: the header row and the data rows below it.
type Sheet struct {
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// NewSheet builds a sheet from a header row and data rows.
func NewSheet(columns []string, rows [][]string) *Sheet {
	s := &Sheet{Rows: rows, index: make(map[string]int, len(columns))}
	for i, column := range columns {
		column = strings.TrimSpace(column)
		s.Columns = append(s.Columns, column)
		if _, ok := s.index[column]; !ok {
			s.index[column] = i
		}
	}
	return s
}

// ReadSheet decodes the first worksheet of a workbook. The first row is taken as header row.
func ReadSheet(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return NewSheet(nil, nil), nil
	}
	return NewSheet(rows[0], rows[1:]), nil
}

// Has reports whether the header row contains the column.
func (s *Sheet) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Cell returns the value of the column in the row. Missing cells are empty.
func (s *Sheet) Cell(row []string, column string) string {
	i, ok := s.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Validate checks that all required columns are present.
func (s *Sheet) Validate() error {
	if !s.Has(nameColumn) {
		return &MissingColumnsError{Columns: []string{nameColumn}}
	}
	return nil
}

// ContactImporter stores one imported contact, replacing the methods of an existing contact with
// the same name.
type ContactImporter interface {
	ImportContact(ctx context.Context, name string, bookmarked bool, methods []api.ContactMethodInput) (bool, error)
}

// Importer folds the rows of a sheet into the contact store.
type Importer struct {
	store  ContactImporter
	logger *zap.Logger
}

// NewImporter returns an importer writing to the given store.
func NewImporter(store ContactImporter, logger *zap.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Import stores every row of the sheet as a contact. Rows are independent of each other: a row
// that fails is recorded with its spreadsheet row number and skipped, and the rows stored before
// it stay stored. Rows without a name are skipped silently. Import only fails as a whole if the
// sheet lacks a required column; a store without tables fails every row.
func (i *Importer) Import(ctx context.Context, sheet *Sheet) (api.ImportResult, error) {
	if err := sheet.Validate(); err != nil {
		return api.ImportResult{}, err
	}
	var result api.ImportResult
	var rowErrors []string
	for index, row := range sheet.Rows {
		// The header takes the first row and spreadsheet rows count from 1.
		rowNumber := index + 2
		name := strings.TrimSpace(sheet.Cell(row, nameColumn))
		if name == "" || name == "nan" {
			result.Skipped++
			continue
		}
		if err := i.importRow(ctx, sheet, row, name); err != nil {
			i.logger.Warn("import row failed", zap.Int("row", rowNumber), zap.String("name", name), zap.Error(err))
			rowErrors = append(rowErrors, fmt.Sprintf("Row %d: %s", rowNumber, err))
			result.Skipped++
			continue
		}
		result.Imported++
	}
	result.Message = fmt.Sprintf("Successfully imported %d contact(s)", result.Imported)
	if len(rowErrors) > maxReportedErrors {
		rowErrors = rowErrors[:maxReportedErrors]
	}
	result.Errors = rowErrors
	return result, nil
}

func (i *Importer) importRow(ctx context.Context, sheet *Sheet, row []string, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	bookmarked := strings.EqualFold(strings.TrimSpace(sheet.Cell(row, bookmarkedColumn)), "yes")
	var methods []api.ContactMethodInput
	for _, t := range model.MethodTypes {
		if sheet.Has(t.Label()) {
			methods = append(methods, DecodeCell(sheet.Cell(row, t.Label()), t)...)
		}
	}
	_, err = i.store.ImportContact(ctx, name, bookmarked, methods)
	return err
}
