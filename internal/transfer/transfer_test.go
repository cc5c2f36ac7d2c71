package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/repository"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
	"go.uber.org/zap/zaptest"
)

type importedContact struct {
	name       string
	bookmarked bool
	methods    []api.ContactMethodInput
}

// fakeStore records imported contacts. Names listed in failures fail with the given error, and
// the name "panic" panics.
type fakeStore struct {
	imported []importedContact
	failures map[string]error
}

func (s *fakeStore) ImportContact(_ context.Context, name string, bookmarked bool, methods []api.ContactMethodInput) (bool, error) {
	if name == "panic" {
		panic("malformed row")
	}
	if err, ok := s.failures[name]; ok {
		return false, err
	}
	s.imported = append(s.imported, importedContact{name: name, bookmarked: bookmarked, methods: methods})
	return true, nil
}

func exampleContacts() []model.Contact {
	return []model.Contact{
		{
			Id:         1,
			Name:       "Erika Mustermann",
			Bookmarked: true,
			ContactMethods: []model.ContactMethod{
				{MethodType: model.Email, Value: "erika@example.com", Label: "Home"},
				{MethodType: model.Phone, Value: "555-1111", Label: "Work", IsPrimary: true},
				{MethodType: model.Phone, Value: "555-2222"},
			},
		},
		{
			Id:   2,
			Name: "Rudi",
			ContactMethods: []model.ContactMethod{
				{MethodType: model.Address, Value: strings.Repeat("Long Street ", 10)},
			},
		},
	}
}

// TestExport writes a workbook and reads it back with the spreadsheet library.
func TestExport(t *testing.T) {
	content, err := Export(exampleContacts())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Bookmarked", "Phone", "Email", "Social Media", "Address"}, rows[0])
	assert.Equal(t, "Erika Mustermann", rows[1][0])
	assert.Equal(t, "Yes", rows[1][1])
	assert.Equal(t, "555-1111 (Work) [Primary]; 555-2222", rows[1][2])
	assert.Equal(t, "erika@example.com (Home)", rows[1][3])
	assert.Equal(t, "No", rows[2][1])

	nameWidth, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Erika Mustermann")+2), nameWidth)
	addressWidth, err := f.GetColWidth(SheetName, "F")
	require.NoError(t, err)
	assert.Equal(t, float64(maxColumnWidth), addressWidth)
}

// TestExportEmpty expects a header row even without any contacts.
func TestExportEmpty(t *testing.T) {
	content, err := Export(nil)
	require.NoError(t, err)
	sheet, err := ReadSheet(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, Columns(), sheet.Columns)
	assert.Empty(t, sheet.Rows)
}

// TestExportImportRoundTrip exports contacts and imports the workbook again. The imported methods
// must match the exported ones.
func TestExportImportRoundTrip(t *testing.T) {
	contacts := exampleContacts()
	content, err := Export(contacts)
	require.NoError(t, err)
	sheet, err := ReadSheet(bytes.NewReader(content))
	require.NoError(t, err)

	store := &fakeStore{}
	result, err := NewImporter(store, zaptest.NewLogger(t)).Import(context.Background(), sheet)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Nil(t, result.Errors)
	assert.Equal(t, "Successfully imported 2 contact(s)", result.Message)

	require.Len(t, store.imported, 2)
	assert.Equal(t, "Erika Mustermann", store.imported[0].name)
	assert.True(t, store.imported[0].bookmarked)
	assert.Equal(t, []api.ContactMethodInput{
		{MethodType: "phone", Value: "555-1111", Label: "Work", IsPrimary: true},
		{MethodType: "phone", Value: "555-2222"},
		{MethodType: "email", Value: "erika@example.com", Label: "Home"},
	}, store.imported[0].methods)
	assert.False(t, store.imported[1].bookmarked)
	require.Len(t, store.imported[1].methods, 1)
	assert.Equal(t, strings.TrimSpace(strings.Repeat("Long Street ", 10)), store.imported[1].methods[0].Value)
}

// TestImportSkipsAndErrors feeds rows without a name, failing rows and a panicking row. It
// expects the fold to continue past each of them.
func TestImportSkipsAndErrors(t *testing.T) {
	sheet := NewSheet([]string{"Name", "Phone"}, [][]string{
		{"Aaron", "555-1111"},
		{"", "555-0000"},
		{"nan"},
		{"Broken", "555-2222"},
		{"panic", "555-3333"},
		{"Berta"},
	})
	store := &fakeStore{failures: map[string]error{
		"Broken": &repository.ValidationError{Message: "Contact method 1: missing value"},
	}}

	result, err := NewImporter(store, zaptest.NewLogger(t)).Import(context.Background(), sheet)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 4, result.Skipped)
	assert.Equal(t, []string{
		"Row 5: Contact method 1: missing value",
		"Row 6: malformed row",
	}, result.Errors)
	require.Len(t, store.imported, 2)
	assert.False(t, store.imported[0].bookmarked, "a missing Bookmarked column means No")
	assert.Empty(t, store.imported[1].methods)
}

// TestImportLimitsErrors expects at most ten reported errors while every failure is skipped.
func TestImportLimitsErrors(t *testing.T) {
	var rows [][]string
	failures := map[string]error{}
	for i := 0; i < 15; i++ {
		name := fmt.Sprintf("Contact %d", i)
		rows = append(rows, []string{name, "yes"})
		failures[name] = errors.New("connection reset")
	}
	store := &fakeStore{failures: failures}

	result, err := NewImporter(store, zaptest.NewLogger(t)).Import(context.Background(), NewSheet([]string{"Name", "Bookmarked"}, rows))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 15, result.Skipped)
	assert.Len(t, result.Errors, 10)
	assert.Equal(t, "Row 2: connection reset", result.Errors[0])
}

// TestImportMissingName expects the import to be rejected without a Name column.
func TestImportMissingName(t *testing.T) {
	store := &fakeStore{}
	_, err := NewImporter(store, zaptest.NewLogger(t)).Import(context.Background(), NewSheet([]string{" Phone "}, nil))
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Missing required columns: Name", missing.Error())
}

// TestImportUninitialized expects every row to fail on its own when the database has no tables.
func TestImportUninitialized(t *testing.T) {
	missing := &repository.UninitializedError{Err: errors.New("no such table: contacts")}
	store := &fakeStore{failures: map[string]error{"Aaron": missing, "Berta": missing}}
	result, err := NewImporter(store, zaptest.NewLogger(t)).Import(context.Background(),
		NewSheet([]string{"Name"}, [][]string{{"Aaron"}, {"Berta"}}))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "Row 3: "+missing.Error(), result.Errors[1])
}

// TestReadSheetInvalid expects an error for bytes that are not a workbook.
func TestReadSheetInvalid(t *testing.T) {
	_, err := ReadSheet(strings.NewReader("not a spreadsheet"))
	assert.Error(t, err)
}
