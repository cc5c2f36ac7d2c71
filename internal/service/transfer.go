package service

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/transfer"
	"go.uber.org/zap"
)

// importExtensions are the accepted file name extensions of uploaded spreadsheets.
var importExtensions = []string{".xlsx", ".xls"}

// exportContacts responds with all contacts as a spreadsheet attachment.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/export/ --output contacts_export.xlsx
func (s *Service) exportContacts(c *gin.Context) {
	contacts, err := s.store.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err, 0, 0)
		return
	}
	content, err := transfer.Export(contacts)
	if err != nil {
		s.logger.Error("export failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to export contacts: "+err.Error())
		return
	}
	s.logger.Info("contacts exported", zap.Int("contacts", len(contacts)), zap.Int("bytes", len(content)))
	c.Header("Content-Disposition", `attachment; filename="`+transfer.FileName+`"`)
	c.Data(http.StatusOK, transfer.ContentType, content)
}

// importContacts reads the uploaded spreadsheet and stores one contact per row. Contacts are
// matched by name, and an existing contact gets its contact methods replaced. Rows that fail are
// skipped and reported, they never abort the import.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/import/ --request "POST" --form "file=@contacts_export.xlsx"
func (s *Service) importContacts(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "No file provided")
		return
	}
	if !hasImportExtension(header.Filename) {
		abortWithError(c, http.StatusBadRequest, "Invalid file type. Please upload an Excel file (.xlsx or .xls)")
		return
	}
	file, err := header.Open()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to import file: "+err.Error())
		return
	}
	defer file.Close()

	sheet, err := transfer.ReadSheet(file)
	if err != nil {
		s.logger.Warn("unreadable spreadsheet", zap.String("file", header.Filename), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to import file: "+err.Error())
		return
	}
	result, err := s.importer.Import(c.Request.Context(), sheet)
	var missing *transfer.MissingColumnsError
	if errors.As(err, &missing) {
		abortWithError(c, http.StatusBadRequest, missing.Error())
		return
	}
	if err != nil {
		s.respondError(c, err, 0, 0)
		return
	}
	s.logger.Info("contacts imported",
		zap.String("file", header.Filename),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	c.IndentedJSON(http.StatusOK, result)
}

func hasImportExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range importExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
