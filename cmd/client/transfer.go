package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Download all contacts as spreadsheet",
	Long:  `Downloads all contacts as spreadsheet. The file defaults to contacts_export.xlsx.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import file",
	Short: "Upload a spreadsheet of contacts",
	Long: `Uploads a spreadsheet of contacts. Contacts are matched by name, and the contact
methods of an existing contact are replaced by the ones in the spreadsheet.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	file := "contacts_export.xlsx"
	if len(args) == 1 {
		file = args[0]
	}
	content, err := get("/contacts/export/")
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, content, 0o644); err != nil {
		return fmt.Errorf("could not write %s: %w", file, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported contacts to %s (%d bytes)\n", file, len(content))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("could not open %s: %w", args[0], err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(args[0]))
	if err != nil {
		return fmt.Errorf("could not create form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("could not read %s: %w", args[0], err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("could not create form: %w", err)
	}

	res, err := httpClient.Post(endpoint("/contacts/import/"), writer.FormDataContentType(), body)
	if err != nil {
		return fmt.Errorf("error making http request: %w", err)
	}
	content, err := readResponse(res)
	if err != nil {
		return err
	}
	var result api.ImportResult
	if err := json.Unmarshal(content, &result); err != nil {
		return fmt.Errorf("could not unmarshal JSON: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s, %d skipped\n", result.Message, result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintln(out, "  "+e)
	}
	return nil
}
