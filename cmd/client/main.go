package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
	"gitlab.com/dirk.krummacker/contactbook-service/pkg/api"
)

// serverURL is the base URL of the contact book, set by the --server flag.
var serverURL string

var rootCmd = &cobra.Command{
	Use:           "client",
	Short:         "Command line client of the contact book service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all contacts with their primary phone number and email address",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// httpClient is shared by all commands.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Usage example on the command line:
// > go run ./cmd/client list
// > go run ./cmd/client --server=http://localhost:9090 export contacts.xlsx
func main() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the contact book service")
	rootCmd.AddCommand(listCmd, exportCmd, importCmd, benchCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	body, err := get("/contacts/")
	if err != nil {
		return err
	}
	var contacts []model.Contact
	if err := json.Unmarshal(body, &contacts); err != nil {
		return fmt.Errorf("could not unmarshal JSON: %w", err)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBOOKMARKED\tPHONE\tEMAIL")
	for _, c := range contacts {
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\n", c.Id, c.Name, c.Bookmarked, orDash(c.PrimaryPhone()), orDash(c.PrimaryEmail()))
	}
	return w.Flush()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// endpoint returns the URL of the path on the configured server.
func endpoint(path string) string {
	return strings.TrimSuffix(serverURL, "/") + path
}

func get(path string) ([]byte, error) {
	res, err := httpClient.Get(endpoint(path))
	if err != nil {
		return nil, fmt.Errorf("error making http request: %w", err)
	}
	return readResponse(res)
}

// readResponse reads the body of a response and turns error responses into errors.
func readResponse(res *http.Response) ([]byte, error) {
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		var failure api.ErrorResponse
		if json.Unmarshal(body, &failure) == nil && failure.Error != "" {
			if failure.HowToFix != "" {
				return nil, fmt.Errorf("%s: %s (%s)", res.Status, failure.Error, failure.HowToFix)
			}
			return nil, fmt.Errorf("%s: %s", res.Status, failure.Error)
		}
		return nil, fmt.Errorf("%s", res.Status)
	}
	return body, nil
}
