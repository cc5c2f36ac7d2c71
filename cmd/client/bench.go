package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/dirk.krummacker/contactbook-service/internal/model"
)

var benchSizes []int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure the average latency of POST, PUT, GET and DELETE requests",
	Long: `Creates, updates, reads and deletes as many contacts as given by each size and prints
the average duration of a request in microseconds.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{1000, 5000, 10000, 50000, 100000}, "numbers of contacts per round")
}

var postBody = []byte(`{
	"name": "Marcus Antonius",
	"contact_methods": [
		{"method_type": "phone", "value": "+39 999 777 555", "label": "Rome", "is_primary": true},
		{"method_type": "email", "value": "marcus@antonius.example"}
	]
}`)

var putBody = []byte(`{"name": "Marcus Antonius", "bookmarked": true}`)

func runBench(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Elements      POST       PUT       GET    DELETE ")
	fmt.Fprintln(out, "---------------------------------------------------")
	for _, loops := range benchSizes {
		if loops < 1 {
			return fmt.Errorf("invalid size %d", loops)
		}
		firstID, _, err := sendPostRequest()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%10d", loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				_, d, err := sendPostRequest()
				if err != nil {
					return err
				}
				duration += d
			}
			fmt.Fprintf(out, "%10d", duration/int64(loops*1000))
		}
		for _, method := range []string{http.MethodPut, http.MethodGet, http.MethodDelete} {
			var body []byte
			if method == http.MethodPut {
				body = putBody
			}
			duration, err := callInLoop(firstID, loops, func(id int64) (int64, error) {
				return sendContactRequest(id, method, body)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%10d", duration)
		}
		if _, err := sendContactRequest(firstID, http.MethodDelete, nil); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}

// callInLoop calls f for the ids following firstID in random order and returns the average
// duration in microseconds.
func callInLoop(firstID int64, loops int, f func(id int64) (int64, error)) (int64, error) {
	ids := createRandomSliceWithIDs(firstID+1, loops)
	var duration int64
	for _, id := range ids {
		d, err := f(id)
		if err != nil {
			return 0, err
		}
		duration += d
	}
	return duration / int64(loops*1000), nil
}

func createRandomSliceWithIDs(firstID int64, loops int) []int64 {
	ids := make([]int64, 0, loops)
	for i := 0; i < loops; i++ {
		ids = append(ids, firstID+int64(i))
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids
}

func sendPostRequest() (int64, int64, error) {
	resBody, duration, err := sendRequest(http.MethodPost, endpoint("/contacts/"), postBody)
	if err != nil {
		return 0, 0, err
	}
	var contact model.Contact
	if err := json.Unmarshal(resBody, &contact); err != nil {
		return 0, 0, fmt.Errorf("could not unmarshal JSON: %w", err)
	}
	return contact.Id, duration, nil
}

func sendContactRequest(id int64, method string, body []byte) (int64, error) {
	_, duration, err := sendRequest(method, endpoint(fmt.Sprintf("/contacts/%d/", id)), body)
	return duration, err
}

// sendRequest returns the response body and the duration of the request in nanoseconds.
func sendRequest(method string, requestURL string, body []byte) ([]byte, int64, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("could not create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	before := time.Now().UnixNano()
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error making http request: %w", err)
	}
	resBody, err := readResponse(res)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, requestURL, err)
	}
	after := time.Now().UnixNano()
	return resBody, after - before, nil
}
