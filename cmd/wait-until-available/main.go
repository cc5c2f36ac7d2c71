package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Usage example on the command line:
// > go run ./cmd/wait-until-available -url=http://localhost:8080/contacts/ -timeout=2m
func main() {
	url := flag.String("url", "http://localhost:8080/contacts/", "the endpoint that must answer 200")
	interval := flag.Duration("interval", 5*time.Second, "the pause between two attempts")
	timeout := flag.Duration("timeout", 0, "give up after this duration, 0 waits forever")
	flag.Parse()

	client := &http.Client{Timeout: *interval}
	start := time.Now()
	for {
		res, err := client.Get(*url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				return
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		waited := time.Since(start)
		if *timeout > 0 && waited+*interval > *timeout {
			fmt.Printf("Gave up after %s\n", waited.Round(time.Second))
			os.Exit(1)
		}
		fmt.Printf("Waiting %s\n", (waited + *interval).Round(time.Second))
		time.Sleep(*interval)
	}
}
