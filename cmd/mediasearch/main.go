// Command mediasearch is a small CLI against a running go-media-search server:
// enqueue an ingestion, delete a record's entries, or run a search.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  mediasearch ingest <media-record-id> [priority]
  mediasearch delete <media-record-id>
  mediasearch search <query> <count> <whitelist-id> [whitelist-id...]`)
	os.Exit(2)
}

func main() {
	viper.SetDefault("SERVER_URL", "http://localhost:8080")
	viper.AutomaticEnv()
	serverURL := viper.GetString("SERVER_URL")

	if len(os.Args) < 3 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "ingest":
		priority := "0"
		if len(os.Args) > 3 {
			priority = os.Args[3]
		}
		err = post(fmt.Sprintf("%s/media-records/%s/ingest?priority=%s", serverURL, os.Args[2], priority), nil)
	case "delete":
		err = del(fmt.Sprintf("%s/media-records/%s", serverURL, os.Args[2]))
	case "search":
		if len(os.Args) < 5 {
			usage()
		}
		err = runSearch(serverURL, os.Args[2], os.Args[3], os.Args[4:])
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runSearch(serverURL, query, count string, whitelist []string) error {
	ids := make([]uuid.UUID, 0, len(whitelist))
	for _, raw := range whitelist {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid whitelist id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}

	var n int
	if _, err := fmt.Sscanf(count, "%d", &n); err != nil {
		return fmt.Errorf("invalid count %q: %w", count, err)
	}

	body, err := json.Marshal(map[string]any{
		"query":     query,
		"count":     n,
		"whitelist": ids,
		"blacklist": []uuid.UUID{},
	})
	if err != nil {
		return err
	}

	return post(serverURL+"/search", body)
}

func post(url string, body []byte) error {
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func del(url string) error {
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if len(payload) > 0 {
		fmt.Println(string(payload))
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil
}
