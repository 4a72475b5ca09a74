package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/agenthands/geoparse/internal/app"
	"github.com/agenthands/geoparse/internal/core/common"
)

type queryResponse struct {
	Matches []struct {
		CanonicalName string  `json:"canonical_name"`
		EntityType    string  `json:"entity_type"`
		Confidence    float64 `json:"confidence"`
	} `json:"matches"`
	Formatted string `json:"formatted"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	wait := flag.Duration("wait", 2*time.Second, "time to wait for the server to start")
	flag.Parse()

	time.Sleep(*wait)
	fmt.Println("Starting smoke test...")

	client := &http.Client{Timeout: 30 * time.Second}
	if err := get(client, *baseURL+"/healthz"); err != nil {
		fmt.Printf("FAILED: health check: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("PASSED: health check")

	failed := 0
	for i, d := range app.Demos {
		fmt.Printf("%d. %s\n", i+1, d.Query)
		resp, err := query(client, *baseURL, d.Query)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			failed++
			continue
		}
		fmt.Println(resp.Formatted)

		found := make(map[string]bool)
		for _, m := range resp.Matches {
			found[common.MatchKey(m.CanonicalName)] = true
		}
		for _, want := range d.Want {
			if !found[common.MatchKey(want)] {
				fmt.Printf("FAILED: expected a match for %s\n", want)
				failed++
			}
		}
	}

	if failed > 0 {
		fmt.Printf("%d checks failed\n", failed)
		os.Exit(1)
	}
	fmt.Println("PASSED: all demo queries")
}

func get(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func query(client *http.Client, baseURL, text string) (*queryResponse, error) {
	payload, err := json.Marshal(map[string]string{"query": text, "format": "confidence"})
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(baseURL+"/query", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, body)
	}

	var out queryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
