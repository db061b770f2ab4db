package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type hostSummary struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Services int    `json:"services"`
	Up       int    `json:"up"`
	Down     int    `json:"down"`
}

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	key := os.Getenv("API_KEY")
	client := &http.Client{Timeout: 10 * time.Second}

	get := func(path string) ([]byte, error) {
		req, err := http.NewRequest(http.MethodGet, api+path, nil)
		if err != nil {
			return nil, err
		}
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("API returned status: %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}

	body, err := get("/api/hosts")
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	var hosts []hostSummary
	if err := json.Unmarshal(body, &hosts); err != nil {
		fmt.Println("Unexpected response:", err)
		os.Exit(1)
	}

	for _, h := range hosts {
		fmt.Printf("%s (%s): %d up, %d down, %d services\n", h.Name, h.Address, h.Up, h.Down, h.Services)
		text, err := get("/api/hosts/" + url.PathEscape(h.Name) + "?format=text")
		if err != nil {
			fmt.Println("  error:", err)
			continue
		}
		fmt.Printf("%s", indent(string(text)))
	}
}

func indent(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}
