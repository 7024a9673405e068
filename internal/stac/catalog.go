package stac

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// CatalogInfo is the summary of a probed catalog root
type CatalogInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StacVersion string `json:"stacVersion"`
	URL         string `json:"url"`
}

// FetchCatalogInfo fetches and parses a catalog's root document
func FetchCatalogInfo(url string) (*CatalogInfo, error) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return nil, fmt.Errorf("catalog URL is empty")
	}

	client := &http.Client{Timeout: 15 * time.Second}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog root: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog root request failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog root: %w", err)
	}

	var root rootDocument
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse catalog root: %w", err)
	}

	if root.StacVersion == "" {
		return nil, fmt.Errorf("not a STAC API: missing stac_version")
	}

	return &CatalogInfo{
		ID:          root.ID,
		Title:       root.Title,
		Description: root.Description,
		StacVersion: root.StacVersion,
		URL:         url,
	}, nil
}

// ValidateCatalogURL checks whether a URL points at a STAC API root
func ValidateCatalogURL(url string) (bool, error) {
	if _, err := FetchCatalogInfo(url); err != nil {
		return false, err
	}
	return true, nil
}
