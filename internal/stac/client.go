package stac

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"stac-explorer/internal/cache"
	"stac-explorer/internal/query"
	"stac-explorer/internal/ratelimit"
)

const (
	// UserAgent sent with every catalog request
	UserAgent = "stac-explorer/1.0 (desktop)"

	// DefaultSearchLimit is the page size when settings give none
	DefaultSearchLimit = 50
)

// Client handles communication with one STAC API catalog
type Client struct {
	name       string // catalog identifier, e.g. "earth_search"
	baseURL    string
	httpClient *http.Client

	collections    map[string]*Collection
	collectionList []Collection
	mu             sync.RWMutex
	initialized    bool

	rateLimits *ratelimit.Handler
	results    *cache.SearchCache
	snapshot   *cache.CollectionSnapshot
}

// NewClient creates a STAC client for the catalog at baseURL with system
// proxy support. The rate limit handler, result cache, and snapshot store
// are optional.
func NewClient(name, baseURL string, limits *ratelimit.Handler, results *cache.SearchCache, snapshot *cache.CollectionSnapshot) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}

	return &Client{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		collections: make(map[string]*Collection),
		rateLimits:  limits,
		results:     results,
		snapshot:    snapshot,
	}
}

// Name returns the catalog identifier
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the catalog's STAC API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Initialize fetches the catalog's collection list. When the catalog is
// unreachable, a previously snapshotted list is used so the collection
// picker still works offline.
func (c *Client) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	collections, err := c.fetchCollections()
	if err != nil {
		if c.snapshot != nil && c.snapshot.Exists(c.name) {
			var cached []Collection
			if loadErr := c.snapshot.Load(c.name, &cached); loadErr == nil {
				log.Printf("[STAC] %s unreachable, using %d snapshotted collections: %v",
					c.name, len(cached), err)
				c.indexCollections(cached)
				c.initialized = true
				return nil
			}
		}
		return fmt.Errorf("failed to fetch collections: %w", err)
	}

	c.indexCollections(collections)
	c.initialized = true

	if c.snapshot != nil {
		if err := c.snapshot.Save(c.name, collections); err != nil {
			log.Printf("[STAC] Failed to snapshot %s collections: %v", c.name, err)
		}
	}

	return nil
}

func (c *Client) indexCollections(collections []Collection) {
	c.collectionList = collections
	c.collections = make(map[string]*Collection, len(collections))
	for i := range collections {
		c.collections[collections[i].ID] = &collections[i]
	}
}

func (c *Client) fetchCollections() ([]Collection, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/collections", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collections: %w", err)
	}
	defer resp.Body.Close()

	if c.rateLimits != nil && c.rateLimits.CheckResponse(c.name, resp) {
		return nil, fmt.Errorf("catalog %s is rate limited", c.name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("collections request failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read collections: %w", err)
	}

	var parsed collectionsResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse collections: %w", err)
	}

	return parsed.Collections, nil
}

// GetCollections returns all collections in the catalog
func (c *Client) GetCollections() ([]Collection, error) {
	if !c.isInitialized() {
		if err := c.Initialize(); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Collection, len(c.collectionList))
	copy(result, c.collectionList)
	return result, nil
}

// GetCollection returns a single collection by identifier
func (c *Client) GetCollection(id string) (*Collection, error) {
	if !c.isInitialized() {
		if err := c.Initialize(); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	collection, ok := c.collections[id]
	if !ok {
		return nil, fmt.Errorf("collection %q not found in %s", id, c.name)
	}
	return collection, nil
}

func (c *Client) isInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Search executes a POST /search against the catalog. Identical requests
// within a session are answered from the cache.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if c.rateLimits != nil && c.rateLimits.IsRateLimited(c.name) {
		return nil, fmt.Errorf("catalog %s is rate limited, try again later", c.name)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	cacheKey := cache.Key("search", c.name, string(body))
	if c.results != nil {
		if cached, ok := c.results.Get(cacheKey); ok {
			var response SearchResponse
			if err := json.Unmarshal(cached, &response); err == nil {
				return &response, nil
			}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", UserAgent)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if c.rateLimits != nil && c.rateLimits.CheckResponse(c.name, resp) {
		return nil, fmt.Errorf("catalog %s is rate limited", c.name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var response SearchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	if c.results != nil {
		c.results.Put(cacheKey, data)
	}

	log.Printf("[STAC] %s search returned %d items", c.name, len(response.Features))
	return &response, nil
}

// BuildSearchRequest translates the current query state into a STAC
// search body. The state must satisfy its cross-facet invariants.
func BuildSearchRequest(state query.State, limit int) (SearchRequest, error) {
	if err := state.Validate(); err != nil {
		return SearchRequest{}, fmt.Errorf("invalid query state: %w", err)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	req := SearchRequest{Limit: limit}

	if state.Collection != "" {
		req.Collections = []string{state.Collection}
	}
	if state.LocationBbox != nil {
		req.Bbox = state.LocationBbox.Slice()
	}
	if state.DateType == query.DateTypeCustom {
		req.Datetime = fmt.Sprintf("%sT00:00:00Z/%sT23:59:59Z", state.DateStart, state.DateEnd)
	}
	if state.CloudCover < 100 {
		req.Query = map[string]interface{}{
			"eo:cloud_cover": map[string]interface{}{"lte": state.CloudCover},
		}
	}

	return req, nil
}
