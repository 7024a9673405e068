// Package preview runs a local HTTP proxy for scene thumbnails. Catalog
// asset hosts do not send CORS headers the embedded frontend can use, so
// the map fetches previews through this loopback server instead.
package preview

import (
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"stac-explorer/internal/cache"
)

// maxPreviewBytes caps a single proxied asset; thumbnails are small
const maxPreviewBytes = 16 << 20

// Server proxies thumbnail assets from allowed catalog hosts
type Server struct {
	httpClient *http.Client
	bytes      *cache.SearchCache
	devMode    bool

	mu           sync.RWMutex
	serverURL    string // set by Start, which may run on another goroutine
	allowedHosts map[string]bool
}

// NewServer creates a preview proxy. The byte cache is optional.
func NewServer(bytesCache *cache.SearchCache, devMode bool) *Server {
	return &Server{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		},
		bytes:        bytesCache,
		devMode:      devMode,
		allowedHosts: make(map[string]bool),
	}
}

// AllowHost permits proxying assets from the given host (and subdomains)
func (s *Server) AllowHost(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowedHosts[strings.ToLower(host)] = true
}

// AllowCatalogURL permits proxying from the host of a catalog root URL
func (s *Server) AllowCatalogURL(catalogURL string) {
	parsed, err := url.Parse(catalogURL)
	if err != nil || parsed.Host == "" {
		log.Printf("[Preview] Cannot derive host from %q", catalogURL)
		return
	}
	s.AllowHost(parsed.Hostname())
}

func (s *Server) hostAllowed(host string) bool {
	host = strings.ToLower(host)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.allowedHosts[host] {
		return true
	}
	for allowed := range s.allowedHosts {
		if strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// URL returns the base URL of the running server, or "" before Start
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverURL
}

// corsMiddleware adds CORS headers for requests from the Wails frontend.
// On macOS/Linux, Wails uses the wails://wails origin which requires them.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start listens on a random loopback port and begins serving
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/preview", s.handlePreview)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start preview server: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	s.mu.Lock()
	s.serverURL = serverURL
	s.mu.Unlock()
	log.Printf("Preview server started on %s", serverURL)

	server := &http.Server{
		Handler: corsMiddleware(mux),
	}

	go func() {
		if err := server.Serve(listener); err != nil {
			log.Printf("Preview server stopped: %v", err)
		}
	}()

	return nil
}

// handlePreview proxies GET /preview?u=<asset-url>
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("u")
	if rawURL == "" {
		http.Error(w, "missing u parameter", http.StatusBadRequest)
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		http.Error(w, "invalid asset URL", http.StatusBadRequest)
		return
	}

	if !s.hostAllowed(target.Hostname()) {
		if s.devMode {
			log.Printf("[Preview] Refused host %s", target.Hostname())
		}
		http.Error(w, "host not allowed", http.StatusForbidden)
		return
	}

	cacheKey := cache.Key("preview", rawURL)
	if s.bytes != nil {
		if data, ok := s.bytes.Get(cacheKey); ok {
			w.Header().Set("Content-Type", http.DetectContentType(data))
			w.Write(data)
			return
		}
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		http.Error(w, "failed to build request", http.StatusInternalServerError)
		return
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[Preview] Fetch failed for %s: %v", target.Host, err)
		http.Error(w, "upstream fetch failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		http.Error(w, fmt.Sprintf("upstream returned %d", resp.StatusCode), http.StatusBadGateway)
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		http.Error(w, "failed to read upstream body", http.StatusBadGateway)
		return
	}

	if s.bytes != nil {
		s.bytes.Put(cacheKey, data)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
