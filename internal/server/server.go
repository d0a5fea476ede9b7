package server

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robjohnston/herogen/internal/config"
)

// ServeOptions contains the configurable settings for the preview server.
type ServeOptions struct {
	Port         int
	Bind         string
	OutputDir    string // directory the banner images are rendered into
	NoLiveReload bool
	Verbose      bool
}

// Server serves the preview page and the rendered images, and tells
// connected browsers to reload after each re-render.
type Server struct {
	options ServeOptions
	hub     *Hub
	watcher *Watcher
	server  *http.Server

	mu      sync.RWMutex
	config  *config.HeroConfig
	banner  Banner
	version uint64
}

// NewServer creates a Server showing the banner described by cfg.
func NewServer(cfg *config.HeroConfig, opts ServeOptions) *Server {
	return &Server{
		config:  cfg,
		options: opts,
		hub:     NewHub(),
	}
}

// Start starts the HTTP server, WebSocket hub and file watcher. It blocks
// until ctx is cancelled or the server fails.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc(wsPath, s.hub.HandleWS)
	mux.HandleFunc("/", s.handleRequest)

	addr := fmt.Sprintf("%s:%d", s.options.Bind, s.options.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watcher != nil {
		go func() {
			if err := s.watcher.Start(); err != nil {
				log.Printf("watcher error: %v", err)
			}
		}()
	}

	// Shutdown does not close hijacked websocket connections, so the hub
	// and watcher are stopped alongside the HTTP server.
	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	fmt.Printf("Previewing at http://%s\n", ln.Addr())

	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server, watcher and hub, closing every
// live reload connection. It is safe to call more than once.
func (s *Server) Stop() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.hub.Stop()
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// SetWatcher configures the file watcher for the server.
func (s *Server) SetWatcher(w *Watcher) {
	s.watcher = w
}

// SetBanner replaces the config and banner shown on the preview page.
func (s *Server) SetBanner(cfg *config.HeroConfig, b Banner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.banner = b
}

// NotifyReload bumps the image version so browsers refetch the banner and
// sends a reload message to all connected WebSocket clients.
func (s *Server) NotifyReload() {
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
	s.hub.Broadcast([]byte("reload"))
}

// handleRequest serves the preview page at "/" and the rendered images
// from the output directory.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" || r.URL.Path == "/index.html" {
		s.handlePage(w, r)
		return
	}

	filePath := s.resolveFilePath(r.URL.Path)
	if filePath == "" {
		http.NotFound(w, r)
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	setSecurityHeaders(w.Header(), nil)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	cfg, banner, version := s.config, s.banner, s.version
	s.mu.RUnlock()

	page, err := renderPage(cfg, banner, version)
	if err != nil {
		log.Printf("rendering preview page: %v", err)
		http.Error(w, "preview unavailable", http.StatusInternalServerError)
		return
	}

	nonce, err := GenerateNonce()
	if err != nil {
		log.Printf("%v", err)
		http.Error(w, "preview unavailable", http.StatusInternalServerError)
		return
	}
	if !s.options.NoLiveReload {
		page = InjectLiveReload(page, s.options.Port, nonce)
	}

	setSecurityHeaders(w.Header(), DevPolicy(nonce, s.options.Port))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// resolveFilePath maps a URL path to a regular file directly inside the
// output directory. Anything else resolves to "".
func (s *Server) resolveFilePath(urlPath string) string {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(urlPath, "/")))
	if cleaned == "." || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return ""
	}
	fullPath := filepath.Join(s.options.OutputDir, cleaned)
	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		return ""
	}
	return fullPath
}
