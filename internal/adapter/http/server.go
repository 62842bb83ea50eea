package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/mapview"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TilePrefix is the path the base layers request tiles from.
const TilePrefix = "/tiles"

//go:embed web
var webAssets embed.FS

// MapRenderer builds map documents and reports readiness.
type MapRenderer interface {
	sharedobs.ReadinessChecker
	Document(ctx context.Context) mapview.Document
}

// Server exposes the map page, the map document, the tile proxy, and the
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	maps       MapRenderer
	tiles      domain.TileFetcher // nil when tiles are disabled
	logger     *slog.Logger
}

// NewServer registers every route. tiles may be nil.
func NewServer(addr string, maps MapRenderer, tiles domain.TileFetcher, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		maps:   maps,
		tiles:  tiles,
		logger: logger,
	}

	static, err := fs.Sub(webAssets, "web")
	if err != nil {
		panic(err)
	}

	mux.Handle("GET /", http.FileServerFS(static))
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET "+TilePrefix+"/{base}/{z}/{x}/{y}", s.handleTile)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(maps))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	doc := s.maps.Document(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	if s.tiles == nil {
		http.Error(w, "tiles disabled", http.StatusServiceUnavailable)
		return
	}

	key, ok := parseTileKey(r)
	if !ok {
		http.Error(w, "invalid tile coordinates", http.StatusBadRequest)
		return
	}

	tile, err := s.tiles.FetchTile(r.Context(), key)
	switch {
	case errors.Is(err, domain.ErrUnknownBaseMap):
		http.NotFound(w, r)
		return
	case errors.Is(err, domain.ErrTilesDisabled):
		http.Error(w, "tiles disabled", http.StatusServiceUnavailable)
		return
	case err != nil:
		s.logger.Warn("tile fetch failed", "tile", key.String(), "error", err)
		http.Error(w, "tile unavailable", http.StatusBadGateway)
		return
	}

	if tile.ContentType != "" {
		w.Header().Set("Content-Type", tile.ContentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(tile.Data) //nolint:errcheck // client may have gone away
}

func parseTileKey(r *http.Request) (domain.TileKey, bool) {
	key := domain.TileKey{Base: r.PathValue("base")}
	coords := []*int{&key.Z, &key.X, &key.Y}
	for i, name := range []string{"z", "x", "y"} {
		n, err := strconv.Atoi(r.PathValue(name))
		if err != nil || n < 0 {
			return domain.TileKey{}, false
		}
		*coords[i] = n
	}
	return key, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}
