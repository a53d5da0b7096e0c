// Package http exposes the provider to the playback host over a small REST
// bridge, plus health and Prometheus metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cloudtune/internal/catalog"
	"cloudtune/internal/core"
	"cloudtune/internal/provider"
	"cloudtune/internal/stream"
)

// MusicSource is the provider surface the bridge serves.
type MusicSource interface {
	Search(ctx context.Context, query string, kinds []catalog.MediaKind, limit int) (*catalog.SearchResults, error)
	GetTrack(ctx context.Context, id string) (*catalog.Track, error)
	GetAlbum(ctx context.Context, id string) (*catalog.Album, error)
	GetArtist(ctx context.Context, id string) (*catalog.Artist, error)
	GetPlaylist(ctx context.Context, id string) (*catalog.Playlist, error)
	GetPlaylistTracks(ctx context.Context, id string) ([]catalog.Track, error)
	GetLibraryPlaylists(ctx context.Context) ([]catalog.Playlist, error)
	GetStream(ctx context.Context, trackID string) (*stream.ResolvedStream, error)
}

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	source  MusicSource
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	ResolveTotal    *prometheus.CounterVec
	ResolveDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudtune_requests_total",
				Help: "Total number of bridge requests",
			},
			[]string{"endpoint", "status"},
		),
		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudtune_resolve_total",
				Help: "Total number of stream resolutions by outcome",
			},
			[]string{"outcome"},
		),
		ResolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cloudtune_resolve_duration_seconds",
				Help:    "Time spent resolving streams",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(
		metrics.RequestsTotal,
		metrics.ResolveTotal,
		metrics.ResolveDuration,
	)
	return metrics
}

func NewServer(config *core.ServerConfig, source MusicSource, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()

	s := &Server{
		config:  config,
		logger:  logger,
		source:  source,
		metrics: newMetrics(registry),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"cloudtune"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"cloudtune"}`))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/tracks/{id}", s.handleTrack)
	mux.HandleFunc("GET /api/tracks/{id}/stream", s.handleStream)
	mux.HandleFunc("GET /api/albums/{id}", s.handleAlbum)
	mux.HandleFunc("GET /api/artists/{id}", s.handleArtist)
	mux.HandleFunc("GET /api/playlists/{id}", s.handlePlaylist)
	mux.HandleFunc("GET /api/playlists/{id}/tracks", s.handlePlaylistTracks)
	mux.HandleFunc("GET /api/library/playlists", s.handleLibraryPlaylists)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler exposes the mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

var searchKinds = map[string]catalog.MediaKind{
	"track":    catalog.KindTrack,
	"album":    catalog.KindAlbum,
	"artist":   catalog.KindArtist,
	"playlist": catalog.KindPlaylist,
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, "search", http.StatusBadRequest, "missing q parameter")
		return
	}

	kinds := []catalog.MediaKind{catalog.KindTrack, catalog.KindAlbum, catalog.KindArtist, catalog.KindPlaylist}
	if kindParam := r.URL.Query().Get("kind"); kindParam != "" {
		kind, ok := searchKinds[kindParam]
		if !ok {
			s.writeError(w, "search", http.StatusBadRequest, "unknown kind")
			return
		}
		kinds = []catalog.MediaKind{kind}
	}

	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		limit, _ = strconv.Atoi(limitParam)
	}

	results, err := s.source.Search(r.Context(), query, kinds, limit)
	if err != nil {
		s.writeSourceError(w, "search", err)
		return
	}
	s.writeJSON(w, "search", results)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	track, err := s.source.GetTrack(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeSourceError(w, "track", err)
		return
	}
	s.writeJSON(w, "track", track)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resolved, err := s.source.GetStream(r.Context(), r.PathValue("id"))
	s.metrics.ResolveDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.ResolveTotal.WithLabelValues("none").Inc()
		s.writeSourceError(w, "stream", err)
		return
	}

	s.metrics.ResolveTotal.WithLabelValues(resolveOutcome(resolved)).Inc()
	s.writeJSON(w, "stream", resolved)
}

func resolveOutcome(resolved *stream.ResolvedStream) string {
	switch {
	case resolved.Rescued:
		return "rescued"
	case resolved.Preview:
		return "preview"
	default:
		return "full"
	}
}

func (s *Server) handleAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := s.source.GetAlbum(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeSourceError(w, "album", err)
		return
	}
	s.writeJSON(w, "album", album)
}

func (s *Server) handleArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := s.source.GetArtist(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeSourceError(w, "artist", err)
		return
	}
	s.writeJSON(w, "artist", artist)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, err := s.source.GetPlaylist(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeSourceError(w, "playlist", err)
		return
	}
	s.writeJSON(w, "playlist", playlist)
}

func (s *Server) handlePlaylistTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.source.GetPlaylistTracks(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeSourceError(w, "playlist_tracks", err)
		return
	}
	s.writeJSON(w, "playlist_tracks", tracks)
}

func (s *Server) handleLibraryPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.source.GetLibraryPlaylists(r.Context())
	if err != nil {
		s.writeSourceError(w, "library_playlists", err)
		return
	}
	s.writeJSON(w, "library_playlists", playlists)
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, payload any) {
	s.metrics.RequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.String("endpoint", endpoint), zap.Error(err))
	}
}

func (s *Server) writeSourceError(w http.ResponseWriter, endpoint string, err error) {
	status := http.StatusBadGateway
	switch {
	case provider.IsNotFound(err), errors.Is(err, stream.ErrNoPlayableSource):
		status = http.StatusNotFound
	case provider.IsUnauthorized(err):
		status = http.StatusUnauthorized
	}

	s.logger.Warn("Bridge request failed",
		zap.String("endpoint", endpoint),
		zap.Int("status", status),
		zap.Error(err))
	s.writeError(w, endpoint, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, message string) {
	s.metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
