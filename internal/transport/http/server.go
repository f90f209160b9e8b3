package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	channelDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/channel/domain"
	postDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/domain"
	postService "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/post/service"
	userDomain "github.com/reshetovitsme/mattermost-rss-feed/internal/modules/user/domain"
	"github.com/reshetovitsme/mattermost-rss-feed/internal/shared/config"
	"github.com/samber/oops"
	sloghttp "github.com/samber/slog-http"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxPostsLimit is the largest page the upstream serves
	MaxPostsLimit = 200

	// ISO-8601 in UTC with millisecond precision
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"

	shutdownTimeout = 10 * time.Second
)

// FeedGenerator renders the RSS document
type FeedGenerator interface {
	GenerateRSS(ctx context.Context) (string, error)
	FeedURL() string
}

// PostLister lists the newest ordinary posts
type PostLister interface {
	GetNewsPosts(ctx context.Context, limit int) ([]*postDomain.NewsPost, error)
}

// ChannelInfo serves news channel metadata
type ChannelInfo interface {
	GetChannelInfo(ctx context.Context) *channelDomain.Channel
}

// IdentityFetcher serves the bot identity
type IdentityFetcher interface {
	GetIdentity(ctx context.Context) *userDomain.User
}

// Server serves the RSS feed, the JSON post listing and the health probe
type Server struct {
	cfg      *config.Config
	feeds    FeedGenerator
	posts    PostLister
	channels ChannelInfo
	users    IdentityFetcher
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a new HTTP server
func New(cfg *config.Config, feeds FeedGenerator, posts PostLister, channels ChannelInfo, users IdentityFetcher) *Server {
	return &Server{
		cfg:      cfg,
		feeds:    feeds,
		posts:    posts,
		channels: channels,
		users:    users,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the routed handler wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /rss", s.handleRSS)
	mux.HandleFunc("GET /rss.xml", s.handleRSS)
	mux.HandleFunc("GET /posts", s.handlePosts)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleNotFound)

	var handler http.Handler = mux
	handler = metricsMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	handler = sloghttp.NewWithConfig(s.logger, sloghttp.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	})(handler)

	return handler
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("RSS server starting", "addr", addr, "feed_url", s.feeds.FeedURL())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- oops.With("addr", addr).Wrap(err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("RSS server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.With("addr", addr).Wrapf(err, "graceful shutdown failed")
	}
	return <-errCh
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "Mattermost RSS API",
		"version":     "1.0.0",
		"description": "Converts posts from Mattermost news channel to RSS feed",
		"endpoints": map[string]string{
			"GET /rss":     "Get RSS feed of news channel posts",
			"GET /rss.xml": "Get RSS feed of news posts (alternative endpoint)",
			"GET /posts":   "Get news posts as JSON (?limit=N, default 50)",
			"GET /health":  "Health check endpoint",
			"GET /metrics": "Prometheus metrics",
		},
	})
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	rss, err := s.feeds.GenerateRSS(r.Context())
	if err != nil {
		s.logger.Error("RSS endpoint error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate RSS feed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Content-Location", s.feeds.FeedURL())
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))

	posts, err := s.posts.GetNewsPosts(r.Context(), limit)
	if err != nil {
		s.logger.Error("News posts endpoint error", "limit", limit, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch news posts", err.Error())
		return
	}

	channel := s.cfg.NewsChannelName
	if channel == "" {
		channel = s.cfg.NewsChannelID
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"posts":     posts,
		"count":     len(posts),
		"timestamp": s.timestamp(),
		"channel":   channel,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var channel *channelDomain.Channel

	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		s.users.GetIdentity(gctx)
		return nil
	})
	g.Go(func() error {
		channel = s.channels.GetChannelInfo(gctx)
		return nil
	})
	_ = g.Wait()

	if err := r.Context().Err(); err != nil {
		s.logger.Warn("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"timestamp": s.timestamp(),
			"error":     err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"timestamp":   s.timestamp(),
		"mattermost":  "connected",
		"newsChannel": channel.DisplayName,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not found", fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

// parseLimit reads ?limit, falling back to the default for anything that is
// not a positive integer
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return postService.DefaultLimit
	}
	return min(limit, MaxPostsLimit)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, map[string]string{
		"error":   message,
		"message": detail,
	})
}
