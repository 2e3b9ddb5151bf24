// Package handler exposes the translation service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nlcmd/translator/internal/analytics"
	"github.com/nlcmd/translator/internal/translate"
	"github.com/nlcmd/translator/internal/translate/cache"
	pkgerrors "github.com/nlcmd/translator/pkg/errors"
	"github.com/nlcmd/translator/pkg/logger"
	"github.com/nlcmd/translator/pkg/metrics"
	"github.com/nlcmd/translator/pkg/middleware"
)

// TranslateExecutor is the translation capability the handler fronts.
type TranslateExecutor interface {
	Translate(ctx context.Context, sentence string, limit int) (*translate.TranslationResult, error)
}

// Handler serves /api/v1/translate and the cache management endpoints.
type Handler struct {
	executor     TranslateExecutor
	cache        *cache.TranslationCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil.
func New(
	executor TranslateExecutor,
	translationCache *cache.TranslationCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
	defaultLimit, maxResults int,
) *Handler {
	return &Handler{
		executor:     executor,
		cache:        translationCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "translate-handler"),
	}
}

// Translate handles GET /api/v1/translate?q=<sentence>&limit=<n>.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	sentence := r.URL.Query().Get("q")
	if sentence == "" {
		h.writeAppError(w, pkgerrors.New(pkgerrors.ErrInvalidInput,
			http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeAppError(w, pkgerrors.Newf(pkgerrors.ErrInvalidInput,
				http.StatusBadRequest, "limit %q must be a positive integer", limitStr))
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	var result *translate.TranslationResult
	var err error
	cacheHit := false

	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, sentence, limit, func() (*translate.TranslationResult, error) {
			return h.executor.Translate(ctx, sentence, limit)
		})
	} else {
		result, err = h.executor.Translate(ctx, sentence, limit)
	}

	latency := time.Since(start)
	if err != nil {
		log.Error("translation failed", "sentence", sentence, "error", err)
		if h.metrics != nil {
			h.metrics.TranslationsTotal.WithLabelValues("error").Inc()
		}
		h.writeError(w, pkgerrors.HTTPStatusCode(err), "translation failed")
		return
	}

	log.Info("translation completed",
		"sentence", sentence,
		"total_parses", result.TotalParses,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)

	if h.metrics != nil {
		resultType := "miss"
		cacheStatus := "miss"
		if cacheHit {
			resultType = "hit"
			cacheStatus = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
		if len(result.Results) == 0 {
			resultType = "zero_result"
		}
		h.metrics.TranslationsTotal.WithLabelValues(resultType).Inc()
		h.metrics.TranslateLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	}

	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		if cacheHit {
			eventType = analytics.EventCacheHit
		}
		event := analytics.TranslateEvent{
			Type:         eventType,
			Sentence:     sentence,
			TotalParses:  result.TotalParses,
			Returned:     len(result.Results),
			CellsVisited: result.CellsVisited,
			LatencyMs:    latency.Milliseconds(),
			CacheHit:     cacheHit,
			Timestamp:    time.Now().UTC(),
			RequestID:    middleware.GetRequestID(ctx),
		}
		if len(result.Results) > 0 {
			event.TopCommand = result.Results[0].Command
			event.TopScore = result.Results[0].Score
		} else {
			event.Type = analytics.EventZeroResult
		}
		h.collector.Track(event)
	}

	h.writeJSON(w, http.StatusOK, result)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err *pkgerrors.AppError) {
	h.writeError(w, err.StatusCode, err.Message)
}
