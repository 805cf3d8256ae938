package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"youtube-summarizer/internal/config"
	"youtube-summarizer/internal/fetch"
	"youtube-summarizer/internal/pipeline"
)

// summarizeRequest is the JSON body for POST /api/v1/summarize.
type summarizeRequest struct {
	URL       string `json:"url"`
	ModelPath string `json:"model_path,omitempty"`
}

// summarizeHandler runs the full pipeline for a single video URL
func (s *Server) summarizeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	if _, err := fetch.ParseVideoID(req.URL); err != nil {
		http.Error(w, fmt.Sprintf("Invalid video URL: %v", err), http.StatusBadRequest)
		return
	}

	runner, err := s.runnerFor(req.ModelPath)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := runner.Run(ctx, req.URL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.notifyCompleted(result)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"url":               result.URL,
		"video_id":          result.VideoID,
		"title":             result.Title,
		"duration":          result.Duration,
		"transcript":        result.Transcript,
		"summary":           result.Summary,
		"warnings":          result.Warnings,
		"cached_transcript": result.CachedTranscript,
		"cached_summary":    result.CachedSummary,
		"elapsed_seconds":   result.Elapsed.Seconds(),
	})
}

// writeError maps pipeline failures onto HTTP statuses. Stage failures
// report which stage broke; everything else is a plain server error.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		http.Error(w, cfgErr.Error(), http.StatusBadRequest)
		return
	}

	status := http.StatusInternalServerError
	payload := map[string]string{"error": err.Error()}

	var jobErr *pipeline.JobError
	if errors.As(err, &jobErr) {
		payload["stage"] = string(jobErr.Stage)
		status = http.StatusBadGateway
		var fetchErr *fetch.FetchError
		if errors.As(err, &fetchErr) && fetchErr.Reason != fetch.ReasonUnreachable {
			// Unavailable or unsupported videos are the caller's problem.
			status = http.StatusUnprocessableEntity
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// cacheStatsHandler returns cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.cacheManager == nil {
		http.Error(w, "Cache is disabled", http.StatusNotFound)
		return
	}

	stats, err := s.cacheManager.GetStats(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error getting cache stats: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// cacheClearHandler clears the cache
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.cacheManager == nil {
		http.Error(w, "Cache is disabled", http.StatusNotFound)
		return
	}

	if err := s.cacheManager.Clear(ctx); err != nil {
		http.Error(w, fmt.Sprintf("Error clearing cache: %v", err), http.StatusInternalServerError)
		return
	}

	response := map[string]string{
		"status":  "success",
		"message": "Cache cleared successfully",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// statusHandler returns system status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := map[string]interface{}{
		"status":         "running",
		"version":        "v1.0.0",
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	}

	if s.cacheManager != nil {
		if cacheStats, err := s.cacheManager.GetStats(ctx); err == nil {
			response["cache"] = cacheStats
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// configHandler returns configuration (sanitized)
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	// Return sanitized configuration without local filesystem paths
	response := map[string]interface{}{
		"port":                      s.config.Port,
		"host":                      s.config.Host,
		"max_chunk_size":            s.config.MaxChunkSize,
		"chunk_overlap":             s.config.ChunkOverlap,
		"max_summary_tokens":        s.config.MaxSummaryTokens,
		"summary_workers":           s.config.SummaryWorkers,
		"fetch_timeout_seconds":     s.config.FetchTimeout,
		"inference_timeout_seconds": s.config.InferenceTimeout,
		"cache_enabled":             s.config.CacheEnabled,
		"cache_type":                s.config.CacheType,
		"cache_duration_hours":      s.config.CacheDuration,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
