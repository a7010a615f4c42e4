package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/respicare/triage-engine/internal/domain"
)

const (
	maxInputLength  = 2000
	maxHistoryLimit = 100
)

// triageRequest is the JSON body of POST /api/v1/triage. Age is
// optional; zero means unknown.
type triageRequest struct {
	Text string `json:"text" binding:"required"`
	Age  int    `json:"age"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	components := gin.H{"engine": "up"}

	conditions := 0
	if cat, err := s.deps.Catalogs.Current(); err != nil {
		components["catalog"] = "down"
	} else {
		components["catalog"] = "up"
		conditions = cat.Size()
	}

	// Unavailable models are not a failure: triage degrades to the
	// pattern fallback.
	if s.deps.Ensemble != nil {
		if s.deps.Ensemble.AnyAvailable() {
			components["models"] = "up"
		} else {
			components["models"] = "degraded"
		}
	}

	if s.deps.History != nil {
		if err := s.deps.History.Ping(c.Request.Context()); err != nil {
			components["history"] = "down"
		} else {
			components["history"] = "up"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC(),
		"conditions": conditions,
		"components": components,
	})
}

// handleTriage runs the full pipeline for one symptom description.
func (s *Server) handleTriage(c *gin.Context) {
	var req triageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortError(c, http.StatusBadRequest, domain.CodeInvalidInput,
			"Request body must include non-empty 'text'", err.Error())
		return
	}
	if len(req.Text) > maxInputLength {
		s.abortError(c, http.StatusBadRequest, domain.CodeInvalidInput,
			"Input text too long", "maximum length is 2000 characters")
		return
	}
	if req.Age < 0 || req.Age > 120 {
		s.abortError(c, http.StatusBadRequest, domain.CodeInvalidInput,
			"Age out of range", "age must be between 0 and 120")
		return
	}

	result, err := s.deps.Triager.Triage(c.Request.Context(), req.Text, req.Age)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			s.abortError(c, http.StatusBadRequest, domain.CodeInvalidInput,
				"Input text is empty", "")
			return
		}
		s.abortError(c, http.StatusInternalServerError, domain.CodeProcessing,
			"Triage failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleConditions lists the current catalog snapshot, optionally
// filtered by category.
func (s *Server) handleConditions(c *gin.Context) {
	cat, err := s.deps.Catalogs.Current()
	if err != nil {
		s.abortError(c, http.StatusServiceUnavailable, domain.CodeCatalogError,
			"Reference catalog unavailable", err.Error())
		return
	}

	conditions := cat.All()
	if category := c.Query("category"); category != "" {
		filtered := conditions[:0:0]
		for _, cond := range conditions {
			if cond.Category == category {
				filtered = append(filtered, cond)
			}
		}
		conditions = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"count":      len(conditions),
		"categories": cat.Categories(),
		"conditions": conditions,
	})
}

// handleCondition returns one catalog record by ID.
func (s *Server) handleCondition(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		s.abortError(c, http.StatusBadRequest, domain.CodeInvalidInput,
			"Invalid condition ID", "ID must be a positive integer")
		return
	}

	cat, err := s.deps.Catalogs.Current()
	if err != nil {
		s.abortError(c, http.StatusServiceUnavailable, domain.CodeCatalogError,
			"Reference catalog unavailable", err.Error())
		return
	}

	condition, err := cat.Get(id)
	if err != nil {
		s.abortError(c, http.StatusNotFound, domain.CodeInvalidInput,
			"Condition not found", "")
		return
	}

	c.JSON(http.StatusOK, condition)
}

// handleCatalogReload swaps in a fresh catalog snapshot. The result
// cache is purged on success so stale hypotheses cannot be served
// against the new catalog.
func (s *Server) handleCatalogReload(c *gin.Context) {
	if err := s.deps.Catalogs.Reload(c.Request.Context()); err != nil {
		s.abortError(c, http.StatusConflict, domain.CodeCatalogError,
			"Catalog reload failed, previous snapshot kept", err.Error())
		return
	}

	if s.deps.Cache != nil {
		s.deps.Cache.Purge()
	}

	cat, err := s.deps.Catalogs.Current()
	if err != nil {
		s.abortError(c, http.StatusInternalServerError, domain.CodeCatalogError,
			"Catalog unavailable after reload", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "reloaded",
		"conditions": cat.Size(),
	})
}

// handleHistory returns the most recent triage audit records.
func (s *Server) handleHistory(c *gin.Context) {
	if s.deps.History == nil {
		s.abortError(c, http.StatusServiceUnavailable, domain.CodeStorageError,
			"History storage is not configured", "")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.abortError(c, http.StatusBadRequest, domain.CodeInvalidInput,
				"Invalid limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.deps.History.Recent(c.Request.Context(), limit)
	if err != nil {
		s.abortError(c, http.StatusInternalServerError, domain.CodeStorageError,
			"Failed to read history", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}

// handleStats aggregates service counters: cache hit rates, catalog
// size and per-condition triage counts.
func (s *Server) handleStats(c *gin.Context) {
	stats := gin.H{}

	if cat, err := s.deps.Catalogs.Current(); err == nil {
		stats["catalog"] = gin.H{
			"conditions": cat.Size(),
			"categories": len(cat.Categories()),
		}
	}

	if s.deps.Cache != nil {
		stats["cache"] = s.deps.Cache.Stats()
	}

	if s.deps.History != nil {
		counts, err := s.deps.History.CountByCondition(c.Request.Context())
		if err != nil {
			s.abortError(c, http.StatusInternalServerError, domain.CodeStorageError,
				"Failed to read history counts", err.Error())
			return
		}
		stats["triage_counts"] = counts
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) abortError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, domain.NewTriageError(
		code, message, details, c.GetString("request_id"),
	))
}
