package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"provenance-service/config"
	"provenance-service/llm"
	"provenance-service/models"
	"provenance-service/parser"
	"provenance-service/storage"
	"provenance-service/version"
)

// Fixed, user-safe error messages. Internal detail stays in the logs; only
// these strings cross the endpoint boundary.
const (
	errNoImage       = "No image provided"
	errMissingExpand = "Component name and object title are required"
	errNoAPIKey      = "OpenRouter API key not configured"
	errNoResponse    = "No response from AI"
	errParseFailed   = "Failed to parse AI response"
	errInvalidSchema = "Invalid response structure from AI"
	errAnalyzeFailed = "Failed to analyze image"
	errExpandFailed  = "Failed to expand component history"
	errHistoryFailed = "Failed to read scan history"
	errClearFailed   = "Failed to clear scan history"
)

// Handlers holds the HTTP handlers for the provenance endpoints.
type Handlers struct {
	config *config.Config
	llm    llm.Client
	store  *storage.Store
}

// NewHandlers creates new HTTP handlers. store must be non-nil; every
// handler that touches history assumes it.
func NewHandlers(cfg *config.Config, client llm.Client, store *storage.Store) *Handlers {
	return &Handlers{
		config: cfg,
		llm:    client,
		store:  store,
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "provenance-service",
		"version": version.Version,
	})
}

// AnalyzeImage accepts a compressed image data URI, asks the model for the
// object's provenance record and returns the validated result. Successful
// scans are saved to the local history.
func (h *Handlers) AnalyzeImage(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoImage})
		return
	}

	if h.config.OpenRouterAPIKey == "" {
		log.Error("OPENROUTER_API_KEY not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errNoAPIKey})
		return
	}

	content, err := h.llm.GenerateProvenance(c.Request.Context(), req.Image)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			log.Warnf("Empty completion from %s", h.llm.SourceName())
			c.JSON(http.StatusInternalServerError, gin.H{"error": errNoResponse})
			return
		}
		log.Errorf("Provenance generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errAnalyzeFailed})
		return
	}

	result, err := parser.ParseProvenance(content, h.config.ParserStrict)
	if err != nil {
		// The raw completion is logged for diagnosis, never returned
		log.Errorf("Failed to parse AI response: %v, raw: %s", err, content)
		if errors.Is(err, parser.ErrInvalidSchema) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInvalidSchema})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errParseFailed})
		return
	}

	scan := models.Scan{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UnixMilli(),
		ImageBase64: req.Image,
		Result:      *result,
	}
	// History is best effort; a failed save never fails the scan
	if err := h.store.Save(scan); err != nil {
		log.Warnf("Failed to save scan: %v", err)
	}

	log.WithFields(log.Fields{
		"title":      result.Title,
		"timeline":   len(result.Timeline),
		"components": len(result.Components),
	}).Info("analyze.success")

	c.JSON(http.StatusOK, result)
}

// ExpandComponent returns an extended history for one component of a
// previously analyzed object.
func (h *Handlers) ExpandComponent(c *gin.Context) {
	var req models.ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ComponentName == "" || req.ObjectTitle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingExpand})
		return
	}

	if h.config.OpenRouterAPIKey == "" {
		log.Error("OPENROUTER_API_KEY not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errNoAPIKey})
		return
	}

	content, err := h.llm.ExpandComponent(c.Request.Context(), req.ComponentName, req.ObjectTitle)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			log.Warnf("Empty completion from %s", h.llm.SourceName())
			c.JSON(http.StatusInternalServerError, gin.H{"error": errNoResponse})
			return
		}
		log.Errorf("Component expansion failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errExpandFailed})
		return
	}

	result, err := parser.ParseComponentDetail(content, h.config.ParserStrict)
	if err != nil {
		log.Errorf("Failed to parse AI response: %v, raw: %s", err, content)
		if errors.Is(err, parser.ErrInvalidSchema) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInvalidSchema})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errParseFailed})
		return
	}

	log.WithFields(log.Fields{
		"component": result.Name,
		"events":    len(result.History),
	}).Info("expand.success")

	c.JSON(http.StatusOK, result)
}

// ListScans returns the recent scan history, newest first.
func (h *Handlers) ListScans(c *gin.Context) {
	scans, err := h.store.ListRecent()
	if err != nil {
		log.Errorf("Failed to list scans: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errHistoryFailed})
		return
	}
	c.JSON(http.StatusOK, scans)
}

// ClearScans removes the entire scan history.
func (h *Handlers) ClearScans(c *gin.Context) {
	if err := h.store.Clear(); err != nil {
		log.Errorf("Failed to clear scans: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errClearFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
