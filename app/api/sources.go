package api

import (
	"cmp"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arl-connect/gold-news/app/database"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListSources(c *gin.Context) {
	sources, err := h.sourceRepo.ListSources()
	if err != nil {
		slog.Error("Database error", "operation", "list_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := make([]SourceResponse, 0, len(sources))
	for _, source := range sources {
		response = append(response, newSourceResponse(source))
	}

	c.JSON(http.StatusOK, gin.H{
		"sources": response,
		"total":   len(response),
	})
}

func (h *Handler) GetSource(c *gin.Context) {
	source, ok := h.loadSource(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newSourceResponse(*source))
}

func (h *Handler) CreateSource(c *gin.Context) {
	var req SourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	source := &database.Source{IsActive: true}
	req.applyTo(source)

	if err := h.sourceRepo.CreateSource(source); err != nil {
		h.writeSourceError(c, "create_source", err)
		return
	}

	h.invalidateCache(c)
	slog.Info("Source created", "source", source.Name, "id", source.ID)

	c.JSON(http.StatusCreated, newSourceResponse(*source))
}

func (h *Handler) UpdateSource(c *gin.Context) {
	source, ok := h.loadSource(c)
	if !ok {
		return
	}

	var req SourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	req.applyTo(source)

	if err := h.sourceRepo.UpdateSource(source); err != nil {
		h.writeSourceError(c, "update_source", err)
		return
	}

	h.invalidateCache(c)
	slog.Info("Source updated", "source", source.Name, "id", source.ID)

	c.JSON(http.StatusOK, newSourceResponse(*source))
}

func (h *Handler) DeleteSource(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.sourceRepo.DeleteSource(id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_source", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
		return
	}

	h.invalidateCache(c)
	slog.Info("Source deleted", "id", id)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) loadSource(c *gin.Context) (*database.Source, bool) {
	id := c.Param("id")

	source, err := h.sourceRepo.GetSource(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_source", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
		return nil, false
	}

	return source, true
}

func (h *Handler) writeSourceError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, database.ErrDuplicateSource):
		c.JSON(http.StatusConflict, gin.H{"error": "A source with this URL already exists"})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
	default:
		slog.Error("Database error", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

// applyTo copies the editable fields; an omitted is_active keeps the current value.
// Fetch bookkeeping is never set from requests.
func (r SourceRequest) applyTo(source *database.Source) {
	source.Name = r.Name
	source.URL = r.URL
	source.Kind = cmp.Or(r.Kind, database.SourceKindRSS)
	source.Region = r.Region
	source.Category = r.Category
	if r.IsActive != nil {
		source.IsActive = *r.IsActive
	}
	source.FetchInterval = cmp.Or(r.FetchInterval, database.DefaultFetchInterval)
}
