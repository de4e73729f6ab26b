package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arl-connect/gold-news/app/cache"
	"github.com/arl-connect/gold-news/app/database"
	"github.com/arl-connect/gold-news/app/feed"
	"github.com/arl-connect/gold-news/app/tasks"
	"github.com/gin-gonic/gin"
)

// NewHandler wires the HTTP handlers; responseCache may be nil
func NewHandler(configCache *feed.ConfigCache, sourceRepo database.SourceRepository,
	itemRepo database.ItemRepository, batchRunner tasks.BatchRunnerInterface,
	cleaner tasks.CleanerInterface, responseCache cache.CacheInterface, cacheTTL time.Duration) *Handler {
	return &Handler{
		sourceRepo:  sourceRepo,
		itemRepo:    itemRepo,
		batchRunner: batchRunner,
		cleaner:     cleaner,
		configCache: configCache,
		cache:       responseCache,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

func (h *Handler) ListNews(c *gin.Context) {
	if c.Query("stats") == "true" {
		h.getNewsStats(c)
		return
	}

	filter := database.ItemFilter{
		Region:   filterValue(c.Query("region")),
		Category: filterValue(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		Limit:    min(max(queryInt(c, "limit", DefaultPageLimit), 1), MaxPageLimit),
	}

	query := url.Values{
		"region":   {filter.Region},
		"category": {filter.Category},
		"search":   {strings.ToLower(filter.Search)},
		"page":     {strconv.Itoa(filter.Page)},
		"limit":    {strconv.Itoa(filter.Limit)},
	}.Encode()

	h.respondCached(c, "list", query, func() (interface{}, error) {
		items, total, err := h.itemRepo.ListItems(filter)
		if err != nil {
			return nil, err
		}

		response := NewsListResponse{
			Items:      make([]NewsItemResponse, 0, len(items)),
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: (total + filter.Limit - 1) / filter.Limit,
		}
		for _, item := range items {
			response.Items = append(response.Items, newNewsItemResponse(item))
		}
		return response, nil
	})
}

func (h *Handler) getNewsStats(c *gin.Context) {
	now := h.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	h.respondCached(c, "stats", todayStart.Format(time.DateOnly), func() (interface{}, error) {
		itemStats, err := h.itemRepo.GetItemStats(todayStart)
		if err != nil {
			return nil, err
		}

		sourceStats, err := h.sourceRepo.GetSourceStats()
		if err != nil {
			return nil, err
		}

		return NewsStatsResponse{
			Total:         itemStats.Total,
			Ghana:         itemStats.Ghana,
			World:         itemStats.World,
			Today:         itemStats.Today,
			Sources:       sourceStats.Total,
			ActiveSources: sourceStats.Active,
		}, nil
	})
}

// respondCached serves a cached JSON body when available, otherwise builds,
// stores and returns it. Cache failures only cost a store read.
func (h *Handler) respondCached(c *gin.Context, kind, query string, build func() (interface{}, error)) {
	ctx := c.Request.Context()

	var key string
	if h.cache != nil {
		var err error
		key, err = h.cache.NewsKey(ctx, kind, query)
		if err != nil {
			slog.Warn("Response cache unavailable", "kind", kind, "error", err)
		} else if body, ok, err := h.cache.Get(ctx, key); err != nil {
			slog.Warn("Response cache read failed", "kind", kind, "error", err)
		} else if ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(body))
			return
		}
	}

	response, err := build()
	if err != nil {
		slog.Error("Database error", "operation", "get_news_"+kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if h.cache != nil && key != "" {
		if body, err := json.Marshal(response); err == nil {
			if err := h.cache.Set(ctx, key, body, h.cacheTTL); err != nil {
				slog.Warn("Response cache write failed", "kind", kind, "error", err)
			}
		}
		c.Header("X-Cache", "MISS")
	}

	c.JSON(http.StatusOK, response)
}

// RunAction dispatches the admin intents: fetch runs every active source now,
// cleanup applies the retention window.
func (h *Handler) RunAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if req.Intent == "" {
		req.Intent = c.Query("intent")
	}
	if req.Days == 0 {
		req.Days = queryInt(c, "days", tasks.DefaultRetentionDays)
	}

	switch req.Intent {
	case "fetch":
		result, err := h.batchRunner.Run(c.Request.Context())
		if err != nil {
			slog.Error("Manual fetch failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch news"})
			return
		}

		slog.Info("Manual fetch completed", "new", result.Total, "errors", len(result.Errors))

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Fetched %d new articles", result.Total),
			"total":   result.Total,
			"errors":  result.Errors,
		})

	case "cleanup":
		deleted, err := h.cleaner.Run(c.Request.Context(), req.Days)
		if err != nil {
			slog.Error("Manual cleanup failed", "days", req.Days, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clean up news"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Deleted %d articles older than %d days", deleted, req.Days),
			"deleted": deleted,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid intent"})
	}
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.itemRepo.DeleteItem(id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_item", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return
	}

	h.invalidateCache(c)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": h.now().In(time.Local).Format(time.RFC3339),
	}

	if sourceStats, err := h.sourceRepo.GetSourceStats(); err == nil {
		health["sources"] = sourceStats.Total
		health["active_sources"] = sourceStats.Active
	}

	if itemStats, err := h.itemRepo.GetItemStats(h.now()); err == nil {
		health["items"] = itemStats.Total
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	if h.cache != nil {
		health["cache"] = h.cache.Health(c.Request.Context())
	} else {
		health["cache"] = map[string]interface{}{"status": "disabled"}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) invalidateCache(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(c.Request.Context()); err != nil {
		slog.Warn("Failed to invalidate response cache", "error", err)
	}
}

// filterValue treats "all" as no filter
func filterValue(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "all" {
		return ""
	}
	return value
}

// queryInt returns def for missing, malformed or non-positive values
func queryInt(c *gin.Context, name string, def int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value <= 0 {
		return def
	}
	return value
}
