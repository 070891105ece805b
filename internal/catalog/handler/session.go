package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"fitstudio/internal/catalog/service"
	"fitstudio/pkg/cache"
	apperrors "fitstudio/pkg/errors"
	httputil "fitstudio/pkg/http"
	"fitstudio/pkg/logger"
	"fitstudio/pkg/model"
)

type SessionHandler struct {
	service  service.SessionService
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logger.Logger
}

func NewSessionHandler(service service.SessionService, cache cache.Cache, cacheTTL time.Duration, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service:  service,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	cacheKey := listingCacheKey(filter, limit, offset)
	if body, ok := h.cache.Get(r.Context(), cacheKey); ok {
		if writeErr := httputil.WriteRawJSON(w, http.StatusOK, body); writeErr != nil {
			h.log.Error("failed to write cached response", "handler", "List", "operation", "WriteRawJSON", "error", writeErr)
		}
		return
	}

	sessions, totalCount, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	response := httputil.PaginatedResponse{
		Data:       sessions,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     int(offset),
	}
	body, err := json.Marshal(response)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.Internal("Failed to encode response", err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	h.cache.Set(r.Context(), cacheKey, body, h.cacheTTL)

	if writeErr := httputil.WriteRawJSON(w, http.StatusOK, body); writeErr != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WriteRawJSON", "error", writeErr)
	}
}

func (h *SessionHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "GetByID", "operation", "WriteJSON", "error", err)
		}
		return
	}

	details, err := h.service.Details(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, details); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func parseFilter(query url.Values) (model.SessionFilter, error) {
	filter := model.SessionFilter{
		ClassType:     strings.TrimSpace(query.Get("class_type")),
		Instructor:    strings.TrimSpace(query.Get("instructor")),
		Difficulty:    model.Difficulty(strings.TrimSpace(strings.ToLower(query.Get("difficulty")))),
		AvailableOnly: query.Get("available_only") == "true",
	}

	if dateStr := strings.TrimSpace(query.Get("date")); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return model.SessionFilter{}, apperrors.InvalidInput("invalid date parameter, expected YYYY-MM-DD: " + dateStr)
		}
		filter.Date = &date
	}

	return filter, nil
}

func listingCacheKey(filter model.SessionFilter, limit int, offset int64) string {
	date := ""
	if filter.Date != nil {
		date = filter.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("classes:%s:%s:%s:%s:%t:%d:%d",
		filter.ClassType, filter.Instructor, filter.Difficulty, date, filter.AvailableOnly, limit, offset)
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/classes", h.List)
	router.GET("/api/v1/classes/:id", h.GetByID)
}
