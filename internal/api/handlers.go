// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/showlog/showlog/internal/config"
	"github.com/showlog/showlog/internal/database"
	"github.com/showlog/showlog/internal/library"
	"github.com/showlog/showlog/internal/logging"
	"github.com/showlog/showlog/internal/models"
)

// Handler carries the engine and database behind the HTTP endpoints.
type Handler struct {
	engine *library.Engine
	db     *database.DB
	cfg    *config.APIConfig
}

// NewHandler creates the endpoint handler.
func NewHandler(engine *library.Engine, db *database.DB, cfg *config.APIConfig) *Handler {
	return &Handler{engine: engine, db: db, cfg: cfg}
}

// Items handles GET /api/items: the filtered, ordered listing of the
// user's library without pagination.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, apiErr := h.parseListItemsRequest(r)
	if apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	views, err := h.engine.ListItems(r.Context(), req)
	if err != nil {
		h.respondEngineError(rw, r, err)
		return
	}
	if views == nil {
		views = []*models.ItemView{}
	}
	rw.Success(views)
}

// ListItems handles GET /api/list/items: the listing scoped to one
// list, at each member's exact granularity.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, apiErr := h.parseListItemsRequest(r)
	if apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	if req.ListID == nil {
		rw.BadRequest("list is required")
		return
	}

	views, err := h.engine.ListItems(r.Context(), req)
	if err != nil {
		h.respondEngineError(rw, r, err)
		return
	}
	if views == nil {
		views = []*models.ItemView{}
	}
	rw.Success(views)
}

// ItemsPaginated handles GET /api/items/paginated. The page defaults
// to 1.
func (h *Handler) ItemsPaginated(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, apiErr := h.parseListItemsRequest(r)
	if apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}

	page, err := h.engine.ListItemsPaginated(r.Context(), req)
	if err != nil {
		h.respondEngineError(rw, r, err)
		return
	}
	if page.Data == nil {
		page.Data = []*models.ItemView{}
	}
	rw.Success(page)
}

// Calendar handles GET /api/calendar.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req, apiErr := h.parseCalendarRequest(r)
	if apiErr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	entries, err := h.engine.Calendar(r.Context(), req)
	if err != nil {
		h.respondEngineError(rw, r, err)
		return
	}
	if entries == nil {
		entries = []*models.CalendarEntry{}
	}
	rw.Success(entries)
}

// ItemDetails handles GET /api/details/{mediaItemID}: the fully
// expanded projection of one media item.
func (h *Handler) ItemDetails(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := strconv.ParseInt(chi.URLParam(r, "mediaItemID"), 10, 64)
	if err != nil || id < 1 {
		rw.BadRequest("mediaItemID must be a positive integer")
		return
	}

	details, err := h.engine.ItemDetails(r.Context(), UserIDFromContext(r.Context()), id, time.Now().UTC())
	if err != nil {
		h.respondEngineError(rw, r, err)
		return
	}
	rw.Success(details)
}

// Health handles GET /healthz with a database ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.db.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnhealthy, "database unreachable")
		return
	}
	rw.Success(map[string]string{"status": "ok"})
}

// respondEngineError maps engine errors onto HTTP statuses. Anything
// unexpected is logged and reported as a 500 without leaking internals.
func (h *Handler) respondEngineError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		rw.NotFound("not found")
	case errors.Is(err, library.ErrForbidden):
		rw.Forbidden("access denied")
	case errors.Is(err, library.ErrInvalidPage):
		rw.Error(http.StatusBadRequest, ErrCodeInvalidPage, "invalid page")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("engine query failed")
		rw.InternalError("internal error")
	}
}
