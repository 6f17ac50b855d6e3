// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/showlog/showlog/internal/library"
	"github.com/showlog/showlog/internal/models"
	"github.com/showlog/showlog/internal/validation"
)

// listItemsParams mirrors the listing query string for validation.
type listItemsParams struct {
	SortBy       string `validate:"omitempty,oneof=title releaseDate listedAt random"`
	SortOrder    string `validate:"omitempty,oneof=asc desc"`
	MediaType    string `validate:"omitempty,media_type"`
	Page         int    `validate:"omitempty,min=1"`
	ItemsPerPage int    `validate:"omitempty,min=1"`
}

// parseListItemsRequest builds the engine request from the query string.
// Unknown enum values and malformed numbers are rejected before the
// engine ever sees them.
func (h *Handler) parseListItemsRequest(r *http.Request) (*library.ListItemsRequest, *validation.APIError) {
	q := r.URL.Query()

	params := listItemsParams{
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		MediaType: q.Get("mediaType"),
	}

	var parseErr error
	intParam := func(name string) int {
		raw := q.Get(name)
		if raw == "" || parseErr != nil {
			return 0
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			parseErr = fmt.Errorf("%s must be an integer", name)
		}
		return v
	}
	boolParam := func(name string) bool {
		raw := q.Get(name)
		if raw == "" || parseErr != nil {
			return false
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			parseErr = fmt.Errorf("%s must be a boolean", name)
		}
		return v
	}

	params.Page = intParam("page")
	params.ItemsPerPage = intParam("itemsPerPage")

	req := &library.ListItemsRequest{
		UserID:       UserIDFromContext(r.Context()),
		Now:          time.Now().UTC(),
		SortBy:       library.SortKey(params.SortBy),
		SortOrder:    library.SortOrder(params.SortOrder),
		Page:         params.Page,
		ItemsPerPage: params.ItemsPerPage,
		Filter: library.Filter{
			OnlyOnWatchlist:        boolParam("onlyOnWatchlist"),
			OnlySeen:               boolParam("onlySeen"),
			OnlyUnseen:             boolParam("onlyUnseen"),
			WithRating:             boolParam("withRating"),
			WithoutRating:          boolParam("withoutRating"),
			WithProgress:           boolParam("withProgress"),
			WithUpcomingEpisode:    boolParam("withUpcomingEpisode"),
			WithNextEpisodeToWatch: boolParam("withNextEpisodeToWatch"),
			IncludeUnreleased:      boolParam("includeUnreleased"),
		},
	}

	if raw := q.Get("list"); raw != "" {
		listID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			parseErr = fmt.Errorf("list must be an integer")
		} else {
			req.ListID = &listID
		}
	}
	if parseErr != nil {
		return nil, &validation.APIError{Code: ErrCodeBadRequest, Message: parseErr.Error()}
	}

	if verr := validation.ValidateStruct(&params); verr != nil {
		return nil, verr.ToAPIError()
	}

	if params.MediaType != "" {
		mt := models.MediaType(params.MediaType)
		req.Filter.MediaType = &mt
	}
	if req.ItemsPerPage == 0 {
		req.ItemsPerPage = h.cfg.DefaultPageSize
	}
	if req.ItemsPerPage > h.cfg.MaxPageSize {
		return nil, &validation.APIError{
			Code:    ErrCodeBadRequest,
			Message: fmt.Sprintf("itemsPerPage must be at most %d", h.cfg.MaxPageSize),
		}
	}
	return req, nil
}

// parseCalendarRequest builds the calendar request. From and to accept
// RFC3339 timestamps or plain dates and are both required.
func (h *Handler) parseCalendarRequest(r *http.Request) (*library.CalendarRequest, *validation.APIError) {
	q := r.URL.Query()

	from, err := parseTimeParam(q.Get("from"), "from")
	if err != nil {
		return nil, &validation.APIError{Code: ErrCodeBadRequest, Message: err.Error()}
	}
	to, err := parseTimeParam(q.Get("to"), "to")
	if err != nil {
		return nil, &validation.APIError{Code: ErrCodeBadRequest, Message: err.Error()}
	}
	if to.Before(from) {
		return nil, &validation.APIError{Code: ErrCodeBadRequest, Message: "to must not be before from"}
	}

	req := &library.CalendarRequest{
		UserID: UserIDFromContext(r.Context()),
		From:   from,
		To:     to,
	}
	for name, dst := range map[string]*bool{
		"includeAllLists": &req.IncludeAllLists,
		"simple":          &req.Simple,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &validation.APIError{Code: ErrCodeBadRequest, Message: name + " must be a boolean"}
		}
		*dst = v
	}
	return req, nil
}

func parseTimeParam(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s must be an RFC3339 timestamp or a date", name)
}
