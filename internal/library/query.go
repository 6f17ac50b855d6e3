// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/showlog/showlog/internal/database"
	"github.com/showlog/showlog/internal/models"
)

// SortKey selects the listing order.
type SortKey string

const (
	SortByTitle       SortKey = "title"
	SortByReleaseDate SortKey = "releaseDate"
	SortByListedAt    SortKey = "listedAt"
	SortByRandom      SortKey = "random"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// DefaultItemsPerPage is used when a paginated request does not specify
// a page size.
const DefaultItemsPerPage = 15

// Filter narrows a listing. The zero value keeps everything except
// unreleased items, which require IncludeUnreleased to opt in.
type Filter struct {
	MediaType *models.MediaType

	OnlyOnWatchlist bool

	// OnlySeen and OnlyUnseen act on the derived seen flag, after
	// aggregation; for a show that means fully watched vs not.
	OnlySeen   bool
	OnlyUnseen bool

	WithRating    bool
	WithoutRating bool
	WithProgress  bool

	// WithUpcomingEpisode keeps shows/seasons with a scheduled episode;
	// WithNextEpisodeToWatch keeps those with an aired unwatched episode.
	WithUpcomingEpisode    bool
	WithNextEpisodeToWatch bool

	// IncludeUnreleased keeps items whose release date is unknown or in
	// the future. Off by default.
	IncludeUnreleased bool
}

// ListItemsRequest describes one listing query. A nil ListID selects the
// user's whole library: every item on any of their lists plus every item
// they have a seen event, progress marker, or rating for.
type ListItemsRequest struct {
	UserID int64
	ListID *int64

	// Now is the reference time for airing and upcoming computations.
	Now time.Time

	Filter    Filter
	SortBy    SortKey
	SortOrder SortOrder

	// Page is 1-indexed; used by ListItemsPaginated only.
	Page         int
	ItemsPerPage int
}

func (r *ListItemsRequest) itemsPerPage() int {
	if r.ItemsPerPage < 1 {
		return DefaultItemsPerPage
	}
	return r.ItemsPerPage
}

// target is one row-to-be of a listing: a media item, season, or episode
// reference plus when it entered the scope.
type target struct {
	mediaItemID int64
	seasonID    *int64
	episodeID   *int64
	listedAt    *time.Time
}

// resolveScope expands the request into the set of targets to assemble.
func resolveScope(ctx context.Context, snap *database.Snapshot, req *ListItemsRequest) ([]target, error) {
	if req.ListID != nil {
		return resolveListScope(ctx, snap, req.UserID, *req.ListID)
	}
	return resolveLibraryScope(ctx, snap, req.UserID)
}

// resolveListScope returns one target per list member, at the member's
// exact granularity. Private lists are readable by their owner only.
func resolveListScope(ctx context.Context, snap *database.Snapshot, userID, listID int64) ([]target, error) {
	list, err := snap.GetList(ctx, listID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve list %d: %w", listID, err)
	}
	if !list.VisibleTo(userID) {
		return nil, ErrForbidden
	}

	items, err := snap.ListItems(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("resolve list %d members: %w", listID, err)
	}

	targets := make([]target, 0, len(items))
	for _, item := range items {
		addedAt := item.AddedAt
		targets = append(targets, target{
			mediaItemID: item.MediaItemID,
			seasonID:    item.SeasonID,
			episodeID:   item.EpisodeID,
			listedAt:    &addedAt,
		})
	}
	return targets, nil
}

// resolveLibraryScope returns one item-granularity target per media item
// the user tracks: any membership on any of their lists (season and
// episode members count for their show) or any consumption fact. The
// listedAt of a listed item is its earliest membership.
func resolveLibraryScope(ctx context.Context, snap *database.Snapshot, userID int64) ([]target, error) {
	members, err := snap.LibraryListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve library members: %w", err)
	}

	earliest := make(map[int64]time.Time)
	for _, m := range members {
		if at, ok := earliest[m.MediaItemID]; !ok || m.AddedAt.Before(at) {
			earliest[m.MediaItemID] = m.AddedAt
		}
	}

	factIDs, err := snap.FactMediaItemIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve library facts: %w", err)
	}

	seen := make(map[int64]bool, len(earliest))
	targets := make([]target, 0, len(earliest)+len(factIDs))
	for id, at := range earliest {
		listedAt := at
		targets = append(targets, target{mediaItemID: id, listedAt: &listedAt})
		seen[id] = true
	}
	for _, id := range factIDs {
		if !seen[id] {
			targets = append(targets, target{mediaItemID: id})
			seen[id] = true
		}
	}
	return targets, nil
}

// applyFilter evaluates the filter family over assembled views. Seen
// filters operate on the derived flags and are never pushed into SQL.
func applyFilter(views []*models.ItemView, f *Filter, now time.Time) []*models.ItemView {
	result := views[:0]
	for _, v := range views {
		if keepView(v, f, now) {
			result = append(result, v)
		}
	}
	return result
}

func keepView(v *models.ItemView, f *Filter, now time.Time) bool {
	if f.MediaType != nil && v.MediaItem.MediaType != *f.MediaType {
		return false
	}
	if f.OnlyOnWatchlist && !v.OnWatchlist {
		return false
	}
	if f.OnlySeen && !v.Seen {
		return false
	}
	if f.OnlyUnseen && v.Seen {
		return false
	}
	if f.WithRating && v.UserRating == nil {
		return false
	}
	if f.WithoutRating && v.UserRating != nil {
		return false
	}
	if f.WithProgress && v.Progress == nil {
		return false
	}
	if f.WithUpcomingEpisode && v.UpcomingEpisode == nil {
		return false
	}
	if f.WithNextEpisodeToWatch && v.FirstUnwatchedEpisode == nil {
		return false
	}
	if !f.IncludeUnreleased && !v.MediaItem.Released(now) {
		return false
	}
	return true
}
