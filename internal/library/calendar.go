// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/showlog/showlog/internal/database"
	"github.com/showlog/showlog/internal/metrics"
	"github.com/showlog/showlog/internal/models"
)

// CalendarRequest describes one calendar window query.
type CalendarRequest struct {
	UserID int64

	// From and To bound the window, inclusive on both ends. Simple mode
	// compares calendar dates only; detailed mode compares full timestamps.
	From time.Time
	To   time.Time

	// IncludeAllLists widens the scope from the user's watchlist to every
	// list they own.
	IncludeAllLists bool

	// Simple switches from exact-granularity membership tracking to
	// whole-show tracking: any membership of a show pulls in all of its
	// episodes.
	Simple bool
}

// Calendar returns the releases inside the window for the user's tracked
// media, ordered by release date in detailed mode and by title in simple
// mode. Entries carry seen-event flags resolved in the same snapshot;
// special episodes are listed like any other, flagged for the client.
func (e *Engine) Calendar(ctx context.Context, req *CalendarRequest) (entries []*models.CalendarEntry, err error) {
	start := time.Now()
	defer func() { metrics.RecordEngineQuery("calendar", time.Since(start), err) }()

	snap, err := e.db.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	listIDs, err := calendarListIDs(ctx, snap, req)
	if err != nil {
		return nil, err
	}
	if len(listIDs) == 0 {
		return nil, nil
	}

	var episodes []*models.Episode
	if req.Simple {
		episodes, err = snap.CalendarEpisodesSimple(ctx, listIDs, req.From, req.To)
	} else {
		episodes, err = snap.CalendarEpisodesDetailed(ctx, listIDs, req.From, req.To)
	}
	if err != nil {
		return nil, fmt.Errorf("calendar episodes: %w", err)
	}
	episodes = dedupeEpisodes(episodes)

	releases, err := snap.CalendarItemReleases(ctx, listIDs, req.From, req.To, req.Simple)
	if err != nil {
		return nil, fmt.Errorf("calendar releases: %w", err)
	}

	// One show lookup for every episode in the window
	showIDs := make([]int64, 0, len(episodes))
	seen := make(map[int64]bool, len(episodes))
	for _, ep := range episodes {
		if !seen[ep.TvShowID] {
			seen[ep.TvShowID] = true
			showIDs = append(showIDs, ep.TvShowID)
		}
	}
	shows, err := snap.MediaItemsByIDs(ctx, showIDs)
	if err != nil {
		return nil, fmt.Errorf("calendar shows: %w", err)
	}

	episodeIDs := make([]int64, 0, len(episodes))
	for _, ep := range episodes {
		episodeIDs = append(episodeIDs, ep.ID)
	}
	itemIDs := make([]int64, 0, len(showIDs)+len(releases))
	itemIDs = append(itemIDs, showIDs...)
	for _, item := range releases {
		itemIDs = append(itemIDs, item.ID)
	}
	episodeStats, err := snap.EpisodeSeenStats(ctx, episodeIDs, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("calendar episode seen state: %w", err)
	}
	itemStats, err := snap.ItemSeenStats(ctx, itemIDs, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("calendar item seen state: %w", err)
	}

	entries = make([]*models.CalendarEntry, 0, len(episodes)+len(releases))
	for _, ep := range episodes {
		show := shows[ep.TvShowID]
		if show == nil || ep.ReleaseDate == nil {
			continue
		}
		entries = append(entries, &models.CalendarEntry{
			MediaItem:     *show,
			MediaItemSeen: itemStats[show.ID].Count > 0,
			Episode:       ep,
			EpisodeSeen:   episodeStats[ep.ID].Count > 0,
			ReleaseDate:   *ep.ReleaseDate,
		})
	}
	for _, item := range releases {
		if item.ReleaseDate == nil {
			continue
		}
		entries = append(entries, &models.CalendarEntry{
			MediaItem:     *item,
			MediaItemSeen: itemStats[item.ID].Count > 0,
			ReleaseDate:   *item.ReleaseDate,
		})
	}

	if req.Simple {
		sortCalendarByTitle(entries)
	} else {
		sortCalendarByRelease(entries)
	}
	return entries, nil
}

// calendarListIDs resolves the lists in scope: the watchlist alone by
// default, every owned list when IncludeAllLists is set. A user without a
// watchlist simply has an empty default calendar.
func calendarListIDs(ctx context.Context, snap *database.Snapshot, req *CalendarRequest) ([]int64, error) {
	if !req.IncludeAllLists {
		id, err := snap.WatchlistID(ctx, req.UserID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("calendar watchlist: %w", err)
		}
		return []int64{id}, nil
	}

	lists, err := snap.ListsForUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("calendar lists: %w", err)
	}
	ids := make([]int64, 0, len(lists))
	for _, l := range lists {
		ids = append(ids, l.ID)
	}
	return ids, nil
}

// dedupeEpisodes drops repeated episode ids, keeping first occurrence. An
// episode can reach the window through several membership paths but
// appears in the calendar once.
func dedupeEpisodes(episodes []*models.Episode) []*models.Episode {
	seen := make(map[int64]bool, len(episodes))
	result := episodes[:0]
	for _, ep := range episodes {
		if seen[ep.ID] {
			continue
		}
		seen[ep.ID] = true
		result = append(result, ep)
	}
	return result
}

func sortCalendarByRelease(entries []*models.CalendarEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.ReleaseDate.Equal(b.ReleaseDate) {
			return a.ReleaseDate.Before(b.ReleaseDate)
		}
		if c := compareCalendarEpisodes(a, b); c != 0 {
			return c < 0
		}
		return calendarTitle(a) < calendarTitle(b)
	})
}

func sortCalendarByTitle(entries []*models.CalendarEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ta, tb := calendarTitle(a), calendarTitle(b)
		if ta != tb {
			return ta < tb
		}
		return compareCalendarEpisodes(a, b) < 0
	})
}

// compareCalendarEpisodes orders by season then episode number. Entries
// without an episode sort before those with one.
func compareCalendarEpisodes(a, b *models.CalendarEntry) int {
	switch {
	case a.Episode == nil && b.Episode == nil:
		return 0
	case a.Episode == nil:
		return -1
	case b.Episode == nil:
		return 1
	default:
		return a.Episode.SeasonAndEpisodeNumber - b.Episode.SeasonAndEpisodeNumber
	}
}

func calendarTitle(e *models.CalendarEntry) string {
	return strings.ToLower(e.MediaItem.Title)
}
