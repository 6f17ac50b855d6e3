// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
assemble.go - View Assembly

Joins targets with their batched aggregates into tagged ItemViews. The
database round trips are bounded by aggregate kinds, never by target
count: all show-scoped, season-scoped, and exact-granularity facts are
fetched for the whole target set at once and joined in memory.
*/
package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/showlog/showlog/internal/database"
	"github.com/showlog/showlog/internal/logging"
	"github.com/showlog/showlog/internal/metrics"
	"github.com/showlog/showlog/internal/models"
)

// aggregates holds every batched lookup one assembly pass needs.
type aggregates struct {
	mediaItems map[int64]*models.MediaItem
	seasons    map[int64]*models.Season
	episodes   map[int64]*models.Episode

	showAired     map[int64]int
	showSeen      map[int64]int
	showRuntime   map[int64]int
	showFirst     map[int64]*models.Episode
	showLast      map[int64]*models.Episode
	showUpcoming  map[int64]*models.Episode
	showLastSeen  map[int64]time.Time
	seasonAired   map[int64]int
	seasonSeen    map[int64]int
	seasonRuntime map[int64]int
	seasonFirst   map[int64]*models.Episode
	seasonLast    map[int64]*models.Episode
	seasonUp      map[int64]*models.Episode
	seasonSeenAt  map[int64]time.Time

	episodeStats map[int64]database.SeenStat
	movieStats   map[int64]database.SeenStat

	itemRatings    map[int64]*models.UserRating
	seasonRatings  map[int64]*models.UserRating
	episodeRatings map[int64]*models.UserRating

	itemWatch    map[int64]bool
	seasonWatch  map[int64]bool
	episodeWatch map[int64]bool

	movieProgress   map[int64]float64
	episodeProgress map[int64]float64
}

// assembleViews builds one ItemView per resolvable target. Targets whose
// referenced rows have vanished are dropped with a warning rather than
// failing the whole listing.
func assembleViews(ctx context.Context, snap *database.Snapshot, userID int64, now time.Time, targets []target) ([]*models.ItemView, error) {
	agg, err := fetchAggregates(ctx, snap, userID, now, targets)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ItemView, 0, len(targets))
	for i := range targets {
		t := &targets[i]
		view, ok := buildView(ctx, agg, t)
		if !ok {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

// fetchAggregates runs every batched lookup for the target set: one round
// trip per aggregate kind.
func fetchAggregates(ctx context.Context, snap *database.Snapshot, userID int64, now time.Time, targets []target) (*aggregates, error) {
	itemIDs := make([]int64, 0, len(targets))
	itemSet := make(map[int64]bool, len(targets))
	var seasonIDs, episodeIDs []int64
	seasonSet := make(map[int64]bool)
	episodeSet := make(map[int64]bool)
	itemGranularity := make(map[int64]bool)

	for i := range targets {
		t := &targets[i]
		if !itemSet[t.mediaItemID] {
			itemSet[t.mediaItemID] = true
			itemIDs = append(itemIDs, t.mediaItemID)
		}
		switch {
		case t.episodeID != nil:
			if !episodeSet[*t.episodeID] {
				episodeSet[*t.episodeID] = true
				episodeIDs = append(episodeIDs, *t.episodeID)
			}
		case t.seasonID != nil:
			if !seasonSet[*t.seasonID] {
				seasonSet[*t.seasonID] = true
				seasonIDs = append(seasonIDs, *t.seasonID)
			}
		default:
			itemGranularity[t.mediaItemID] = true
		}
	}

	agg := &aggregates{}
	var err error

	if agg.mediaItems, err = snap.MediaItemsByIDs(ctx, itemIDs); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.seasons, err = snap.SeasonsByIDs(ctx, seasonIDs); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.episodes, err = snap.EpisodesByIDs(ctx, episodeIDs); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	// Item-granularity rows split into shows and everything else
	var showIDs, movieIDs, ratedItemIDs []int64
	for id := range itemGranularity {
		item := agg.mediaItems[id]
		if item == nil {
			continue
		}
		ratedItemIDs = append(ratedItemIDs, id)
		if item.MediaType == models.MediaTypeTv {
			showIDs = append(showIDs, id)
		} else {
			movieIDs = append(movieIDs, id)
		}
	}

	if agg.showAired, err = snap.ShowAiredCounts(ctx, showIDs, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.showSeen, err = snap.ShowSeenEpisodeCounts(ctx, showIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.showRuntime, err = snap.ShowTotalRuntimes(ctx, showIDs, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.showFirst, err = snap.ShowFirstUnwatched(ctx, showIDs, userID, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.showLast, err = snap.ShowLastAired(ctx, showIDs, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.showUpcoming, err = snap.ShowUpcoming(ctx, showIDs, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.showLastSeen, err = snap.ItemLastSeenAt(ctx, showIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	if agg.seasonAired, err = snap.SeasonAiredCounts(ctx, seasonIDs, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.seasonSeen, err = snap.SeasonSeenEpisodeCounts(ctx, seasonIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.seasonRuntime, err = snap.SeasonTotalRuntimes(ctx, seasonIDs, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.seasonFirst, err = snap.SeasonFirstUnwatched(ctx, seasonIDs, userID, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.seasonLast, err = snap.SeasonLastAired(ctx, seasonIDs, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.seasonUp, err = snap.SeasonUpcoming(ctx, seasonIDs, now); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.seasonSeenAt, err = snap.SeasonLastSeenAt(ctx, seasonIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	if agg.episodeStats, err = snap.EpisodeSeenStats(ctx, episodeIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.movieStats, err = snap.ItemSeenStats(ctx, movieIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	if agg.itemRatings, err = snap.ItemRatings(ctx, ratedItemIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.seasonRatings, err = snap.SeasonRatings(ctx, seasonIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.episodeRatings, err = snap.EpisodeRatings(ctx, episodeIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	// Watchlist membership; a user without a watchlist is simply a
	// member of nothing
	watchlistID, err := snap.WatchlistID(ctx, userID)
	switch {
	case err == nil:
		if agg.itemWatch, err = snap.ItemWatchlisted(ctx, ratedItemIDs, watchlistID); err != nil {
			return nil, fmt.Errorf("assemble: %w", err)
		}
		if agg.seasonWatch, err = snap.SeasonWatchlisted(ctx, seasonIDs, watchlistID); err != nil {
			return nil, fmt.Errorf("assemble: %w", err)
		}
		if agg.episodeWatch, err = snap.EpisodeWatchlisted(ctx, episodeIDs, watchlistID); err != nil {
			return nil, fmt.Errorf("assemble: %w", err)
		}
	case errors.Is(err, database.ErrNotFound):
		agg.itemWatch = map[int64]bool{}
		agg.seasonWatch = map[int64]bool{}
		agg.episodeWatch = map[int64]bool{}
	default:
		return nil, fmt.Errorf("assemble: %w", err)
	}

	if agg.movieProgress, err = snap.ItemProgress(ctx, movieIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if agg.episodeProgress, err = snap.EpisodeProgress(ctx, episodeIDs, userID); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	return agg, nil
}

// buildView assembles one target. Returns false when a referenced row no
// longer exists.
func buildView(ctx context.Context, agg *aggregates, t *target) (*models.ItemView, bool) {
	item := agg.mediaItems[t.mediaItemID]
	if item == nil {
		logging.Ctx(ctx).Warn().Int64("mediaItemId", t.mediaItemID).Msg("dangling listing target dropped")
		return nil, false
	}

	switch {
	case t.episodeID != nil:
		return buildEpisodeView(ctx, agg, item, t)
	case t.seasonID != nil:
		return buildSeasonView(ctx, agg, item, t)
	default:
		return buildItemView(ctx, agg, item, t), true
	}
}

func buildEpisodeView(ctx context.Context, agg *aggregates, item *models.MediaItem, t *target) (*models.ItemView, bool) {
	ep := agg.episodes[*t.episodeID]
	if ep == nil {
		logging.Ctx(ctx).Warn().Int64("episodeId", *t.episodeID).Msg("dangling episode target dropped")
		return nil, false
	}

	stat := agg.episodeStats[ep.ID]
	view := &models.ItemView{
		Type:        models.ViewTypeEpisode,
		MediaItem:   *item,
		Episode:     ep,
		ListedAt:    t.listedAt,
		Seen:        stat.Count > 0,
		LastSeenAt:  stat.LastSeenAt,
		OnWatchlist: agg.episodeWatch[ep.ID],
		UserRating:  agg.episodeRatings[ep.ID],
	}
	if p, ok := agg.episodeProgress[ep.ID]; ok {
		view.Progress = &p
	}
	return view, true
}

func buildSeasonView(ctx context.Context, agg *aggregates, item *models.MediaItem, t *target) (*models.ItemView, bool) {
	season := agg.seasons[*t.seasonID]
	if season == nil {
		logging.Ctx(ctx).Warn().Int64("seasonId", *t.seasonID).Msg("dangling season target dropped")
		return nil, false
	}

	aired := agg.seasonAired[season.ID]
	seen := agg.seasonSeen[season.ID]
	unseen := clampUnseen(ctx, "season", season.ID, aired, seen)
	runtime := agg.seasonRuntime[season.ID]

	view := &models.ItemView{
		Type:                  models.ViewTypeSeason,
		MediaItem:             *item,
		Season:                season,
		ListedAt:              t.listedAt,
		Seen:                  aired > 0 && seen >= aired,
		OnWatchlist:           agg.seasonWatch[season.ID],
		UserRating:            agg.seasonRatings[season.ID],
		AiredEpisodesCount:    &aired,
		SeenEpisodesCount:     &seen,
		UnseenEpisodesCount:   &unseen,
		TotalRuntime:          &runtime,
		FirstUnwatchedEpisode: agg.seasonFirst[season.ID],
		LastAiredEpisode:      agg.seasonLast[season.ID],
		UpcomingEpisode:       agg.seasonUp[season.ID],
	}
	if at, ok := agg.seasonSeenAt[season.ID]; ok {
		view.LastSeenAt = &at
	}
	return view, true
}

func buildItemView(ctx context.Context, agg *aggregates, item *models.MediaItem, t *target) *models.ItemView {
	view := &models.ItemView{
		Type:        models.ViewTypeFor(item.MediaType, models.GranularityItem),
		MediaItem:   *item,
		ListedAt:    t.listedAt,
		OnWatchlist: agg.itemWatch[item.ID],
		UserRating:  agg.itemRatings[item.ID],
	}

	if item.MediaType == models.MediaTypeTv {
		aired := agg.showAired[item.ID]
		seen := agg.showSeen[item.ID]
		unseen := clampUnseen(ctx, "show", item.ID, aired, seen)
		runtime := agg.showRuntime[item.ID]

		view.Seen = aired > 0 && seen >= aired
		view.AiredEpisodesCount = &aired
		view.SeenEpisodesCount = &seen
		view.UnseenEpisodesCount = &unseen
		view.TotalRuntime = &runtime
		view.FirstUnwatchedEpisode = agg.showFirst[item.ID]
		view.LastAiredEpisode = agg.showLast[item.ID]
		view.UpcomingEpisode = agg.showUpcoming[item.ID]
		if at, ok := agg.showLastSeen[item.ID]; ok {
			view.LastSeenAt = &at
		}
		return view
	}

	stat := agg.movieStats[item.ID]
	view.Seen = stat.Count > 0
	view.LastSeenAt = stat.LastSeenAt
	if item.Runtime != nil {
		runtime := *item.Runtime
		view.TotalRuntime = &runtime
	}
	if p, ok := agg.movieProgress[item.ID]; ok {
		view.Progress = &p
	}
	return view
}

// clampUnseen derives aired minus seen, clamped at zero. A negative
// difference means the stored facts disagree (seen events for more
// episodes than have aired); the listing stays usable and the anomaly is
// logged and counted.
func clampUnseen(ctx context.Context, granularity string, id int64, aired, seen int) int {
	unseen := aired - seen
	if unseen < 0 {
		logging.Ctx(ctx).Warn().
			Str("granularity", granularity).
			Int64("id", id).
			Int("aired", aired).
			Int("seen", seen).
			Msg("seen count exceeds aired count, clamping unseen to zero")
		metrics.RecordInconsistentAggregate(granularity)
		return 0
	}
	return unseen
}
