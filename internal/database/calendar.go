// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
calendar.go - Calendar Window Fact Queries

Two ways of collecting episodes for a calendar window:

  - Detailed: episodes reachable through the nearest enclosing list
    membership. A show membership contributes all of the show's episodes,
    a season membership only that season's, an episode membership only
    itself. Bounds compare full timestamps.
  - Simple: every episode of any show with a membership at any
    granularity. Bounds compare calendar dates only.

Non-tv releases come from item memberships in both modes. Special
episodes are enumerated like any other; the aggregate queries are where
the specials exclusion lives.
*/
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/showlog/showlog/internal/models"
)

// mediaItemColumnsM mirrors mediaItemColumns with the "m" table alias.
const mediaItemColumnsM = `m.id, m.media_type, m.title, m.release_date, m.runtime, m.overview,
	m.poster, m.backdrop, m.network, m.status, m.genres, m.tmdb_id, m.imdb_id, m.tvdb_id,
	m.number_of_seasons, m.added_at`

// CalendarEpisodesDetailed returns episodes releasing inside [from, to]
// (full-timestamp, inclusive) reachable through the given lists' members
// at their exact granularity. The same episode may arrive through several
// paths; callers de-duplicate by episode id.
func (s *Snapshot) CalendarEpisodesDetailed(ctx context.Context, listIDs []int64, from, to time.Time) ([]*models.Episode, error) {
	if len(listIDs) == 0 {
		return nil, nil
	}
	placeholders, listArgs := buildInClause(listIDs)

	episodeWindow := `e.release_date IS NOT NULL
		AND e.release_date >= ? AND e.release_date <= ?`

	query := `SELECT ` + episodeColumnsE + ` FROM episode e
		JOIN list_item li ON li.media_item_id = e.tv_show_id
			AND li.season_id IS NULL AND li.episode_id IS NULL
		WHERE li.list_id IN (` + placeholders + `) AND ` + episodeWindow + `
	UNION
	SELECT ` + episodeColumnsE + ` FROM episode e
		JOIN list_item li ON li.season_id = e.season_id
		WHERE li.list_id IN (` + placeholders + `) AND ` + episodeWindow + `
	UNION
	SELECT ` + episodeColumnsE + ` FROM episode e
		JOIN list_item li ON li.episode_id = e.id
		WHERE li.list_id IN (` + placeholders + `) AND ` + episodeWindow

	args := make([]interface{}, 0, 3*(len(listIDs)+2))
	for i := 0; i < 3; i++ {
		args = append(args, listArgs...)
		args = append(args, from, to)
	}

	return s.queryEpisodes(ctx, query, args...)
}

// CalendarEpisodesSimple returns every episode of any show with a
// membership in the given lists, releasing on a calendar date inside
// [from, to]. Membership granularity is ignored; a single tracked episode
// pulls in the whole show.
func (s *Snapshot) CalendarEpisodesSimple(ctx context.Context, listIDs []int64, from, to time.Time) ([]*models.Episode, error) {
	if len(listIDs) == 0 {
		return nil, nil
	}
	placeholders, args := buildInClause(listIDs)

	query := `SELECT DISTINCT ` + episodeColumnsE + ` FROM episode e
		JOIN list_item li ON li.media_item_id = e.tv_show_id
		WHERE li.list_id IN (` + placeholders + `)
		AND e.release_date IS NOT NULL
		AND CAST(e.release_date AS DATE) BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)`

	args = append(args, from, to)
	return s.queryEpisodes(ctx, query, args...)
}

// CalendarItemReleases returns non-tv media items with a membership in the
// given lists releasing inside the window. dateOnly selects calendar-date
// comparison (simple mode) over full timestamps (detailed mode).
func (s *Snapshot) CalendarItemReleases(ctx context.Context, listIDs []int64, from, to time.Time, dateOnly bool) ([]*models.MediaItem, error) {
	if len(listIDs) == 0 {
		return nil, nil
	}
	placeholders, args := buildInClause(listIDs)

	window := `m.release_date >= ? AND m.release_date <= ?`
	if dateOnly {
		window = `CAST(m.release_date AS DATE) BETWEEN CAST(? AS DATE) AND CAST(? AS DATE)`
	}

	query := `SELECT DISTINCT ` + mediaItemColumnsM + ` FROM media_item m
		JOIN list_item li ON li.media_item_id = m.id
		WHERE li.list_id IN (` + placeholders + `)
		AND m.media_type <> 'tv' AND m.release_date IS NOT NULL
		AND ` + window

	args = append(args, from, to)

	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar releases: %w", err)
	}
	defer closeQuietly(rows)

	var items []*models.MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar release: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
