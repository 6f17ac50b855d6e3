// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
aggregates_seasons.go - Batched Season-Scoped Aggregates

The season-scoped mirror of aggregates_shows.go, keyed by season id.
Every aggregate here counts only the season's own episodes; a season view
never borrows show-level numbers.
*/
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/showlog/showlog/internal/models"
)

// SeasonAiredCounts returns the number of aired episodes per season.
func (s *Snapshot) SeasonAiredCounts(ctx context.Context, seasonIDs []int64, now time.Time) (map[int64]int, error) {
	if len(seasonIDs) == 0 {
		return map[int64]int{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT season_id, COUNT(*) FROM episode
		WHERE season_id IN (` + placeholders + `)
		AND NOT is_special AND release_date IS NOT NULL AND release_date <= ?
		GROUP BY season_id`
	args = append(args, now)
	return s.countsByID(ctx, query, args...)
}

// SeasonSeenEpisodeCounts returns, per season, the number of distinct
// non-special episodes of that season the user has seen.
func (s *Snapshot) SeasonSeenEpisodeCounts(ctx context.Context, seasonIDs []int64, userID int64) (map[int64]int, error) {
	if len(seasonIDs) == 0 {
		return map[int64]int{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT e.season_id, COUNT(DISTINCT e.id)
		FROM episode e
		JOIN seen sn ON sn.episode_id = e.id AND sn.user_id = ?
		WHERE e.season_id IN (` + placeholders + `) AND NOT e.is_special
		GROUP BY e.season_id`
	allArgs := append([]interface{}{userID}, args...)
	return s.countsByID(ctx, query, allArgs...)
}

// SeasonTotalRuntimes returns, per season, the summed runtime in minutes
// over aired episodes, with the show's flat runtime as fallback.
func (s *Snapshot) SeasonTotalRuntimes(ctx context.Context, seasonIDs []int64, now time.Time) (map[int64]int, error) {
	if len(seasonIDs) == 0 {
		return map[int64]int{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT e.season_id, CAST(SUM(COALESCE(e.runtime, m.runtime, 0)) AS BIGINT)
		FROM episode e
		JOIN media_item m ON m.id = e.tv_show_id
		WHERE e.season_id IN (` + placeholders + `)
		AND NOT e.is_special AND e.release_date IS NOT NULL AND e.release_date <= ?
		GROUP BY e.season_id`
	args = append(args, now)
	return s.countsByID(ctx, query, args...)
}

// SeasonFirstUnwatched returns, per season, the aired episode with the
// lowest ordering key that the user has no seen event for.
func (s *Snapshot) SeasonFirstUnwatched(ctx context.Context, seasonIDs []int64, userID int64, now time.Time) (map[int64]*models.Episode, error) {
	if len(seasonIDs) == 0 {
		return map[int64]*models.Episode{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT ` + episodeColumnsE + ` FROM episode e
		WHERE e.season_id IN (` + placeholders + `)
		AND NOT e.is_special AND e.release_date IS NOT NULL AND e.release_date <= ?
		AND NOT EXISTS (SELECT 1 FROM seen sn WHERE sn.user_id = ? AND sn.episode_id = e.id)
		QUALIFY row_number() OVER (PARTITION BY e.season_id ORDER BY e.season_and_episode_number) = 1`
	args = append(args, now, userID)
	return s.episodesBySeason(ctx, query, args...)
}

// SeasonLastAired returns, per season, the aired episode with the highest
// ordering key.
func (s *Snapshot) SeasonLastAired(ctx context.Context, seasonIDs []int64, now time.Time) (map[int64]*models.Episode, error) {
	if len(seasonIDs) == 0 {
		return map[int64]*models.Episode{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT ` + episodeColumnsE + ` FROM episode e
		WHERE e.season_id IN (` + placeholders + `)
		AND NOT e.is_special AND e.release_date IS NOT NULL AND e.release_date <= ?
		QUALIFY row_number() OVER (PARTITION BY e.season_id ORDER BY e.season_and_episode_number DESC) = 1`
	args = append(args, now)
	return s.episodesBySeason(ctx, query, args...)
}

// SeasonUpcoming returns, per season, the episode with the lowest ordering
// key whose release date is at or after now.
func (s *Snapshot) SeasonUpcoming(ctx context.Context, seasonIDs []int64, now time.Time) (map[int64]*models.Episode, error) {
	if len(seasonIDs) == 0 {
		return map[int64]*models.Episode{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT ` + episodeColumnsE + ` FROM episode e
		WHERE e.season_id IN (` + placeholders + `)
		AND NOT e.is_special AND e.release_date IS NOT NULL AND e.release_date >= ?
		QUALIFY row_number() OVER (PARTITION BY e.season_id ORDER BY e.season_and_episode_number) = 1`
	args = append(args, now)
	return s.episodesBySeason(ctx, query, args...)
}

// SeasonLastSeenAt returns, per season, the latest dated seen event over
// that season's episodes.
func (s *Snapshot) SeasonLastSeenAt(ctx context.Context, seasonIDs []int64, userID int64) (map[int64]time.Time, error) {
	if len(seasonIDs) == 0 {
		return map[int64]time.Time{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT e.season_id, MAX(sn.seen_at)
		FROM seen sn
		JOIN episode e ON e.id = sn.episode_id
		WHERE sn.user_id = ? AND sn.seen_at IS NOT NULL
		AND e.season_id IN (` + placeholders + `)
		GROUP BY e.season_id`
	allArgs := append([]interface{}{userID}, args...)
	return s.timesByID(ctx, query, allArgs...)
}

// timesByID runs a (id, timestamp) query into a map.
func (s *Snapshot) timesByID(ctx context.Context, query string, args ...interface{}) (map[int64]time.Time, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timestamps: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]time.Time)
	for rows.Next() {
		var id int64
		var ts time.Time
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan timestamp: %w", err)
		}
		result[id] = ts
	}
	return result, rows.Err()
}

// episodesBySeason runs an episode query into a map keyed by season id.
func (s *Snapshot) episodesBySeason(ctx context.Context, query string, args ...interface{}) (map[int64]*models.Episode, error) {
	episodes, err := s.queryEpisodes(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	result := make(map[int64]*models.Episode, len(episodes))
	for _, ep := range episodes {
		result[ep.SeasonID] = ep
	}
	return result, nil
}
