// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
aggregates_shows.go - Batched Show-Scoped Aggregates

Every query here takes a set of show ids and returns a map keyed by show
id: one round trip per aggregate kind regardless of how many shows a page
contains. All episode aggregates exclude special episodes. "Aired" means
a known release date not after the caller-supplied now.
*/
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/showlog/showlog/internal/models"
)

// episodeColumnsE mirrors episodeColumns with the "e" table alias, for
// aggregate queries that join against facts.
const episodeColumnsE = `e.id, e.tv_show_id, e.season_id, e.season_number, e.episode_number,
	e.title, e.is_special, e.release_date, e.runtime, e.season_and_episode_number`

// ShowAiredCounts returns the number of aired episodes per show.
func (s *Snapshot) ShowAiredCounts(ctx context.Context, showIDs []int64, now time.Time) (map[int64]int, error) {
	if len(showIDs) == 0 {
		return map[int64]int{}, nil
	}
	placeholders, args := buildInClause(showIDs)
	query := `SELECT tv_show_id, COUNT(*) FROM episode
		WHERE tv_show_id IN (` + placeholders + `)
		AND NOT is_special AND release_date IS NOT NULL AND release_date <= ?
		GROUP BY tv_show_id`
	args = append(args, now)
	return s.countsByID(ctx, query, args...)
}

// ShowSeenEpisodeCounts returns, per show, the number of distinct
// non-special episodes the user has at least one seen event for. Airing
// is deliberately not a condition; an episode seen before its official
// release still counts, and the unseen computation clamps the difference.
func (s *Snapshot) ShowSeenEpisodeCounts(ctx context.Context, showIDs []int64, userID int64) (map[int64]int, error) {
	if len(showIDs) == 0 {
		return map[int64]int{}, nil
	}
	placeholders, args := buildInClause(showIDs)
	query := `SELECT e.tv_show_id, COUNT(DISTINCT e.id)
		FROM episode e
		JOIN seen sn ON sn.episode_id = e.id AND sn.user_id = ?
		WHERE e.tv_show_id IN (` + placeholders + `) AND NOT e.is_special
		GROUP BY e.tv_show_id`
	allArgs := append([]interface{}{userID}, args...)
	return s.countsByID(ctx, query, allArgs...)
}

// ShowTotalRuntimes returns, per show, the summed runtime in minutes over
// aired episodes. Episodes without their own runtime fall back to the
// show's flat runtime.
func (s *Snapshot) ShowTotalRuntimes(ctx context.Context, showIDs []int64, now time.Time) (map[int64]int, error) {
	if len(showIDs) == 0 {
		return map[int64]int{}, nil
	}
	placeholders, args := buildInClause(showIDs)
	query := `SELECT e.tv_show_id, CAST(SUM(COALESCE(e.runtime, m.runtime, 0)) AS BIGINT)
		FROM episode e
		JOIN media_item m ON m.id = e.tv_show_id
		WHERE e.tv_show_id IN (` + placeholders + `)
		AND NOT e.is_special AND e.release_date IS NOT NULL AND e.release_date <= ?
		GROUP BY e.tv_show_id`
	args = append(args, now)
	return s.countsByID(ctx, query, args...)
}

// ShowFirstUnwatched returns, per show, the aired episode with the lowest
// ordering key that the user has no seen event for.
func (s *Snapshot) ShowFirstUnwatched(ctx context.Context, showIDs []int64, userID int64, now time.Time) (map[int64]*models.Episode, error) {
	if len(showIDs) == 0 {
		return map[int64]*models.Episode{}, nil
	}
	placeholders, args := buildInClause(showIDs)
	query := `SELECT ` + episodeColumnsE + ` FROM episode e
		WHERE e.tv_show_id IN (` + placeholders + `)
		AND NOT e.is_special AND e.release_date IS NOT NULL AND e.release_date <= ?
		AND NOT EXISTS (SELECT 1 FROM seen sn WHERE sn.user_id = ? AND sn.episode_id = e.id)
		QUALIFY row_number() OVER (PARTITION BY e.tv_show_id ORDER BY e.season_and_episode_number) = 1`
	args = append(args, now, userID)
	return s.episodesByShow(ctx, query, args...)
}

// ShowLastAired returns, per show, the aired episode with the highest
// ordering key.
func (s *Snapshot) ShowLastAired(ctx context.Context, showIDs []int64, now time.Time) (map[int64]*models.Episode, error) {
	if len(showIDs) == 0 {
		return map[int64]*models.Episode{}, nil
	}
	placeholders, args := buildInClause(showIDs)
	query := `SELECT ` + episodeColumnsE + ` FROM episode e
		WHERE e.tv_show_id IN (` + placeholders + `)
		AND NOT e.is_special AND e.release_date IS NOT NULL AND e.release_date <= ?
		QUALIFY row_number() OVER (PARTITION BY e.tv_show_id ORDER BY e.season_and_episode_number DESC) = 1`
	args = append(args, now)
	return s.episodesByShow(ctx, query, args...)
}

// ShowUpcoming returns, per show, the episode with the lowest ordering key
// whose release date is at or after now.
func (s *Snapshot) ShowUpcoming(ctx context.Context, showIDs []int64, now time.Time) (map[int64]*models.Episode, error) {
	if len(showIDs) == 0 {
		return map[int64]*models.Episode{}, nil
	}
	placeholders, args := buildInClause(showIDs)
	query := `SELECT ` + episodeColumnsE + ` FROM episode e
		WHERE e.tv_show_id IN (` + placeholders + `)
		AND NOT e.is_special AND e.release_date IS NOT NULL AND e.release_date >= ?
		QUALIFY row_number() OVER (PARTITION BY e.tv_show_id ORDER BY e.season_and_episode_number) = 1`
	args = append(args, now)
	return s.episodesByShow(ctx, query, args...)
}

// countsByID runs a (id, count) query into a map.
func (s *Snapshot) countsByID(ctx context.Context, query string, args ...interface{}) (map[int64]int, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]int)
	for rows.Next() {
		var id int64
		var count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		result[id] = int(count)
	}
	return result, rows.Err()
}

// episodesByShow runs an episode query into a map keyed by show id.
func (s *Snapshot) episodesByShow(ctx context.Context, query string, args ...interface{}) (map[int64]*models.Episode, error) {
	episodes, err := s.queryEpisodes(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	result := make(map[int64]*models.Episode, len(episodes))
	for _, ep := range episodes {
		result[ep.TvShowID] = ep
	}
	return result, nil
}
