// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

/*
aggregates_targets.go - Batched Exact-Granularity Facts

Seen stats, ratings, watchlist membership, and progress, each looked up at
the exact granularity of the target. A show rating never appears on its
seasons, a season membership never marks its episodes, and so on; the
narrowing id columns are checked explicitly in every query.
*/
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/showlog/showlog/internal/models"
)

// SeenStat is the per-target summary of a user's seen events.
type SeenStat struct {
	Count      int
	LastSeenAt *time.Time
}

// EpisodeSeenStats returns seen-event counts and last dated timestamps per
// episode.
func (s *Snapshot) EpisodeSeenStats(ctx context.Context, episodeIDs []int64, userID int64) (map[int64]SeenStat, error) {
	if len(episodeIDs) == 0 {
		return map[int64]SeenStat{}, nil
	}
	placeholders, args := buildInClause(episodeIDs)
	query := `SELECT episode_id, COUNT(*), MAX(seen_at) FROM seen
		WHERE user_id = ? AND episode_id IN (` + placeholders + `)
		GROUP BY episode_id`
	allArgs := append([]interface{}{userID}, args...)
	return s.seenStatsByID(ctx, query, allArgs...)
}

// ItemSeenStats returns seen-event counts and last dated timestamps per
// non-tv media item. Episode-level events are excluded; they belong to
// shows, which use ItemLastSeenAt and the episode counts instead.
func (s *Snapshot) ItemSeenStats(ctx context.Context, mediaItemIDs []int64, userID int64) (map[int64]SeenStat, error) {
	if len(mediaItemIDs) == 0 {
		return map[int64]SeenStat{}, nil
	}
	placeholders, args := buildInClause(mediaItemIDs)
	query := `SELECT media_item_id, COUNT(*), MAX(seen_at) FROM seen
		WHERE user_id = ? AND episode_id IS NULL AND media_item_id IN (` + placeholders + `)
		GROUP BY media_item_id`
	allArgs := append([]interface{}{userID}, args...)
	return s.seenStatsByID(ctx, query, allArgs...)
}

// ItemLastSeenAt returns, per media item, the latest dated seen event
// including episode-level events. For a show this is the last time any of
// its episodes was watched.
func (s *Snapshot) ItemLastSeenAt(ctx context.Context, mediaItemIDs []int64, userID int64) (map[int64]time.Time, error) {
	if len(mediaItemIDs) == 0 {
		return map[int64]time.Time{}, nil
	}
	placeholders, args := buildInClause(mediaItemIDs)
	query := `SELECT media_item_id, MAX(seen_at) FROM seen
		WHERE user_id = ? AND seen_at IS NOT NULL AND media_item_id IN (` + placeholders + `)
		GROUP BY media_item_id`
	allArgs := append([]interface{}{userID}, args...)
	return s.timesByID(ctx, query, allArgs...)
}

func (s *Snapshot) seenStatsByID(ctx context.Context, query string, args ...interface{}) (map[int64]SeenStat, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen stats: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]SeenStat)
	for rows.Next() {
		var id int64
		var count int64
		var last sql.NullTime
		if err := rows.Scan(&id, &count, &last); err != nil {
			return nil, fmt.Errorf("failed to scan seen stat: %w", err)
		}
		result[id] = SeenStat{Count: int(count), LastSeenAt: nullTimePtr(last)}
	}
	return result, rows.Err()
}

const userRatingColumns = `id, user_id, media_item_id, season_id, episode_id, rating, review, rated_at`

func scanUserRating(s rowScanner) (*models.UserRating, error) {
	var (
		r         models.UserRating
		seasonID  sql.NullInt64
		episodeID sql.NullInt64
		rating    sql.NullFloat64
		review    sql.NullString
	)
	err := s.Scan(&r.ID, &r.UserID, &r.MediaItemID, &seasonID, &episodeID, &rating, &review, &r.Date)
	if err != nil {
		return nil, err
	}
	r.SeasonID = nullInt64Ptr(seasonID)
	r.EpisodeID = nullInt64Ptr(episodeID)
	r.Rating = nullFloatPtr(rating)
	r.Review = nullStringPtr(review)
	return &r, nil
}

// ItemRatings returns the user's item-granularity ratings. Rows carrying
// neither rating nor review are ignored.
func (s *Snapshot) ItemRatings(ctx context.Context, mediaItemIDs []int64, userID int64) (map[int64]*models.UserRating, error) {
	if len(mediaItemIDs) == 0 {
		return map[int64]*models.UserRating{}, nil
	}
	placeholders, args := buildInClause(mediaItemIDs)
	query := `SELECT ` + userRatingColumns + ` FROM user_rating
		WHERE user_id = ? AND media_item_id IN (` + placeholders + `)
		AND season_id IS NULL AND episode_id IS NULL
		AND (rating IS NOT NULL OR review IS NOT NULL)`
	allArgs := append([]interface{}{userID}, args...)
	return s.ratingsByID(ctx, query, func(r *models.UserRating) int64 { return r.MediaItemID }, allArgs...)
}

// SeasonRatings returns the user's season-granularity ratings.
func (s *Snapshot) SeasonRatings(ctx context.Context, seasonIDs []int64, userID int64) (map[int64]*models.UserRating, error) {
	if len(seasonIDs) == 0 {
		return map[int64]*models.UserRating{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT ` + userRatingColumns + ` FROM user_rating
		WHERE user_id = ? AND season_id IN (` + placeholders + `)
		AND (rating IS NOT NULL OR review IS NOT NULL)`
	allArgs := append([]interface{}{userID}, args...)
	return s.ratingsByID(ctx, query, func(r *models.UserRating) int64 { return *r.SeasonID }, allArgs...)
}

// EpisodeRatings returns the user's episode-granularity ratings.
func (s *Snapshot) EpisodeRatings(ctx context.Context, episodeIDs []int64, userID int64) (map[int64]*models.UserRating, error) {
	if len(episodeIDs) == 0 {
		return map[int64]*models.UserRating{}, nil
	}
	placeholders, args := buildInClause(episodeIDs)
	query := `SELECT ` + userRatingColumns + ` FROM user_rating
		WHERE user_id = ? AND episode_id IN (` + placeholders + `)
		AND (rating IS NOT NULL OR review IS NOT NULL)`
	allArgs := append([]interface{}{userID}, args...)
	return s.ratingsByID(ctx, query, func(r *models.UserRating) int64 { return *r.EpisodeID }, allArgs...)
}

func (s *Snapshot) ratingsByID(ctx context.Context, query string, key func(*models.UserRating) int64, args ...interface{}) (map[int64]*models.UserRating, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]*models.UserRating)
	for rows.Next() {
		r, err := scanUserRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		result[key(r)] = r
	}
	return result, rows.Err()
}

// ItemWatchlisted returns which of the given media items are on the
// watchlist at item granularity.
func (s *Snapshot) ItemWatchlisted(ctx context.Context, mediaItemIDs []int64, watchlistID int64) (map[int64]bool, error) {
	if len(mediaItemIDs) == 0 {
		return map[int64]bool{}, nil
	}
	placeholders, args := buildInClause(mediaItemIDs)
	query := `SELECT media_item_id FROM list_item
		WHERE list_id = ? AND media_item_id IN (` + placeholders + `)
		AND season_id IS NULL AND episode_id IS NULL`
	allArgs := append([]interface{}{watchlistID}, args...)
	return s.idSet(ctx, query, allArgs...)
}

// SeasonWatchlisted returns which of the given seasons are on the
// watchlist at season granularity.
func (s *Snapshot) SeasonWatchlisted(ctx context.Context, seasonIDs []int64, watchlistID int64) (map[int64]bool, error) {
	if len(seasonIDs) == 0 {
		return map[int64]bool{}, nil
	}
	placeholders, args := buildInClause(seasonIDs)
	query := `SELECT season_id FROM list_item
		WHERE list_id = ? AND season_id IN (` + placeholders + `)`
	allArgs := append([]interface{}{watchlistID}, args...)
	return s.idSet(ctx, query, allArgs...)
}

// EpisodeWatchlisted returns which of the given episodes are on the
// watchlist at episode granularity.
func (s *Snapshot) EpisodeWatchlisted(ctx context.Context, episodeIDs []int64, watchlistID int64) (map[int64]bool, error) {
	if len(episodeIDs) == 0 {
		return map[int64]bool{}, nil
	}
	placeholders, args := buildInClause(episodeIDs)
	query := `SELECT episode_id FROM list_item
		WHERE list_id = ? AND episode_id IN (` + placeholders + `)`
	allArgs := append([]interface{}{watchlistID}, args...)
	return s.idSet(ctx, query, allArgs...)
}

func (s *Snapshot) idSet(ctx context.Context, query string, args ...interface{}) (map[int64]bool, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query id set: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		result[id] = true
	}
	return result, rows.Err()
}

// ItemProgress returns the progress fraction per non-tv media item.
func (s *Snapshot) ItemProgress(ctx context.Context, mediaItemIDs []int64, userID int64) (map[int64]float64, error) {
	if len(mediaItemIDs) == 0 {
		return map[int64]float64{}, nil
	}
	placeholders, args := buildInClause(mediaItemIDs)
	query := `SELECT media_item_id, progress FROM progress
		WHERE user_id = ? AND episode_id IS NULL AND media_item_id IN (` + placeholders + `)`
	allArgs := append([]interface{}{userID}, args...)
	return s.floatsByID(ctx, query, allArgs...)
}

// EpisodeProgress returns the progress fraction per episode.
func (s *Snapshot) EpisodeProgress(ctx context.Context, episodeIDs []int64, userID int64) (map[int64]float64, error) {
	if len(episodeIDs) == 0 {
		return map[int64]float64{}, nil
	}
	placeholders, args := buildInClause(episodeIDs)
	query := `SELECT episode_id, progress FROM progress
		WHERE user_id = ? AND episode_id IN (` + placeholders + `)`
	allArgs := append([]interface{}{userID}, args...)
	return s.floatsByID(ctx, query, allArgs...)
}

func (s *Snapshot) floatsByID(ctx context.Context, query string, args ...interface{}) (map[int64]float64, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var v float64
		if err := rows.Scan(&id, &v); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		result[id] = v
	}
	return result, rows.Err()
}
