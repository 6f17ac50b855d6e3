// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/showlog/showlog/internal/models"
)

// Snapshot is a read transaction. All queries issued through one Snapshot
// observe the same database state, so a listing's total count and page
// data can never disagree. Callers must Close it when done.
type Snapshot struct {
	tx *sql.Tx
}

// Snapshot opens a read transaction.
func (db *DB) Snapshot(ctx context.Context) (*Snapshot, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	return &Snapshot{tx: tx}, nil
}

// Close releases the snapshot. The transaction is rolled back; snapshots
// never write.
func (s *Snapshot) Close() {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		// Not actionable for the caller, the transaction is gone either way
		_ = err
	}
}

// MediaItemByID returns one catalog entry, or ErrNotFound.
func (s *Snapshot) MediaItemByID(ctx context.Context, id int64) (*models.MediaItem, error) {
	query := `SELECT ` + mediaItemColumns + ` FROM media_item WHERE id = ?`
	item, err := scanMediaItem(s.tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query media item %d: %w", id, err)
	}
	return item, nil
}

// MediaItemsByIDs returns catalog entries keyed by id. Missing ids are
// simply absent from the result.
func (s *Snapshot) MediaItemsByIDs(ctx context.Context, ids []int64) (map[int64]*models.MediaItem, error) {
	result := make(map[int64]*models.MediaItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders, args := buildInClause(ids)
	query := `SELECT ` + mediaItemColumns + ` FROM media_item WHERE id IN (` + placeholders + `)`

	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media items: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media item: %w", err)
		}
		result[item.ID] = item
	}
	return result, rows.Err()
}

// SeasonsByIDs returns seasons keyed by id.
func (s *Snapshot) SeasonsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Season, error) {
	result := make(map[int64]*models.Season, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders, args := buildInClause(ids)
	query := `SELECT ` + seasonColumns + ` FROM season WHERE id IN (` + placeholders + `)`

	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		result[season.ID] = season
	}
	return result, rows.Err()
}

// EpisodesByIDs returns episodes keyed by id.
func (s *Snapshot) EpisodesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Episode, error) {
	result := make(map[int64]*models.Episode, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders, args := buildInClause(ids)
	query := `SELECT ` + episodeColumns + ` FROM episode WHERE id IN (` + placeholders + `)`

	episodes, err := s.queryEpisodes(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, ep := range episodes {
		result[ep.ID] = ep
	}
	return result, nil
}

// SeasonsForShow returns all seasons of a show ordered by season number.
func (s *Snapshot) SeasonsForShow(ctx context.Context, showID int64) ([]*models.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM season WHERE tv_show_id = ? ORDER BY season_number`

	rows, err := s.tx.QueryContext(ctx, query, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons for show %d: %w", showID, err)
	}
	defer closeQuietly(rows)

	var seasons []*models.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}
	return seasons, rows.Err()
}

// EpisodesForShow returns all episodes of a show in ordering-key order.
func (s *Snapshot) EpisodesForShow(ctx context.Context, showID int64) ([]*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episode
		WHERE tv_show_id = ? ORDER BY season_and_episode_number`
	return s.queryEpisodes(ctx, query, showID)
}

// queryEpisodes runs an episode query and scans the full column list.
func (s *Snapshot) queryEpisodes(ctx context.Context, query string, args ...interface{}) ([]*models.Episode, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer closeQuietly(rows)

	var episodes []*models.Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}
