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
	"time"

	"github.com/showlog/showlog/internal/models"
)

// AddSeen records a consumption event and returns its id. Replaying the
// same event (same user, target, and timestamp) is a no-op returning the
// existing id; a different timestamp records a rewatch.
func (db *DB) AddSeen(ctx context.Context, seen *models.Seen) (int64, error) {
	var existing int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM seen
		WHERE user_id = ? AND media_item_id = ?
		AND episode_id IS NOT DISTINCT FROM ?
		AND seen_at IS NOT DISTINCT FROM ?`,
		seen.UserID, seen.MediaItemID, seen.EpisodeID, seen.Date).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up seen event: %w", err)
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO seen (user_id, media_item_id, episode_id, seen_at, duration)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		seen.UserID, seen.MediaItemID, seen.EpisodeID, seen.Date, seen.Duration).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add seen event: %w", err)
	}
	return id, nil
}

// DeleteSeen removes one consumption event.
func (db *DB) DeleteSeen(ctx context.Context, userID, seenID int64) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM seen WHERE id = ? AND user_id = ?`, seenID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete seen event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProgress upserts the progress marker for a target. One marker per
// (user, target); a new value replaces the old one.
func (db *DB) SetProgress(ctx context.Context, p *models.Progress) error {
	date := p.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM progress
		WHERE user_id = ? AND media_item_id = ? AND episode_id IS NOT DISTINCT FROM ?`,
		p.UserID, p.MediaItemID, p.EpisodeID)
	if err != nil {
		return fmt.Errorf("failed to clear previous progress: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO progress (user_id, media_item_id, episode_id, progress, updated_at, duration)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.UserID, p.MediaItemID, p.EpisodeID, p.Value, date, p.Duration)
	if err != nil {
		return fmt.Errorf("failed to set progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress: %w", err)
	}
	return nil
}

// DeleteProgress removes the progress marker for a target.
func (db *DB) DeleteProgress(ctx context.Context, userID, mediaItemID int64, episodeID *int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM progress
		WHERE user_id = ? AND media_item_id = ? AND episode_id IS NOT DISTINCT FROM ?`,
		userID, mediaItemID, episodeID)
	if err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}

// SetRating upserts the rating/review for a target at exact granularity.
// A row with neither rating nor review deletes the existing one.
func (db *DB) SetRating(ctx context.Context, r *models.UserRating) error {
	if r.SeasonID != nil && r.EpisodeID != nil {
		return fmt.Errorf("rating cannot set both seasonId and episodeId")
	}

	date := r.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM user_rating
		WHERE user_id = ? AND media_item_id = ?
		AND season_id IS NOT DISTINCT FROM ?
		AND episode_id IS NOT DISTINCT FROM ?`,
		r.UserID, r.MediaItemID, r.SeasonID, r.EpisodeID)
	if err != nil {
		return fmt.Errorf("failed to clear previous rating: %w", err)
	}

	if !r.Empty() {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_rating (user_id, media_item_id, season_id, episode_id, rating, review, rated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.UserID, r.MediaItemID, r.SeasonID, r.EpisodeID, r.Rating, r.Review, date)
		if err != nil {
			return fmt.Errorf("failed to set rating: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating: %w", err)
	}
	return nil
}
