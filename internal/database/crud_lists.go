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

// CreateList adds a regular (non-watchlist) list for a user.
func (db *DB) CreateList(ctx context.Context, userID int64, name string, description *string, privacy models.ListPrivacy) (int64, error) {
	if privacy == "" {
		privacy = models.ListPrivacyPrivate
	}

	query := `INSERT INTO list (user_id, name, description, is_watchlist, privacy)
		VALUES (?, ?, ?, FALSE, ?)
		RETURNING id`

	var id int64
	err := db.conn.QueryRowContext(ctx, query, userID, name, description, string(privacy)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create list: %w", err)
	}
	return id, nil
}

// EnsureWatchlist returns the id of the user's watchlist, creating it on
// first use. Every user has exactly one.
func (db *DB) EnsureWatchlist(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM list WHERE user_id = ? AND is_watchlist`, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up watchlist: %w", err)
	}

	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO list (user_id, name, is_watchlist, privacy)
		VALUES (?, 'Watchlist', TRUE, 'private')
		RETURNING id`, userID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create watchlist: %w", err)
	}
	return id, nil
}

// AddListItem adds a target to a list and returns the membership id.
// Adding an already-present target is a no-op returning the existing id.
// An episode target must leave SeasonID nil; the episode already
// determines its season.
func (db *DB) AddListItem(ctx context.Context, item *models.ListItem) (int64, error) {
	if item.SeasonID != nil && item.EpisodeID != nil {
		return 0, fmt.Errorf("list item cannot set both seasonId and episodeId")
	}

	var existing int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM list_item
		WHERE list_id = ? AND media_item_id = ?
		AND season_id IS NOT DISTINCT FROM ?
		AND episode_id IS NOT DISTINCT FROM ?`,
		item.ListID, item.MediaItemID, item.SeasonID, item.EpisodeID).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up list item: %w", err)
	}

	addedAt := item.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO list_item (list_id, media_item_id, season_id, episode_id, added_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		item.ListID, item.MediaItemID, item.SeasonID, item.EpisodeID, addedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to add list item: %w", err)
	}
	return id, nil
}

// RemoveListItem removes a target from a list. Removing an absent target
// is a no-op.
func (db *DB) RemoveListItem(ctx context.Context, listID, mediaItemID int64, seasonID, episodeID *int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM list_item
		WHERE list_id = ? AND media_item_id = ?
		AND season_id IS NOT DISTINCT FROM ?
		AND episode_id IS NOT DISTINCT FROM ?`,
		listID, mediaItemID, seasonID, episodeID)
	if err != nil {
		return fmt.Errorf("failed to remove list item: %w", err)
	}
	return nil
}
