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

const listColumns = `id, user_id, name, description, is_watchlist, privacy, created_at, updated_at`

func scanList(s rowScanner) (*models.List, error) {
	var (
		list        models.List
		description sql.NullString
		privacy     string
	)
	err := s.Scan(&list.ID, &list.UserID, &list.Name, &description,
		&list.IsWatchlist, &privacy, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return nil, err
	}
	list.Description = nullStringPtr(description)
	list.Privacy = models.ListPrivacy(privacy)
	return &list, nil
}

const listItemColumns = `id, list_id, media_item_id, season_id, episode_id, added_at`

func scanListItem(s rowScanner) (*models.ListItem, error) {
	var (
		item      models.ListItem
		seasonID  sql.NullInt64
		episodeID sql.NullInt64
	)
	err := s.Scan(&item.ID, &item.ListID, &item.MediaItemID, &seasonID, &episodeID, &item.AddedAt)
	if err != nil {
		return nil, err
	}
	item.SeasonID = nullInt64Ptr(seasonID)
	item.EpisodeID = nullInt64Ptr(episodeID)
	return &item, nil
}

// GetList returns one list, or ErrNotFound.
func (s *Snapshot) GetList(ctx context.Context, listID int64) (*models.List, error) {
	query := `SELECT ` + listColumns + ` FROM list WHERE id = ?`
	list, err := scanList(s.tx.QueryRowContext(ctx, query, listID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query list %d: %w", listID, err)
	}
	return list, nil
}

// ListsForUser returns all lists owned by a user.
func (s *Snapshot) ListsForUser(ctx context.Context, userID int64) ([]*models.List, error) {
	query := `SELECT ` + listColumns + ` FROM list WHERE user_id = ? ORDER BY id`

	rows, err := s.tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists for user %d: %w", userID, err)
	}
	defer closeQuietly(rows)

	var lists []*models.List
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// WatchlistID returns the id of the user's watchlist, or ErrNotFound when
// the user has none yet.
func (s *Snapshot) WatchlistID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := s.tx.QueryRowContext(ctx,
		`SELECT id FROM list WHERE user_id = ? AND is_watchlist`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query watchlist for user %d: %w", userID, err)
	}
	return id, nil
}

// ListItems returns the members of one list in insertion order.
func (s *Snapshot) ListItems(ctx context.Context, listID int64) ([]*models.ListItem, error) {
	query := `SELECT ` + listItemColumns + ` FROM list_item WHERE list_id = ? ORDER BY id`
	return s.queryListItems(ctx, query, listID)
}

// LibraryListItems returns the members of every list the user owns. The
// engine reduces them to the earliest membership per target for the
// library scope's listedAt.
func (s *Snapshot) LibraryListItems(ctx context.Context, userID int64) ([]*models.ListItem, error) {
	query := `SELECT li.id, li.list_id, li.media_item_id, li.season_id, li.episode_id, li.added_at
		FROM list_item li
		JOIN list l ON l.id = li.list_id
		WHERE l.user_id = ?
		ORDER BY li.id`
	return s.queryListItems(ctx, query, userID)
}

func (s *Snapshot) queryListItems(ctx context.Context, query string, args ...interface{}) ([]*models.ListItem, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query list items: %w", err)
	}
	defer closeQuietly(rows)

	var items []*models.ListItem
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// FactMediaItemIDs returns the ids of media items the user has interacted
// with through seen events, progress markers, or ratings. Together with
// the user's list members these make up the library scope.
func (s *Snapshot) FactMediaItemIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT media_item_id FROM seen WHERE user_id = ?
		UNION
		SELECT media_item_id FROM progress WHERE user_id = ?
		UNION
		SELECT media_item_id FROM user_rating WHERE user_id = ?`

	rows, err := s.tx.QueryContext(ctx, query, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fact targets for user %d: %w", userID, err)
	}
	defer closeQuietly(rows)

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan fact target: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
