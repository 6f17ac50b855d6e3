// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/showlog/showlog/internal/models"
)

// InsertMediaItem adds a catalog entry and returns its id.
func (db *DB) InsertMediaItem(ctx context.Context, item *models.MediaItem) (int64, error) {
	addedAt := item.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	query := `INSERT INTO media_item (media_type, title, release_date, runtime, overview,
		poster, backdrop, network, status, genres, tmdb_id, imdb_id, tvdb_id,
		number_of_seasons, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	var id int64
	err := db.conn.QueryRowContext(ctx, query,
		string(item.MediaType), item.Title, item.ReleaseDate, item.Runtime, item.Overview,
		item.Poster, item.Backdrop, item.Network, item.Status, joinGenres(item.Genres),
		item.TmdbID, item.ImdbID, item.TvdbID, item.NumberOfSeasons, addedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert media item: %w", err)
	}
	return id, nil
}

// InsertSeason adds a season to a show and returns its id.
func (db *DB) InsertSeason(ctx context.Context, season *models.Season) (int64, error) {
	query := `INSERT INTO season (tv_show_id, season_number, title, is_special,
		release_date, overview, poster, number_of_episodes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	var id int64
	err := db.conn.QueryRowContext(ctx, query,
		season.TvShowID, season.SeasonNumber, season.Title, season.IsSpecialSeason,
		season.ReleaseDate, season.Overview, season.Poster, season.NumberOfEpisodes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert season: %w", err)
	}
	return id, nil
}

// InsertEpisode adds an episode and returns its id. The ordering key is
// always computed from the season and episode numbers.
func (db *DB) InsertEpisode(ctx context.Context, ep *models.Episode) (int64, error) {
	orderingKey := models.OrderingKey(ep.SeasonNumber, ep.EpisodeNumber)

	query := `INSERT INTO episode (tv_show_id, season_id, season_number, episode_number,
		title, is_special, release_date, runtime, season_and_episode_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	var id int64
	err := db.conn.QueryRowContext(ctx, query,
		ep.TvShowID, ep.SeasonID, ep.SeasonNumber, ep.EpisodeNumber,
		ep.Title, ep.IsSpecialEpisode, ep.ReleaseDate, ep.Runtime, orderingKey,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert episode: %w", err)
	}
	return id, nil
}
