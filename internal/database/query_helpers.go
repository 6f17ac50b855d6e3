// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/showlog/showlog/internal/models"
)

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// buildInClause creates a parameterized IN clause for SQL queries.
// Returns the placeholder string and the arguments slice.
//
// Example:
//
//	placeholders, args := buildInClause([]int64{4, 8, 15})
//	// placeholders = "?,?,?"
//	// args = []interface{}{4, 8, 15}
func buildInClause(ids []int64) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ","), args
}

// mediaItemColumns is the canonical column list scanned by scanMediaItem.
const mediaItemColumns = `id, media_type, title, release_date, runtime, overview, poster,
	backdrop, network, status, genres, tmdb_id, imdb_id, tvdb_id, number_of_seasons, added_at`

func scanMediaItem(s rowScanner) (*models.MediaItem, error) {
	var (
		item      models.MediaItem
		mediaType string
		release   sql.NullTime
		runtime   sql.NullInt32
		overview  sql.NullString
		poster    sql.NullString
		backdrop  sql.NullString
		network   sql.NullString
		status    sql.NullString
		genres    sql.NullString
		tmdbID    sql.NullInt32
		imdbID    sql.NullString
		tvdbID    sql.NullInt32
		seasons   sql.NullInt32
	)

	err := s.Scan(&item.ID, &mediaType, &item.Title, &release, &runtime, &overview, &poster,
		&backdrop, &network, &status, &genres, &tmdbID, &imdbID, &tvdbID, &seasons, &item.AddedAt)
	if err != nil {
		return nil, err
	}

	item.MediaType = models.MediaType(mediaType)
	item.ReleaseDate = nullTimePtr(release)
	item.Runtime = nullIntPtr(runtime)
	item.Overview = nullStringPtr(overview)
	item.Poster = nullStringPtr(poster)
	item.Backdrop = nullStringPtr(backdrop)
	item.Network = nullStringPtr(network)
	item.Status = nullStringPtr(status)
	item.Genres = splitGenres(genres)
	item.TmdbID = nullIntPtr(tmdbID)
	item.ImdbID = nullStringPtr(imdbID)
	item.TvdbID = nullIntPtr(tvdbID)
	item.NumberOfSeasons = nullIntPtr(seasons)

	return &item, nil
}

// seasonColumns is the canonical column list scanned by scanSeason.
const seasonColumns = `id, tv_show_id, season_number, title, is_special, release_date,
	overview, poster, number_of_episodes`

func scanSeason(s rowScanner) (*models.Season, error) {
	var (
		season   models.Season
		release  sql.NullTime
		overview sql.NullString
		poster   sql.NullString
		episodes sql.NullInt32
	)

	err := s.Scan(&season.ID, &season.TvShowID, &season.SeasonNumber, &season.Title,
		&season.IsSpecialSeason, &release, &overview, &poster, &episodes)
	if err != nil {
		return nil, err
	}

	season.ReleaseDate = nullTimePtr(release)
	season.Overview = nullStringPtr(overview)
	season.Poster = nullStringPtr(poster)
	season.NumberOfEpisodes = nullIntPtr(episodes)

	return &season, nil
}

// episodeColumns is the canonical column list scanned by scanEpisode.
const episodeColumns = `id, tv_show_id, season_id, season_number, episode_number, title,
	is_special, release_date, runtime, season_and_episode_number`

func scanEpisode(s rowScanner) (*models.Episode, error) {
	var (
		ep      models.Episode
		release sql.NullTime
		runtime sql.NullInt32
	)

	err := s.Scan(&ep.ID, &ep.TvShowID, &ep.SeasonID, &ep.SeasonNumber, &ep.EpisodeNumber,
		&ep.Title, &ep.IsSpecialEpisode, &release, &runtime, &ep.SeasonAndEpisodeNumber)
	if err != nil {
		return nil, err
	}

	ep.ReleaseDate = nullTimePtr(release)
	ep.Runtime = nullIntPtr(runtime)

	return &ep, nil
}

// Genres are stored as a comma-separated TEXT column.

func joinGenres(genres []string) interface{} {
	if len(genres) == 0 {
		return nil
	}
	return strings.Join(genres, ",")
}

func splitGenres(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	return strings.Split(col.String, ",")
}

// Nullable scan conversions.

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullIntPtr(i sql.NullInt32) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int32)
	return &v
}

func nullInt64Ptr(i sql.NullInt64) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}

func nullFloatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
