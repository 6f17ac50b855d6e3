// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package models

import (
	"time"
)

// MediaType identifies the kind of a media item.
type MediaType string

// Supported media types. Episode aggregation applies to MediaTypeTv only;
// the other types behave like movies (a single releasable, seeable unit).
const (
	MediaTypeTv        MediaType = "tv"
	MediaTypeMovie     MediaType = "movie"
	MediaTypeBook      MediaType = "book"
	MediaTypeAudiobook MediaType = "audiobook"
	MediaTypeVideoGame MediaType = "video_game"
)

// Valid reports whether t is one of the supported media types.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeTv, MediaTypeMovie, MediaTypeBook, MediaTypeAudiobook, MediaTypeVideoGame:
		return true
	}
	return false
}

// MediaItem is a single entry in the media catalog: a movie, a tv show, a
// book, an audiobook, or a video game. Shows own seasons and episodes
// through their foreign keys.
type MediaItem struct {
	ID        int64     `json:"id"`
	MediaType MediaType `json:"mediaType"`
	Title     string    `json:"title"`

	// ReleaseDate is nil when the release date is unknown.
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`

	// Runtime in minutes. For tv shows this is the flat per-episode runtime
	// used as a fallback when an episode carries none of its own.
	Runtime *int `json:"runtime,omitempty"`

	Overview *string  `json:"overview,omitempty"`
	Poster   *string  `json:"poster,omitempty"`
	Backdrop *string  `json:"backdrop,omitempty"`
	Network  *string  `json:"network,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Genres   []string `json:"genres,omitempty"`

	// External identifiers
	TmdbID *int    `json:"tmdbId,omitempty"`
	ImdbID *string `json:"imdbId,omitempty"`
	TvdbID *int    `json:"tvdbId,omitempty"`

	NumberOfSeasons *int `json:"numberOfSeasons,omitempty"`

	AddedAt time.Time `json:"addedAt"`
}

// Released reports whether the item's release date is known and not after now.
func (m *MediaItem) Released(now time.Time) bool {
	return m.ReleaseDate != nil && !m.ReleaseDate.After(now)
}

// Season is one season of a tv show.
type Season struct {
	ID           int64  `json:"id"`
	TvShowID     int64  `json:"tvShowId"`
	SeasonNumber int    `json:"seasonNumber"`
	Title        string `json:"title"`

	// IsSpecialSeason marks specials (season 0 style). Episodes of a special
	// season are excluded from all episode aggregates.
	IsSpecialSeason bool `json:"isSpecialSeason"`

	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	Overview    *string    `json:"overview,omitempty"`
	Poster      *string    `json:"poster,omitempty"`

	NumberOfEpisodes *int `json:"numberOfEpisodes,omitempty"`
}

// Episode is one episode of a tv show season.
type Episode struct {
	ID            int64  `json:"id"`
	TvShowID      int64  `json:"tvShowId"`
	SeasonID      int64  `json:"seasonId"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`

	// IsSpecialEpisode excludes the episode from all aggregates and from
	// calendar projections.
	IsSpecialEpisode bool `json:"isSpecialEpisode"`

	ReleaseDate *time.Time `json:"releaseDate,omitempty"`

	// Runtime in minutes; nil falls back to the show's flat runtime.
	Runtime *int `json:"runtime,omitempty"`

	// SeasonAndEpisodeNumber is the ordering key: seasonNumber*1000 +
	// episodeNumber. Stored denormalized so ordered scans need no join.
	SeasonAndEpisodeNumber int `json:"seasonAndEpisodeNumber"`
}

// OrderingKey computes the canonical episode ordering key.
func OrderingKey(seasonNumber, episodeNumber int) int {
	return seasonNumber*1000 + episodeNumber
}

// Aired reports whether the episode has a known release date not after now.
// Special episodes never air for aggregation purposes.
func (e *Episode) Aired(now time.Time) bool {
	return !e.IsSpecialEpisode && e.ReleaseDate != nil && !e.ReleaseDate.After(now)
}
