// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package models

import (
	"time"
)

// ViewType tags an ItemView with its granularity. Item-granularity rows use
// the media type itself; season and episode rows use the dedicated tags.
type ViewType string

const (
	ViewTypeSeason  ViewType = "season"
	ViewTypeEpisode ViewType = "episode"
)

// ViewTypeFor returns the tag for a row targeting the given granularity.
func ViewTypeFor(mediaType MediaType, g Granularity) ViewType {
	switch g {
	case GranularityEpisode:
		return ViewTypeEpisode
	case GranularitySeason:
		return ViewTypeSeason
	default:
		return ViewType(mediaType)
	}
}

// ItemView is one row of a library listing: a movie/show, a season, or an
// episode, together with the per-user derived state for that exact target.
//
// Exactly one granularity applies. Season is set for season rows, Episode
// for episode rows; item rows set neither. The user-state and aggregate
// fields always describe the row's own granularity: for a season row,
// AiredEpisodesCount counts that season's episodes, Seen means the season
// is fully watched, and so on.
type ItemView struct {
	Type      ViewType  `json:"type"`
	MediaItem MediaItem `json:"mediaItem"`
	Season    *Season   `json:"season,omitempty"`
	Episode   *Episode  `json:"episode,omitempty"`

	// ListedAt is when the target entered the listing scope: the list
	// membership timestamp for a list scope, the earliest membership across
	// the user's lists for the library scope, nil when the item is in the
	// library only through seen/progress/rating facts.
	ListedAt *time.Time `json:"listedAt,omitempty"`

	// Seen is true for a movie/episode with at least one seen event, and
	// for a show/season whose every aired episode has been seen (false
	// when nothing has aired yet).
	Seen       bool       `json:"seen"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`

	OnWatchlist bool        `json:"onWatchlist"`
	UserRating  *UserRating `json:"userRating,omitempty"`

	// Progress is the latest progress fraction for the target, nil when no
	// progress marker exists.
	Progress *float64 `json:"progress,omitempty"`

	// Episode aggregates. Set for shows and seasons, nil otherwise.
	AiredEpisodesCount  *int `json:"airedEpisodesCount,omitempty"`
	SeenEpisodesCount   *int `json:"seenEpisodesCount,omitempty"`
	UnseenEpisodesCount *int `json:"unseenEpisodesCount,omitempty"`

	// TotalRuntime in minutes: the sum over aired episodes for shows and
	// seasons, the item's own runtime for movies.
	TotalRuntime *int `json:"totalRuntime,omitempty"`

	FirstUnwatchedEpisode *Episode `json:"firstUnwatchedEpisode,omitempty"`
	LastAiredEpisode      *Episode `json:"lastAiredEpisode,omitempty"`
	UpcomingEpisode       *Episode `json:"upcomingEpisode,omitempty"`
}

// NextAiring returns the release date of the upcoming episode, or the
// item's own release date for unreleased non-tv items. Nil when nothing
// is scheduled.
func (v *ItemView) NextAiring(now time.Time) *time.Time {
	if v.UpcomingEpisode != nil {
		return v.UpcomingEpisode.ReleaseDate
	}
	if v.MediaItem.MediaType != MediaTypeTv && v.MediaItem.ReleaseDate != nil &&
		v.MediaItem.ReleaseDate.After(now) {
		return v.MediaItem.ReleaseDate
	}
	return nil
}

// ReleaseDateForSort returns the release date governing sort order for the
// row's granularity.
func (v *ItemView) ReleaseDateForSort() *time.Time {
	switch {
	case v.Episode != nil:
		return v.Episode.ReleaseDate
	case v.Season != nil:
		return v.Season.ReleaseDate
	default:
		return v.MediaItem.ReleaseDate
	}
}

// ItemDetails is the fully expanded projection of one media item: the item
// view itself plus, for shows, every season with every episode.
type ItemDetails struct {
	ItemView
	Seasons []*SeasonDetails `json:"seasons,omitempty"`
}

// SeasonDetails is a season view carrying all of its episode views.
type SeasonDetails struct {
	ItemView
	Episodes []*ItemView `json:"episodes,omitempty"`
}

// Page is one page of an ordered listing. From is the offset of the first
// row within the total ordering and To the offset just past the last; To
// never exceeds Total.
type Page struct {
	From       int         `json:"from"`
	To         int         `json:"to"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	Total      int         `json:"total"`
	Data       []*ItemView `json:"data"`
}

// CalendarEntry is one release inside a calendar window: an episode of a
// tracked show, or a non-tv item's own release. The seen flags come from
// direct seen-event presence: MediaItemSeen from item-level events,
// EpisodeSeen from events on the entry's episode.
type CalendarEntry struct {
	MediaItem     MediaItem `json:"mediaItem"`
	MediaItemSeen bool      `json:"mediaItemSeen"`
	Episode       *Episode  `json:"episode,omitempty"`
	EpisodeSeen   bool      `json:"episodeSeen,omitempty"`
	ReleaseDate   time.Time `json:"releaseDate"`
}
