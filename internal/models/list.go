// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package models

import (
	"time"
)

// ListPrivacy controls who may read a list.
type ListPrivacy string

const (
	ListPrivacyPrivate ListPrivacy = "private"
	ListPrivacyPublic  ListPrivacy = "public"
)

// List is a user-owned collection of media targets. Every user has exactly
// one watchlist, which is a list with IsWatchlist set; it cannot be deleted
// or renamed.
type List struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"userId"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	IsWatchlist bool        `json:"isWatchlist"`
	Privacy     ListPrivacy `json:"privacy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// VisibleTo reports whether userID may read the list.
func (l *List) VisibleTo(userID int64) bool {
	return l.UserID == userID || l.Privacy == ListPrivacyPublic
}

// Granularity identifies which level of the media hierarchy a list item or
// fact targets.
type Granularity string

const (
	GranularityItem    Granularity = "item"
	GranularitySeason  Granularity = "season"
	GranularityEpisode Granularity = "episode"
)

// ListItem is one member of a list. It always references a media item;
// SeasonID narrows the target to one season, EpisodeID to one episode.
// EpisodeID and SeasonID are mutually exclusive: an episode target leaves
// SeasonID nil because the episode already determines its season.
type ListItem struct {
	ID          int64     `json:"id"`
	ListID      int64     `json:"listId"`
	MediaItemID int64     `json:"mediaItemId"`
	SeasonID    *int64    `json:"seasonId,omitempty"`
	EpisodeID   *int64    `json:"episodeId,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

// Granularity returns the level the list item targets. Episode wins over
// season wins over item.
func (li *ListItem) Granularity() Granularity {
	switch {
	case li.EpisodeID != nil:
		return GranularityEpisode
	case li.SeasonID != nil:
		return GranularitySeason
	default:
		return GranularityItem
	}
}
