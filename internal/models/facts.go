// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package models

import (
	"time"
)

// Seen records one consumption event. For tv shows the event targets a
// single episode (EpisodeID set, MediaItemID carrying the show); for every
// other media type EpisodeID is nil and the event targets the item itself.
type Seen struct {
	ID          int64 `json:"id"`
	UserID      int64 `json:"userId"`
	MediaItemID int64 `json:"mediaItemId"`
	EpisodeID   *int64 `json:"episodeId,omitempty"`

	// Date is when the user watched; nil means unknown. Events with an
	// unknown date still count toward seen flags but never toward
	// last-seen timestamps.
	Date *time.Time `json:"date,omitempty"`

	// Duration watched, in milliseconds.
	Duration *int64 `json:"duration,omitempty"`
}

// Progress is an in-flight consumption marker. Value is a fraction in
// [0, 1]; a value of 1 is still only a marker, completion is recorded as a
// Seen event.
type Progress struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	MediaItemID int64  `json:"mediaItemId"`
	EpisodeID   *int64 `json:"episodeId,omitempty"`

	Value float64   `json:"value"`
	Date  time.Time `json:"date"`

	// Duration of the underlying media, in milliseconds, when known.
	Duration *int64 `json:"duration,omitempty"`
}

// UserRating is a user's rating or review for a media target at exact
// granularity: a show/movie (both narrowing ids nil), a season (SeasonID
// set), or an episode (EpisodeID set). Ratings never inherit up or down
// the hierarchy.
type UserRating struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	MediaItemID int64  `json:"mediaItemId"`
	SeasonID    *int64 `json:"seasonId,omitempty"`
	EpisodeID   *int64 `json:"episodeId,omitempty"`

	Rating *float64 `json:"rating,omitempty"`
	Review *string  `json:"review,omitempty"`
	Date   time.Time `json:"date"`
}

// Empty reports whether the row carries neither a rating nor a review.
// Empty ratings are ignored by the has-rating filters and view fields.
func (r *UserRating) Empty() bool {
	return r.Rating == nil && r.Review == nil
}
