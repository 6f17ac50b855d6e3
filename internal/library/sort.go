// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package library

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/showlog/showlog/internal/models"
)

// sortViews orders the views in place. Title ties break by title
// ascending regardless of direction, so equal-key rows keep a stable,
// deterministic order. Random ignores the direction.
func sortViews(views []*models.ItemView, key SortKey, order SortOrder) {
	if key == SortByRandom {
		rand.Shuffle(len(views), func(i, j int) {
			views[i], views[j] = views[j], views[i]
		})
		return
	}

	desc := order == OrderDesc
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		switch key {
		case SortByReleaseDate:
			if c := compareTimePtr(a.ReleaseDateForSort(), b.ReleaseDateForSort(), desc); c != 0 {
				return c < 0
			}
		case SortByListedAt:
			if c := compareTimePtr(a.ListedAt, b.ListedAt, desc); c != 0 {
				return c < 0
			}
		default:
			if c := compareTitle(a, b, desc); c != 0 {
				return c < 0
			}
			return false
		}
		return compareTitle(a, b, false) < 0
	})
}

// compareTimePtr orders two optional times in the given direction. Rows
// without a value sort after rows with one in both directions.
func compareTimePtr(a, b *time.Time, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Equal(*b):
		return 0
	case a.Before(*b):
		if desc {
			return 1
		}
		return -1
	default:
		if desc {
			return -1
		}
		return 1
	}
}

func compareTitle(a, b *models.ItemView, desc bool) int {
	ta := strings.ToLower(a.MediaItem.Title)
	tb := strings.ToLower(b.MediaItem.Title)
	c := strings.Compare(ta, tb)
	if desc {
		return -c
	}
	return c
}
