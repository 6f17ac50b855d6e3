// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/showlog/showlog/internal/database"
	"github.com/showlog/showlog/internal/metrics"
	"github.com/showlog/showlog/internal/models"
)

// ItemDetails expands one media item into its full projection: the item
// view plus, for shows, a view per season carrying a view per episode.
// All granularities are assembled from the same snapshot.
func (e *Engine) ItemDetails(ctx context.Context, userID, mediaItemID int64, now time.Time) (details *models.ItemDetails, err error) {
	start := time.Now()
	defer func() { metrics.RecordEngineQuery("item_details", time.Since(start), err) }()

	snap, err := e.db.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	item, err := snap.MediaItemByID(ctx, mediaItemID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("details for item %d: %w", mediaItemID, err)
	}

	targets := []target{{mediaItemID: mediaItemID}}

	var seasons []*models.Season
	var episodes []*models.Episode
	if item.MediaType == models.MediaTypeTv {
		if seasons, err = snap.SeasonsForShow(ctx, mediaItemID); err != nil {
			return nil, fmt.Errorf("details for item %d: %w", mediaItemID, err)
		}
		if episodes, err = snap.EpisodesForShow(ctx, mediaItemID); err != nil {
			return nil, fmt.Errorf("details for item %d: %w", mediaItemID, err)
		}
		for _, s := range seasons {
			id := s.ID
			targets = append(targets, target{mediaItemID: mediaItemID, seasonID: &id})
		}
		for _, ep := range episodes {
			id := ep.ID
			targets = append(targets, target{mediaItemID: mediaItemID, episodeID: &id})
		}
	}

	views, err := assembleViews(ctx, snap, userID, now, targets)
	if err != nil {
		return nil, err
	}

	return stitchDetails(views, seasons), nil
}

// stitchDetails groups the flat assembled views back into the nested
// projection. Season order and episode order follow catalog ordering,
// which the view slice already carries.
func stitchDetails(views []*models.ItemView, seasons []*models.Season) *models.ItemDetails {
	details := &models.ItemDetails{}
	bySeason := make(map[int64]*models.SeasonDetails, len(seasons))

	for _, v := range views {
		switch {
		case v.Episode != nil:
			if sd := bySeason[v.Episode.SeasonID]; sd != nil {
				sd.Episodes = append(sd.Episodes, v)
			}
		case v.Season != nil:
			sd := &models.SeasonDetails{ItemView: *v}
			bySeason[v.Season.ID] = sd
		default:
			details.ItemView = *v
		}
	}

	for _, s := range seasons {
		if sd := bySeason[s.ID]; sd != nil {
			details.Seasons = append(details.Seasons, sd)
		}
	}
	return details
}
