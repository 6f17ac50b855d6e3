// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package database

import (
	"context"
	"testing"
	"time"

	"github.com/showlog/showlog/internal/models"
)

func TestCalendarEpisodesDetailed_GranularityPaths(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	listID, err := db.EnsureWatchlist(ctx, 1)
	if err != nil {
		t.Fatalf("EnsureWatchlist: %v", err)
	}

	from := testNow.AddDate(0, 0, 1)
	to := testNow.AddDate(0, 2, 0)

	// Season 1 membership only: the upcoming S2E2 is outside the season
	if _, err := db.AddListItem(ctx, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID, SeasonID: &fx.Season1ID}); err != nil {
		t.Fatalf("AddListItem season: %v", err)
	}
	episodes, err := snapshotEpisodesDetailed(t, db, []int64{listID}, from, to)
	if err != nil {
		t.Fatalf("CalendarEpisodesDetailed: %v", err)
	}
	if len(episodes) != 0 {
		t.Errorf("season 1 membership yielded %d upcoming episodes, want 0", len(episodes))
	}

	// Show membership pulls in the upcoming S2E2
	if _, err := db.AddListItem(ctx, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID}); err != nil {
		t.Fatalf("AddListItem show: %v", err)
	}
	episodes, err = snapshotEpisodesDetailed(t, db, []int64{listID}, from, to)
	if err != nil {
		t.Fatalf("CalendarEpisodesDetailed: %v", err)
	}
	if len(episodes) != 1 || episodes[0].ID != fx.S2E2 {
		t.Fatalf("episodes = %+v, want exactly S2E2 (%d)", episodes, fx.S2E2)
	}

	// An additional episode membership for the same episode must not duplicate
	if _, err := db.AddListItem(ctx, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID, EpisodeID: &fx.S2E2}); err != nil {
		t.Fatalf("AddListItem episode: %v", err)
	}
	episodes, err = snapshotEpisodesDetailed(t, db, []int64{listID}, from, to)
	if err != nil {
		t.Fatalf("CalendarEpisodesDetailed: %v", err)
	}
	seen := make(map[int64]int)
	for _, ep := range episodes {
		seen[ep.ID]++
	}
	if seen[fx.S2E2] != 1 {
		t.Errorf("S2E2 appeared %d times, want 1", seen[fx.S2E2])
	}
}

func snapshotEpisodesDetailed(t *testing.T, db *DB, listIDs []int64, from, to time.Time) ([]*models.Episode, error) {
	t.Helper()
	snap, err := db.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer snap.Close()
	return snap.CalendarEpisodesDetailed(context.Background(), listIDs, from, to)
}

func TestCalendarEpisodesDetailed_IncludesSpecials(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	// A special airing inside the window is enumerated like any other
	// episode, carrying its flag
	specialID, err := db.InsertEpisode(ctx, &models.Episode{
		TvShowID:         fx.ShowID,
		SeasonID:         fx.SpecialID,
		SeasonNumber:     0,
		EpisodeNumber:    2,
		Title:            "Episode",
		IsSpecialEpisode: true,
		ReleaseDate:      timePtr(testNow.AddDate(0, 0, 10)),
	})
	if err != nil {
		t.Fatalf("insert special episode: %v", err)
	}

	listID, err := db.EnsureWatchlist(ctx, 1)
	if err != nil {
		t.Fatalf("EnsureWatchlist: %v", err)
	}
	if _, err := db.AddListItem(ctx, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID}); err != nil {
		t.Fatalf("AddListItem: %v", err)
	}

	episodes, err := snapshotEpisodesDetailed(t, db, []int64{listID}, testNow, testNow.AddDate(0, 2, 0))
	if err != nil {
		t.Fatalf("CalendarEpisodesDetailed: %v", err)
	}
	var special *models.Episode
	for _, ep := range episodes {
		if ep.ID == specialID {
			special = ep
		}
	}
	if special == nil {
		t.Fatalf("special episode missing from detailed window, got %d episodes", len(episodes))
	}
	if !special.IsSpecialEpisode {
		t.Error("special flag not carried through")
	}
}

func TestCalendarEpisodesSimple_WholeShowRegardlessOfGranularity(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	listID, err := db.EnsureWatchlist(ctx, 1)
	if err != nil {
		t.Fatalf("EnsureWatchlist: %v", err)
	}
	// Only an episode-granularity membership, for an already-aired episode
	if _, err := db.AddListItem(ctx, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID, EpisodeID: &fx.S1E1}); err != nil {
		t.Fatalf("AddListItem: %v", err)
	}

	snap := snapshot(t, db)
	episodes, err := snap.CalendarEpisodesSimple(ctx, []int64{listID}, testNow.AddDate(0, 0, 1), testNow.AddDate(0, 2, 0))
	if err != nil {
		t.Fatalf("CalendarEpisodesSimple: %v", err)
	}
	// Simple mode pulls the whole show, so the upcoming S2E2 appears
	if len(episodes) != 1 || episodes[0].ID != fx.S2E2 {
		t.Errorf("episodes = %+v, want S2E2 (%d)", episodes, fx.S2E2)
	}
}

func TestCalendarItemReleases(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	future := testNow.AddDate(0, 1, 0)
	movieID := seedMovie(t, db, "Cold Launch", &future)
	outsideID := seedMovie(t, db, "Far Future", timePtr(testNow.AddDate(1, 0, 0)))

	listID, err := db.EnsureWatchlist(ctx, 1)
	if err != nil {
		t.Fatalf("EnsureWatchlist: %v", err)
	}
	for _, id := range []int64{movieID, outsideID} {
		if _, err := db.AddListItem(ctx, &models.ListItem{ListID: listID, MediaItemID: id}); err != nil {
			t.Fatalf("AddListItem: %v", err)
		}
	}

	snap := snapshot(t, db)
	items, err := snap.CalendarItemReleases(ctx, []int64{listID}, testNow, testNow.AddDate(0, 2, 0), false)
	if err != nil {
		t.Fatalf("CalendarItemReleases: %v", err)
	}
	if len(items) != 1 || items[0].ID != movieID {
		t.Errorf("items = %+v, want only movie %d", items, movieID)
	}
}
