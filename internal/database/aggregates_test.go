// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package database

import (
	"context"
	"testing"

	"github.com/showlog/showlog/internal/models"
)

func markSeen(t *testing.T, db *DB, userID int64, fx showFixture, episodeID int64, daysAgo int) {
	t.Helper()
	watched := testNow.AddDate(0, 0, -daysAgo)
	_, err := db.AddSeen(context.Background(), &models.Seen{
		UserID:      userID,
		MediaItemID: fx.ShowID,
		EpisodeID:   &episodeID,
		Date:        &watched,
	})
	if err != nil {
		t.Fatalf("AddSeen episode %d: %v", episodeID, err)
	}
}

func TestShowAiredCounts(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	snap := snapshot(t, db)

	counts, err := snap.ShowAiredCounts(context.Background(), []int64{fx.ShowID}, testNow)
	if err != nil {
		t.Fatalf("ShowAiredCounts: %v", err)
	}
	// S1E1-3 and S2E1 aired; S2E2 is future; the special never counts
	if counts[fx.ShowID] != 4 {
		t.Errorf("aired count = %d, want 4", counts[fx.ShowID])
	}
}

func TestShowSeenEpisodeCounts_DistinctAndNonSpecial(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)

	markSeen(t, db, 1, fx, fx.S1E1, 10)
	markSeen(t, db, 1, fx, fx.S1E1, 5) // rewatch, still one distinct episode
	markSeen(t, db, 1, fx, fx.S1E2, 4)
	markSeen(t, db, 1, fx, fx.SpecialE1, 3) // special, ignored
	markSeen(t, db, 2, fx, fx.S1E3, 2)      // other user, ignored

	snap := snapshot(t, db)
	counts, err := snap.ShowSeenEpisodeCounts(context.Background(), []int64{fx.ShowID}, 1)
	if err != nil {
		t.Fatalf("ShowSeenEpisodeCounts: %v", err)
	}
	if counts[fx.ShowID] != 2 {
		t.Errorf("seen count = %d, want 2", counts[fx.ShowID])
	}
}

func TestShowTotalRuntimes_FallbackToShowRuntime(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	snap := snapshot(t, db)

	runtimes, err := snap.ShowTotalRuntimes(context.Background(), []int64{fx.ShowID}, testNow)
	if err != nil {
		t.Fatalf("ShowTotalRuntimes: %v", err)
	}
	// S1E1 has no runtime and inherits the show's 30; S1E2, S1E3, S2E1 are 40 each
	if runtimes[fx.ShowID] != 30+40+40+40 {
		t.Errorf("total runtime = %d, want 150", runtimes[fx.ShowID])
	}
}

func TestShowFirstUnwatched(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	markSeen(t, db, 1, fx, fx.S1E1, 10)

	snap := snapshot(t, db)
	first, err := snap.ShowFirstUnwatched(ctx, []int64{fx.ShowID}, 1, testNow)
	if err != nil {
		t.Fatalf("ShowFirstUnwatched: %v", err)
	}
	ep := first[fx.ShowID]
	if ep == nil || ep.ID != fx.S1E2 {
		t.Fatalf("first unwatched = %+v, want S1E2 (%d)", ep, fx.S1E2)
	}

	// A different user with nothing seen starts at S1E1
	first, err = snap.ShowFirstUnwatched(ctx, []int64{fx.ShowID}, 7, testNow)
	if err != nil {
		t.Fatalf("ShowFirstUnwatched fresh user: %v", err)
	}
	if ep := first[fx.ShowID]; ep == nil || ep.ID != fx.S1E1 {
		t.Errorf("fresh user first unwatched = %+v, want S1E1 (%d)", ep, fx.S1E1)
	}
}

func TestShowLastAiredAndUpcoming(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()
	snap := snapshot(t, db)

	last, err := snap.ShowLastAired(ctx, []int64{fx.ShowID}, testNow)
	if err != nil {
		t.Fatalf("ShowLastAired: %v", err)
	}
	if ep := last[fx.ShowID]; ep == nil || ep.ID != fx.S2E1 {
		t.Errorf("last aired = %+v, want S2E1 (%d)", last[fx.ShowID], fx.S2E1)
	}

	upcoming, err := snap.ShowUpcoming(ctx, []int64{fx.ShowID}, testNow)
	if err != nil {
		t.Fatalf("ShowUpcoming: %v", err)
	}
	if ep := upcoming[fx.ShowID]; ep == nil || ep.ID != fx.S2E2 {
		t.Errorf("upcoming = %+v, want S2E2 (%d)", upcoming[fx.ShowID], fx.S2E2)
	}
}

func TestSeasonAggregates_ScopedToSeason(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	// Seen events span both seasons; the season counts must not mix
	markSeen(t, db, 1, fx, fx.S1E1, 10)
	markSeen(t, db, 1, fx, fx.S1E2, 9)
	markSeen(t, db, 1, fx, fx.S2E1, 8)

	snap := snapshot(t, db)
	seasonIDs := []int64{fx.Season1ID, fx.Season2ID}

	aired, err := snap.SeasonAiredCounts(ctx, seasonIDs, testNow)
	if err != nil {
		t.Fatalf("SeasonAiredCounts: %v", err)
	}
	if aired[fx.Season1ID] != 3 || aired[fx.Season2ID] != 1 {
		t.Errorf("aired counts = %v, want {s1:3, s2:1}", aired)
	}

	seen, err := snap.SeasonSeenEpisodeCounts(ctx, seasonIDs, 1)
	if err != nil {
		t.Fatalf("SeasonSeenEpisodeCounts: %v", err)
	}
	if seen[fx.Season1ID] != 2 || seen[fx.Season2ID] != 1 {
		t.Errorf("seen counts = %v, want {s1:2, s2:1}", seen)
	}

	first, err := snap.SeasonFirstUnwatched(ctx, seasonIDs, 1, testNow)
	if err != nil {
		t.Fatalf("SeasonFirstUnwatched: %v", err)
	}
	if ep := first[fx.Season1ID]; ep == nil || ep.ID != fx.S1E3 {
		t.Errorf("season 1 first unwatched = %+v, want S1E3", first[fx.Season1ID])
	}
	if _, ok := first[fx.Season2ID]; ok {
		t.Error("season 2 fully watched, expected no first unwatched")
	}

	last, err := snap.SeasonLastAired(ctx, seasonIDs, testNow)
	if err != nil {
		t.Fatalf("SeasonLastAired: %v", err)
	}
	if ep := last[fx.Season1ID]; ep == nil || ep.ID != fx.S1E3 {
		t.Errorf("season 1 last aired = %+v, want S1E3", last[fx.Season1ID])
	}

	upcoming, err := snap.SeasonUpcoming(ctx, seasonIDs, testNow)
	if err != nil {
		t.Fatalf("SeasonUpcoming: %v", err)
	}
	if ep := upcoming[fx.Season2ID]; ep == nil || ep.ID != fx.S2E2 {
		t.Errorf("season 2 upcoming = %+v, want S2E2", upcoming[fx.Season2ID])
	}
}

func TestSeasonLastSeenAt_OwnEpisodesOnly(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	markSeen(t, db, 1, fx, fx.S1E1, 10)
	markSeen(t, db, 1, fx, fx.S2E1, 2)

	snap := snapshot(t, db)
	lastSeen, err := snap.SeasonLastSeenAt(ctx, []int64{fx.Season1ID, fx.Season2ID}, 1)
	if err != nil {
		t.Fatalf("SeasonLastSeenAt: %v", err)
	}

	want1 := testNow.AddDate(0, 0, -10)
	if got := lastSeen[fx.Season1ID]; !got.Equal(want1) {
		t.Errorf("season 1 last seen = %v, want %v", got, want1)
	}
	want2 := testNow.AddDate(0, 0, -2)
	if got := lastSeen[fx.Season2ID]; !got.Equal(want2) {
		t.Errorf("season 2 last seen = %v, want %v", got, want2)
	}
}

func TestItemLastSeenAt_IncludesEpisodeEvents(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	markSeen(t, db, 1, fx, fx.S1E1, 10)
	markSeen(t, db, 1, fx, fx.S1E2, 4)

	// An undated event must not affect last-seen
	_, err := db.AddSeen(ctx, &models.Seen{UserID: 1, MediaItemID: fx.ShowID, EpisodeID: &fx.S1E3})
	if err != nil {
		t.Fatalf("AddSeen undated: %v", err)
	}

	snap := snapshot(t, db)
	lastSeen, err := snap.ItemLastSeenAt(ctx, []int64{fx.ShowID}, 1)
	if err != nil {
		t.Fatalf("ItemLastSeenAt: %v", err)
	}
	want := testNow.AddDate(0, 0, -4)
	if got := lastSeen[fx.ShowID]; !got.Equal(want) {
		t.Errorf("show last seen = %v, want %v", got, want)
	}
}

func TestEpisodeSeenStats(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	markSeen(t, db, 1, fx, fx.S1E1, 10)
	markSeen(t, db, 1, fx, fx.S1E1, 3) // rewatch

	snap := snapshot(t, db)
	stats, err := snap.EpisodeSeenStats(ctx, []int64{fx.S1E1, fx.S1E2}, 1)
	if err != nil {
		t.Fatalf("EpisodeSeenStats: %v", err)
	}

	stat := stats[fx.S1E1]
	if stat.Count != 2 {
		t.Errorf("S1E1 seen count = %d, want 2", stat.Count)
	}
	want := testNow.AddDate(0, 0, -3)
	if stat.LastSeenAt == nil || !stat.LastSeenAt.Equal(want) {
		t.Errorf("S1E1 last seen = %v, want %v", stat.LastSeenAt, want)
	}
	if _, ok := stats[fx.S1E2]; ok {
		t.Error("S1E2 has no events, expected no stat")
	}
}

func TestRatings_ExactGranularity(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	set := func(r *models.UserRating) {
		t.Helper()
		if err := db.SetRating(ctx, r); err != nil {
			t.Fatalf("SetRating: %v", err)
		}
	}
	set(&models.UserRating{UserID: 1, MediaItemID: fx.ShowID, Rating: floatPtr(8), Date: testNow})
	set(&models.UserRating{UserID: 1, MediaItemID: fx.ShowID, SeasonID: &fx.Season1ID, Rating: floatPtr(7), Date: testNow})
	set(&models.UserRating{UserID: 1, MediaItemID: fx.ShowID, EpisodeID: &fx.S1E1, Review: strPtr("great opener"), Date: testNow})

	snap := snapshot(t, db)

	itemRatings, err := snap.ItemRatings(ctx, []int64{fx.ShowID}, 1)
	if err != nil {
		t.Fatalf("ItemRatings: %v", err)
	}
	if r := itemRatings[fx.ShowID]; r == nil || *r.Rating != 8 {
		t.Errorf("show rating = %+v, want 8", itemRatings[fx.ShowID])
	}

	seasonRatings, err := snap.SeasonRatings(ctx, []int64{fx.Season1ID, fx.Season2ID}, 1)
	if err != nil {
		t.Fatalf("SeasonRatings: %v", err)
	}
	if r := seasonRatings[fx.Season1ID]; r == nil || *r.Rating != 7 {
		t.Errorf("season 1 rating = %+v, want 7", seasonRatings[fx.Season1ID])
	}
	if _, ok := seasonRatings[fx.Season2ID]; ok {
		t.Error("season 2 must not inherit the show rating")
	}

	episodeRatings, err := snap.EpisodeRatings(ctx, []int64{fx.S1E1, fx.S1E2}, 1)
	if err != nil {
		t.Fatalf("EpisodeRatings: %v", err)
	}
	if r := episodeRatings[fx.S1E1]; r == nil || r.Review == nil || *r.Review != "great opener" {
		t.Errorf("episode rating = %+v, want review-only row", episodeRatings[fx.S1E1])
	}
	if _, ok := episodeRatings[fx.S1E2]; ok {
		t.Error("unrated episode must have no rating")
	}
}

func TestWatchlistMembership_ExactGranularity(t *testing.T) {
	db := setupTestDB(t)
	fx := seedShow(t, db)
	ctx := context.Background()

	wl, err := db.EnsureWatchlist(ctx, 1)
	if err != nil {
		t.Fatalf("EnsureWatchlist: %v", err)
	}
	if _, err := db.AddListItem(ctx, &models.ListItem{ListID: wl, MediaItemID: fx.ShowID, SeasonID: &fx.Season1ID}); err != nil {
		t.Fatalf("AddListItem: %v", err)
	}

	snap := snapshot(t, db)

	items, err := snap.ItemWatchlisted(ctx, []int64{fx.ShowID}, wl)
	if err != nil {
		t.Fatalf("ItemWatchlisted: %v", err)
	}
	if items[fx.ShowID] {
		t.Error("season membership must not mark the show watchlisted")
	}

	seasons, err := snap.SeasonWatchlisted(ctx, []int64{fx.Season1ID, fx.Season2ID}, wl)
	if err != nil {
		t.Fatalf("SeasonWatchlisted: %v", err)
	}
	if !seasons[fx.Season1ID] {
		t.Error("season 1 should be watchlisted")
	}
	if seasons[fx.Season2ID] {
		t.Error("season 2 should not be watchlisted")
	}

	episodes, err := snap.EpisodeWatchlisted(ctx, []int64{fx.S1E1}, wl)
	if err != nil {
		t.Fatalf("EpisodeWatchlisted: %v", err)
	}
	if episodes[fx.S1E1] {
		t.Error("season membership must not mark its episodes watchlisted")
	}
}

func TestFactMediaItemIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	fx := seedShow(t, db)
	movieID := seedMovie(t, db, "Driftwood", timePtr(testNow.AddDate(0, -3, 0)))
	otherID := seedMovie(t, db, "Untouched", timePtr(testNow.AddDate(0, -3, 0)))

	markSeen(t, db, 1, fx, fx.S1E1, 5)
	if err := db.SetRating(ctx, &models.UserRating{UserID: 1, MediaItemID: movieID, Rating: floatPtr(5), Date: testNow}); err != nil {
		t.Fatalf("SetRating: %v", err)
	}

	snap := snapshot(t, db)
	ids, err := snap.FactMediaItemIDs(ctx, 1)
	if err != nil {
		t.Fatalf("FactMediaItemIDs: %v", err)
	}

	got := make(map[int64]bool, len(ids))
	for _, id := range ids {
		got[id] = true
	}
	if !got[fx.ShowID] || !got[movieID] {
		t.Errorf("fact targets = %v, want show %d and movie %d", ids, fx.ShowID, movieID)
	}
	if got[otherID] {
		t.Errorf("movie %d has no facts, must not appear", otherID)
	}
}
