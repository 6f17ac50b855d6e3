// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

package library

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/showlog/showlog/internal/config"
	"github.com/showlog/showlog/internal/database"
	"github.com/showlog/showlog/internal/models"
)

// testNow is the fixed reference time all fixtures are built around.
var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func setupEngine(t *testing.T) (*database.DB, *Engine) {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}
	db, err := database.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db, New(db)
}

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(i int) *int              { return &i }
func floatPtr(f float64) *float64    { return &f }

// showFixture is the standard seeded show:
//
//	Season 1 (aired): E1, E2, E3 released, E2/E3 runtime 40, E1 inherits 30
//	Season 2: E1 released, E2 releasing in the future
//	Specials: one released special episode, excluded everywhere
type showFixture struct {
	ShowID    int64
	Season1ID int64
	Season2ID int64
	SpecialID int64

	S1E1, S1E2, S1E3 int64
	S2E1, S2E2       int64
	SpecialE1        int64
}

func seedShow(t *testing.T, db *database.DB) showFixture {
	t.Helper()
	ctx := context.Background()

	showID, err := db.InsertMediaItem(ctx, &models.MediaItem{
		MediaType:   models.MediaTypeTv,
		Title:       "Orbital Decay",
		ReleaseDate: timePtr(testNow.AddDate(-2, 0, 0)),
		Runtime:     intPtr(30),
	})
	if err != nil {
		t.Fatalf("insert show: %v", err)
	}

	var fx showFixture
	fx.ShowID = showID

	season := func(number int, title string, special bool) int64 {
		id, err := db.InsertSeason(ctx, &models.Season{
			TvShowID:        showID,
			SeasonNumber:    number,
			Title:           title,
			IsSpecialSeason: special,
		})
		if err != nil {
			t.Fatalf("insert season %d: %v", number, err)
		}
		return id
	}
	fx.Season1ID = season(1, "Season 1", false)
	fx.Season2ID = season(2, "Season 2", false)
	fx.SpecialID = season(0, "Specials", true)

	episode := func(seasonID int64, seasonNum, epNum int, release *time.Time, runtime *int, special bool) int64 {
		id, err := db.InsertEpisode(ctx, &models.Episode{
			TvShowID:         showID,
			SeasonID:         seasonID,
			SeasonNumber:     seasonNum,
			EpisodeNumber:    epNum,
			Title:            "Episode",
			IsSpecialEpisode: special,
			ReleaseDate:      release,
			Runtime:          runtime,
		})
		if err != nil {
			t.Fatalf("insert episode S%dE%d: %v", seasonNum, epNum, err)
		}
		return id
	}

	fx.S1E1 = episode(fx.Season1ID, 1, 1, timePtr(testNow.AddDate(-1, 0, 0)), nil, false)
	fx.S1E2 = episode(fx.Season1ID, 1, 2, timePtr(testNow.AddDate(-1, 0, 7)), intPtr(40), false)
	fx.S1E3 = episode(fx.Season1ID, 1, 3, timePtr(testNow.AddDate(-1, 0, 14)), intPtr(40), false)
	fx.S2E1 = episode(fx.Season2ID, 2, 1, timePtr(testNow.AddDate(0, -1, 0)), intPtr(40), false)
	fx.S2E2 = episode(fx.Season2ID, 2, 2, timePtr(testNow.AddDate(0, 1, 0)), intPtr(40), false)
	fx.SpecialE1 = episode(fx.SpecialID, 0, 1, timePtr(testNow.AddDate(-1, 6, 0)), intPtr(40), true)

	return fx
}

func seedMovie(t *testing.T, db *database.DB, title string, release *time.Time) int64 {
	t.Helper()
	id, err := db.InsertMediaItem(context.Background(), &models.MediaItem{
		MediaType:   models.MediaTypeMovie,
		Title:       title,
		ReleaseDate: release,
		Runtime:     intPtr(120),
	})
	if err != nil {
		t.Fatalf("insert movie %q: %v", title, err)
	}
	return id
}

func createList(t *testing.T, db *database.DB, userID int64, name string, privacy models.ListPrivacy) int64 {
	t.Helper()
	id, err := db.CreateList(context.Background(), userID, name, nil, privacy)
	if err != nil {
		t.Fatalf("CreateList %q: %v", name, err)
	}
	return id
}

func watchlist(t *testing.T, db *database.DB, userID int64) int64 {
	t.Helper()
	id, err := db.EnsureWatchlist(context.Background(), userID)
	if err != nil {
		t.Fatalf("EnsureWatchlist: %v", err)
	}
	return id
}

func addMember(t *testing.T, db *database.DB, item *models.ListItem) {
	t.Helper()
	if _, err := db.AddListItem(context.Background(), item); err != nil {
		t.Fatalf("AddListItem: %v", err)
	}
}

func markSeen(t *testing.T, db *database.DB, userID, showID int64, episodeID *int64, daysAgo int) {
	t.Helper()
	at := testNow.AddDate(0, 0, -daysAgo)
	_, err := db.AddSeen(context.Background(), &models.Seen{
		UserID:      userID,
		MediaItemID: showID,
		EpisodeID:   episodeID,
		Date:        &at,
	})
	if err != nil {
		t.Fatalf("AddSeen: %v", err)
	}
}

func listRequest(userID int64) *ListItemsRequest {
	return &ListItemsRequest{UserID: userID, Now: testNow}
}

func TestListItems_LibraryScope(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()
	fx := seedShow(t, db)

	wl := watchlist(t, db, 1)
	addMember(t, db, &models.ListItem{ListID: wl, MediaItemID: fx.ShowID})

	// A movie the user only has a seen event for still belongs to the
	// library, without a listedAt
	movieID := seedMovie(t, db, "Signal Lost", timePtr(testNow.AddDate(0, -2, 0)))
	markSeen(t, db, 1, movieID, nil, 5)

	views, err := eng.ListItems(ctx, listRequest(1))
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}

	byID := make(map[int64]*models.ItemView)
	for _, v := range views {
		byID[v.MediaItem.ID] = v
	}
	show, movie := byID[fx.ShowID], byID[movieID]
	if show == nil || movie == nil {
		t.Fatalf("missing views: %+v", byID)
	}
	if show.ListedAt == nil {
		t.Error("listed show must carry listedAt")
	}
	if movie.ListedAt != nil {
		t.Error("fact-only movie must not carry listedAt")
	}
	if !movie.Seen {
		t.Error("movie with a seen event must be seen")
	}
}

func TestListItems_ShowAggregates(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()
	fx := seedShow(t, db)

	wl := watchlist(t, db, 1)
	addMember(t, db, &models.ListItem{ListID: wl, MediaItemID: fx.ShowID})
	markSeen(t, db, 1, fx.ShowID, &fx.S1E1, 10)
	markSeen(t, db, 1, fx.ShowID, &fx.S1E2, 9)

	views, err := eng.ListItems(ctx, listRequest(1))
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	v := views[0]

	if v.Type != models.ViewType(models.MediaTypeTv) {
		t.Errorf("type = %q", v.Type)
	}
	if v.AiredEpisodesCount == nil || *v.AiredEpisodesCount != 4 {
		t.Errorf("aired = %v, want 4", v.AiredEpisodesCount)
	}
	if v.SeenEpisodesCount == nil || *v.SeenEpisodesCount != 2 {
		t.Errorf("seen = %v, want 2", v.SeenEpisodesCount)
	}
	if v.UnseenEpisodesCount == nil || *v.UnseenEpisodesCount != 2 {
		t.Errorf("unseen = %v, want 2", v.UnseenEpisodesCount)
	}
	if v.TotalRuntime == nil || *v.TotalRuntime != 150 {
		t.Errorf("total runtime = %v, want 150", v.TotalRuntime)
	}
	if v.Seen {
		t.Error("partially watched show must not be seen")
	}
	if v.FirstUnwatchedEpisode == nil || v.FirstUnwatchedEpisode.ID != fx.S1E3 {
		t.Errorf("first unwatched = %+v, want S1E3", v.FirstUnwatchedEpisode)
	}
	if v.LastAiredEpisode == nil || v.LastAiredEpisode.ID != fx.S2E1 {
		t.Errorf("last aired = %+v, want S2E1", v.LastAiredEpisode)
	}
	if v.UpcomingEpisode == nil || v.UpcomingEpisode.ID != fx.S2E2 {
		t.Errorf("upcoming = %+v, want S2E2", v.UpcomingEpisode)
	}
	if v.LastSeenAt == nil {
		t.Error("show with seen episodes must carry lastSeenAt")
	}
}

func TestListItems_ListScopeGranularity(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()
	fx := seedShow(t, db)

	listID := createList(t, db, 1, "Tracking", models.ListPrivacyPrivate)
	addMember(t, db, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID, SeasonID: &fx.Season1ID})
	addMember(t, db, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID, EpisodeID: &fx.S2E1})

	req := listRequest(1)
	req.ListID = &listID
	views, err := eng.ListItems(ctx, req)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}

	var seasonView, episodeView *models.ItemView
	for _, v := range views {
		switch v.Type {
		case models.ViewTypeSeason:
			seasonView = v
		case models.ViewTypeEpisode:
			episodeView = v
		}
	}
	if seasonView == nil || episodeView == nil {
		t.Fatalf("expected one season and one episode view")
	}

	// Season aggregates stay strictly inside the season
	if seasonView.AiredEpisodesCount == nil || *seasonView.AiredEpisodesCount != 3 {
		t.Errorf("season aired = %v, want 3", seasonView.AiredEpisodesCount)
	}
	if seasonView.Season == nil || seasonView.Season.ID != fx.Season1ID {
		t.Errorf("season = %+v", seasonView.Season)
	}
	if episodeView.Episode == nil || episodeView.Episode.ID != fx.S2E1 {
		t.Errorf("episode = %+v", episodeView.Episode)
	}
	if episodeView.AiredEpisodesCount != nil {
		t.Error("episode view must not carry episode count aggregates")
	}
}

func TestListItems_PrivateListAccess(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()

	listID := createList(t, db, 1, "Mine", models.ListPrivacyPrivate)

	req := listRequest(2)
	req.ListID = &listID
	if _, err := eng.ListItems(ctx, req); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for foreign private list, got %v", err)
	}

	missing := int64(9999)
	req = listRequest(1)
	req.ListID = &missing
	if _, err := eng.ListItems(ctx, req); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing list, got %v", err)
	}

	// A public list of another user is readable
	publicID := createList(t, db, 1, "Shared", models.ListPrivacyPublic)
	req = listRequest(2)
	req.ListID = &publicID
	if _, err := eng.ListItems(ctx, req); err != nil {
		t.Errorf("public list must be readable by others: %v", err)
	}
}

func TestListItems_Filters(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()
	fx := seedShow(t, db)

	wl := watchlist(t, db, 1)
	addMember(t, db, &models.ListItem{ListID: wl, MediaItemID: fx.ShowID})

	seenMovie := seedMovie(t, db, "Afterglow", timePtr(testNow.AddDate(0, -3, 0)))
	addMember(t, db, &models.ListItem{ListID: wl, MediaItemID: seenMovie})
	markSeen(t, db, 1, seenMovie, nil, 7)

	otherList := createList(t, db, 1, "Backlog", models.ListPrivacyPrivate)
	ratedMovie := seedMovie(t, db, "Glasshouse", timePtr(testNow.AddDate(0, -1, 0)))
	addMember(t, db, &models.ListItem{ListID: otherList, MediaItemID: ratedMovie})
	if err := db.SetRating(ctx, &models.UserRating{UserID: 1, MediaItemID: ratedMovie, Rating: floatPtr(8), Date: testNow}); err != nil {
		t.Fatalf("SetRating: %v", err)
	}

	unreleasedMovie := seedMovie(t, db, "Horizon", timePtr(testNow.AddDate(0, 2, 0)))
	addMember(t, db, &models.ListItem{ListID: wl, MediaItemID: unreleasedMovie})

	run := func(f Filter) []int64 {
		t.Helper()
		req := listRequest(1)
		req.Filter = f
		views, err := eng.ListItems(ctx, req)
		if err != nil {
			t.Fatalf("ListItems: %v", err)
		}
		ids := make([]int64, 0, len(views))
		for _, v := range views {
			ids = append(ids, v.MediaItem.ID)
		}
		return ids
	}

	// Unreleased items are excluded unless opted in
	if ids := run(Filter{}); len(ids) != 3 {
		t.Errorf("default filter: got %v, want show + 2 released movies", ids)
	}
	if ids := run(Filter{IncludeUnreleased: true}); len(ids) != 4 {
		t.Errorf("includeUnreleased: got %v, want 4", ids)
	}

	movieType := models.MediaTypeMovie
	if ids := run(Filter{MediaType: &movieType}); len(ids) != 2 {
		t.Errorf("mediaType=movie: got %v, want 2", ids)
	}

	if ids := run(Filter{OnlyOnWatchlist: true}); len(ids) != 2 {
		t.Errorf("onlyOnWatchlist: got %v, want show + seen movie", ids)
	}
	if ids := run(Filter{OnlySeen: true}); len(ids) != 1 || ids[0] != seenMovie {
		t.Errorf("onlySeen: got %v, want [%d]", ids, seenMovie)
	}
	if ids := run(Filter{OnlyUnseen: true}); len(ids) != 2 {
		t.Errorf("onlyUnseen: got %v, want 2", ids)
	}
	if ids := run(Filter{WithRating: true}); len(ids) != 1 || ids[0] != ratedMovie {
		t.Errorf("withRating: got %v, want [%d]", ids, ratedMovie)
	}
	if ids := run(Filter{WithoutRating: true}); len(ids) != 2 {
		t.Errorf("withoutRating: got %v, want 2", ids)
	}
	if ids := run(Filter{WithUpcomingEpisode: true}); len(ids) != 1 || ids[0] != fx.ShowID {
		t.Errorf("withUpcomingEpisode: got %v, want [%d]", ids, fx.ShowID)
	}
	if ids := run(Filter{WithNextEpisodeToWatch: true}); len(ids) != 1 || ids[0] != fx.ShowID {
		t.Errorf("withNextEpisodeToWatch: got %v, want [%d]", ids, fx.ShowID)
	}
}

func TestListItems_SortByTitle(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()

	wl := watchlist(t, db, 1)
	for _, title := range []string{"banshee", "Alpine", "chroma"} {
		id := seedMovie(t, db, title, timePtr(testNow.AddDate(0, -1, 0)))
		addMember(t, db, &models.ListItem{ListID: wl, MediaItemID: id})
	}

	req := listRequest(1)
	req.SortBy = SortByTitle
	views, err := eng.ListItems(ctx, req)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}

	var titles []string
	for _, v := range views {
		titles = append(titles, v.MediaItem.Title)
	}
	want := []string{"Alpine", "banshee", "chroma"}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("title order = %v, want %v (case-insensitive)", titles, want)
		}
	}

	req.SortOrder = OrderDesc
	views, err = eng.ListItems(ctx, req)
	if err != nil {
		t.Fatalf("ListItems desc: %v", err)
	}
	if views[0].MediaItem.Title != "chroma" {
		t.Errorf("desc order starts with %q, want chroma", views[0].MediaItem.Title)
	}
}

func TestListItems_SortByReleaseDateNilLast(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()

	wl := watchlist(t, db, 1)
	oldID := seedMovie(t, db, "Oldest", timePtr(testNow.AddDate(-5, 0, 0)))
	newID := seedMovie(t, db, "Newest", timePtr(testNow.AddDate(0, -1, 0)))
	datelessID := seedMovie(t, db, "Undated", nil)
	for _, id := range []int64{newID, datelessID, oldID} {
		addMember(t, db, &models.ListItem{ListID: wl, MediaItemID: id})
	}

	req := listRequest(1)
	req.SortBy = SortByReleaseDate
	req.Filter.IncludeUnreleased = true
	views, err := eng.ListItems(ctx, req)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if views[0].MediaItem.ID != oldID || views[2].MediaItem.ID != datelessID {
		t.Errorf("asc order wrong: %q %q %q", views[0].MediaItem.Title, views[1].MediaItem.Title, views[2].MediaItem.Title)
	}

	// Dateless rows stay last in descending order too
	req.SortOrder = OrderDesc
	views, err = eng.ListItems(ctx, req)
	if err != nil {
		t.Fatalf("ListItems desc: %v", err)
	}
	if views[0].MediaItem.ID != newID || views[2].MediaItem.ID != datelessID {
		t.Errorf("desc order wrong: %q %q %q", views[0].MediaItem.Title, views[1].MediaItem.Title, views[2].MediaItem.Title)
	}
}

func TestListItemsPaginated(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()

	wl := watchlist(t, db, 1)
	for i := 0; i < 37; i++ {
		id := seedMovie(t, db, fmt.Sprintf("Movie %02d", i), timePtr(testNow.AddDate(0, -1, 0)))
		addMember(t, db, &models.ListItem{ListID: wl, MediaItemID: id})
	}

	req := listRequest(1)
	req.SortBy = SortByTitle
	req.Page = 3
	page, err := eng.ListItemsPaginated(ctx, req)
	if err != nil {
		t.Fatalf("ListItemsPaginated: %v", err)
	}
	if page.Total != 37 || page.TotalPages != 3 {
		t.Errorf("total = %d pages = %d, want 37 and 3", page.Total, page.TotalPages)
	}
	if page.From != 30 || page.To != 37 {
		t.Errorf("window = [%d, %d), want [30, 37)", page.From, page.To)
	}
	if len(page.Data) != 7 {
		t.Errorf("page 3 has %d rows, want 7", len(page.Data))
	}
	if page.Data[0].MediaItem.Title != "Movie 30" {
		t.Errorf("page 3 starts at %q, want Movie 30", page.Data[0].MediaItem.Title)
	}

	req.Page = 4
	if _, err := eng.ListItemsPaginated(ctx, req); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("page past the end: got %v, want ErrInvalidPage", err)
	}
	req.Page = 0
	if _, err := eng.ListItemsPaginated(ctx, req); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("page 0: got %v, want ErrInvalidPage", err)
	}
}

func TestListItemsPaginated_EmptyFirstPage(t *testing.T) {
	_, eng := setupEngine(t)

	req := listRequest(1)
	req.Page = 1
	page, err := eng.ListItemsPaginated(context.Background(), req)
	if err != nil {
		t.Fatalf("ListItemsPaginated: %v", err)
	}
	if page.Total != 0 || len(page.Data) != 0 {
		t.Errorf("empty library page = %+v", page)
	}
	if page.TotalPages != 0 {
		t.Errorf("totalPages = %d, want 0", page.TotalPages)
	}
}

func TestListItems_RatingGranularityIsolation(t *testing.T) {
	db, eng := setupEngine(t)
	ctx := context.Background()
	fx := seedShow(t, db)

	listID := createList(t, db, 1, "Tracking", models.ListPrivacyPrivate)
	addMember(t, db, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID})
	addMember(t, db, &models.ListItem{ListID: listID, MediaItemID: fx.ShowID, SeasonID: &fx.Season1ID})

	// Rating the show must not leak onto the season row
	if err := db.SetRating(ctx, &models.UserRating{UserID: 1, MediaItemID: fx.ShowID, Rating: floatPtr(9), Date: testNow}); err != nil {
		t.Fatalf("SetRating: %v", err)
	}

	req := listRequest(1)
	req.ListID = &listID
	views, err := eng.ListItems(ctx, req)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	for _, v := range views {
		switch v.Type {
		case models.ViewTypeSeason:
			if v.UserRating != nil {
				t.Errorf("season row inherited item rating: %+v", v.UserRating)
			}
		default:
			if v.UserRating == nil || v.UserRating.Rating == nil || *v.UserRating.Rating != 9 {
				t.Errorf("item rating = %+v, want 9", v.UserRating)
			}
		}
	}
}
