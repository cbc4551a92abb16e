package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gridiron/internal/domain/model"
)

func intPtr(v int) *int { return &v }

func testGame(id string, week int, day int, home, away string, hs, as int) model.Game {
	return model.Game{
		ID:         id,
		League:     "NFL",
		Season:     2023,
		Week:       week,
		Date:       time.Date(2023, 9, day, 17, 0, 0, 0, time.UTC),
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  intPtr(hs),
		AwayScore:  intPtr(as),
		Completed:  true,
	}
}

func snapshot(team string, week int, rating float64, games int) model.RatingSnapshot {
	return model.RatingSnapshot{
		League:     "NFL",
		Season:     2023,
		TeamID:     team,
		Week:       week,
		Rating:     rating,
		GamesCount: games,
		AsOfDate:   time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, week*7),
		Kind:       model.KindElo,
	}
}

// exerciseStore runs the full contract against any Store implementation.
func exerciseStore(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := open(t)
		defer func() { So(store.Close(), ShouldBeNil) }()

		Convey("GamesFor returns nothing", func() {
			games, err := store.GamesFor(ctx, "NFL", 2023)
			So(err, ShouldBeNil)
			So(games, ShouldBeEmpty)
		})

		Convey("GameByID reports not found", func() {
			_, err := store.GameByID(ctx, "missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("LatestBefore reports not found", func() {
			_, err := store.LatestBefore(ctx, "NFL", 2023, "KC", 10)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("LatestBefore rejects a negative cutoff", func() {
			_, err := store.LatestBefore(ctx, "NFL", 2023, "KC", -1)
			So(errors.Is(err, ErrInvalidCutoff), ShouldBeTrue)
		})
	})

	Convey("Given a store with games", t, func() {
		store := open(t)
		defer func() { So(store.Close(), ShouldBeNil) }()

		games := []model.Game{
			testGame("g3", 2, 17, "KC", "DET", 31, 21),
			testGame("g1", 1, 10, "KC", "BUF", 24, 17),
			testGame("g2", 1, 11, "DET", "BUF", 20, 20),
		}
		So(store.InsertGames(ctx, games), ShouldBeNil)

		Convey("GamesFor returns the chronological log", func() {
			got, err := store.GamesFor(ctx, "NFL", 2023)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 3)
			So(got[0].ID, ShouldEqual, "g1")
			So(got[1].ID, ShouldEqual, "g2")
			So(got[2].ID, ShouldEqual, "g3")
		})

		Convey("GamesFor scopes by league and season", func() {
			got, err := store.GamesFor(ctx, "NFL", 2022)
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("GameByID round-trips a game", func() {
			got, err := store.GameByID(ctx, "g1")
			So(err, ShouldBeNil)
			So(got.HomeTeamID, ShouldEqual, "KC")
			So(got.AwayTeamID, ShouldEqual, "BUF")
			So(*got.HomeScore, ShouldEqual, 24)
			So(*got.AwayScore, ShouldEqual, 17)
			So(got.Completed, ShouldBeTrue)
			So(got.Date.Equal(games[1].Date), ShouldBeTrue)
		})

		Convey("re-inserting a game replaces it", func() {
			updated := testGame("g1", 1, 10, "KC", "BUF", 27, 17)
			So(store.InsertGames(ctx, []model.Game{updated}), ShouldBeNil)

			got, err := store.GameByID(ctx, "g1")
			So(err, ShouldBeNil)
			So(*got.HomeScore, ShouldEqual, 27)

			all, err := store.GamesFor(ctx, "NFL", 2023)
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 3)
		})

		Convey("weekly stats are materialized per team", func() {
			stats, err := store.StatsThrough(ctx, "NFL", 2023, "KC", 10, 0)
			So(err, ShouldBeNil)
			So(len(stats), ShouldEqual, 2)
			// Most recent first.
			So(stats[0].Week, ShouldEqual, 2)
			So(stats[0].PointDiff, ShouldEqual, 10)
			So(stats[1].Week, ShouldEqual, 1)
			So(stats[1].PointDiff, ShouldEqual, 7)
		})

		Convey("stats respect the week cutoff and limit", func() {
			stats, err := store.StatsThrough(ctx, "NFL", 2023, "KC", 1, 0)
			So(err, ShouldBeNil)
			So(len(stats), ShouldEqual, 1)
			So(stats[0].Week, ShouldEqual, 1)

			stats, err = store.StatsThrough(ctx, "NFL", 2023, "KC", 10, 1)
			So(err, ShouldBeNil)
			So(len(stats), ShouldEqual, 1)
			So(stats[0].Week, ShouldEqual, 2)

			_, err = store.StatsThrough(ctx, "NFL", 2023, "KC", -1, 0)
			So(errors.Is(err, ErrInvalidCutoff), ShouldBeTrue)
		})
	})

	Convey("Given a store with rating snapshots", t, func() {
		store := open(t)
		defer func() { So(store.Close(), ShouldBeNil) }()

		rows := []model.RatingSnapshot{
			snapshot("KC", 1, 1510, 1),
			snapshot("KC", 3, 1525, 3),
			snapshot("BUF", 1, 1490, 1),
			snapshot("BUF", 2, 1480, 2),
		}
		So(store.UpsertSeason(ctx, "NFL", 2023, rows), ShouldBeNil)

		Convey("LatestBefore picks the nearest earlier week", func() {
			snap, err := store.LatestBefore(ctx, "NFL", 2023, "KC", 2)
			So(err, ShouldBeNil)
			So(snap.Week, ShouldEqual, 1)
			So(snap.Rating, ShouldEqual, 1510)

			snap, err = store.LatestBefore(ctx, "NFL", 2023, "KC", 3)
			So(err, ShouldBeNil)
			So(snap.Week, ShouldEqual, 3)
			So(snap.Rating, ShouldEqual, 1525)
		})

		Convey("LatestBefore misses when every row is later", func() {
			_, err := store.LatestBefore(ctx, "NFL", 2023, "KC", 0)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("FinalSnapshots keeps the max-week row per team", func() {
			finals, err := store.FinalSnapshots(ctx, "NFL", 2023)
			So(err, ShouldBeNil)
			So(len(finals), ShouldEqual, 2)
			So(finals[0].TeamID, ShouldEqual, "KC")
			So(finals[0].Week, ShouldEqual, 3)
			So(finals[1].TeamID, ShouldEqual, "BUF")
			So(finals[1].Week, ShouldEqual, 2)
		})

		Convey("re-running the upsert is idempotent", func() {
			So(store.UpsertSeason(ctx, "NFL", 2023, rows), ShouldBeNil)

			finals, err := store.FinalSnapshots(ctx, "NFL", 2023)
			So(err, ShouldBeNil)
			So(len(finals), ShouldEqual, 2)
		})

		Convey("upserting a different kind leaves elo rows alone", func() {
			srs := []model.RatingSnapshot{{
				League: "NFL", Season: 2023, TeamID: "KC", Week: 3,
				Rating: 4.2, GamesCount: 3,
				AsOfDate: time.Date(2023, 9, 22, 0, 0, 0, 0, time.UTC),
				Kind:     model.KindSRS,
			}}
			So(store.UpsertSeason(ctx, "NFL", 2023, srs), ShouldBeNil)

			finals, err := store.FinalSnapshots(ctx, "NFL", 2023)
			So(err, ShouldBeNil)
			So(len(finals), ShouldEqual, 2)
			So(finals[0].Kind, ShouldEqual, model.KindElo)
		})
	})
}

func TestMemStore(t *testing.T) {
	exerciseStore(t, func(t *testing.T) Store { return NewMemStore() })
}

func TestSQLStoreSQLite(t *testing.T) {
	exerciseStore(t, func(t *testing.T) Store {
		path := filepath.Join(t.TempDir(), "gridiron.db")
		store, err := OpenSQL(DriverSQLite, path)
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		return store
	})
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	Convey("OpenSQL rejects an unknown driver name", t, func() {
		_, err := OpenSQL("oracle", "dsn")
		So(err, ShouldNotBeNil)
	})
}

func TestSQLStoreDoubleClose(t *testing.T) {
	Convey("closing a store twice reports the terminal state", t, func() {
		store, err := OpenSQL(DriverSQLite, filepath.Join(t.TempDir(), "gridiron.db"))
		So(err, ShouldBeNil)
		So(store.Close(), ShouldBeNil)
		So(store.Close(), ShouldEqual, ErrClosed)
	})
}
