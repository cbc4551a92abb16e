package rating

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gridiron/internal/domain/model"
)

func TestSRS(t *testing.T) {
	Convey("Given a season of completed games", t, func() {
		games := []model.Game{
			playedGame("g1", 1, 10, "A", "B", 24, 17),
			playedGame("g2", 2, 17, "B", "C", 20, 20),
			playedGame("g3", 3, 24, "C", "A", 27, 10),
		}

		Convey("SRS is the average point differential", func() {
			out := SRS("NFL", 2023, games)
			So(len(out), ShouldEqual, 3)

			byTeam := make(map[string]model.RatingSnapshot)
			for _, s := range out {
				byTeam[s.TeamID] = s
			}
			// A: +7, -17 over 2 games. B: -7, 0. C: 0, +17.
			So(byTeam["A"].Rating, ShouldAlmostEqual, -5.0, 1e-9)
			So(byTeam["B"].Rating, ShouldAlmostEqual, -3.5, 1e-9)
			So(byTeam["C"].Rating, ShouldAlmostEqual, 8.5, 1e-9)
		})

		Convey("rows are ordered best first and tagged as srs", func() {
			out := SRS("NFL", 2023, games)
			So(out[0].TeamID, ShouldEqual, "C")
			So(out[2].TeamID, ShouldEqual, "A")
			for _, s := range out {
				So(s.Kind, ShouldEqual, model.KindSRS)
				So(s.GamesCount, ShouldEqual, 2)
			}
		})

		Convey("incomplete games are ignored", func() {
			scheduled := model.Game{ID: "g4", League: "NFL", Season: 2023, Week: 4,
				HomeTeamID: "A", AwayTeamID: "D"}
			out := SRS("NFL", 2023, append(games, scheduled))
			So(len(out), ShouldEqual, 3)
		})

		Convey("an empty log yields no rows", func() {
			So(SRS("NFL", 2023, nil), ShouldBeEmpty)
		})
	})
}
