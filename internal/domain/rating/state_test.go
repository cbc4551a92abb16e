package rating

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestState(t *testing.T) {
	Convey("Given a fresh rating state", t, func() {
		s := NewState(1500)

		Convey("unseen teams read the base rating with zero games", func() {
			So(s.Rating("A"), ShouldEqual, 1500.0)
			So(s.Games("A"), ShouldEqual, 0)
			So(s.Teams(), ShouldBeEmpty)
		})

		Convey("Seed sets a start without counting a game", func() {
			s.Seed("A", 1701)
			So(s.Rating("A"), ShouldEqual, 1701.0)
			So(s.Games("A"), ShouldEqual, 0)
		})

		Convey("Apply accumulates deltas and game counts", func() {
			s.Apply("A", 10)
			s.Apply("A", -4)
			So(s.Rating("A"), ShouldEqual, 1506.0)
			So(s.Games("A"), ShouldEqual, 2)
		})

		Convey("Apply on a seeded team keeps the seeded start", func() {
			s.Seed("A", 1701)
			s.Apply("A", 9)
			So(s.Rating("A"), ShouldEqual, 1710.0)
			So(s.Games("A"), ShouldEqual, 1)
		})

		Convey("Teams lists seeded and observed teams sorted", func() {
			s.Seed("C", 1600)
			s.Apply("A", 1)
			s.Apply("B", -1)
			So(s.Teams(), ShouldResemble, []string{"A", "B", "C"})
		})
	})
}
