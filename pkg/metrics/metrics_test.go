package metrics_test

import (
	"testing"

	"github.com/okian/gridiron/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	convey.Convey("Given the global metrics manager", t, func() {
		convey.Convey("Then recording helpers should not panic", func() {
			convey.So(func() {
				metrics.RecordGameProcessed()
				metrics.RecordGameSkipped()
				metrics.RecordGameDuplicate()
				metrics.RecordReplayStarted()
				metrics.RecordReplayCompleted()
				metrics.RecordReplayError()
				metrics.RecordReplayDuration(12.5)
				metrics.RecordSnapshotRowsUpserted(32)
				metrics.RecordStoreUpdateLatency(1.0)
				metrics.RecordStoreQueryLatency(0.5)
				metrics.RecordFeatureVector("week")
				metrics.RecordFeatureVector("date")
				metrics.UpdateQueueSize(3)
				metrics.UpdateWorkerCount(4)
				metrics.UpdateTeamsTracked(32)
				metrics.RecordQueueEnqueueError()
				metrics.RecordHTTPRequest("/rankings", "GET", "200")
				metrics.RecordHTTPRequestDuration("/rankings", "GET", "200", 3.2)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("Then the custom registry should gather collectors", func() {
			families, err := metrics.GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(families), convey.ShouldBeGreaterThan, 0)
		})
	})

	convey.Convey("Given a manager on an isolated registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(reg),
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("rating"),
			metrics.WithHistogramBuckets([]float64{1, 10, 100}),
		)

		convey.Convey("Then construction should register collectors", func() {
			convey.So(m, convey.ShouldNotBeNil)
			families, err := reg.Gather()
			convey.So(err, convey.ShouldBeNil)
			convey.So(families, convey.ShouldNotBeNil)
		})
	})
}
