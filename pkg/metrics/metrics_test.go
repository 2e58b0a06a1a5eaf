package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then metrics are registered under the camtrap namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.recordsLoaded.Add(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "camtrap_engine_records_loaded_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("field"),
				WithSubsystem("survey"),
				WithRunBuckets([]float64{0.1, 1, 10}),
				WithJobBuckets([]float64{1, 100}),
				WithConstLabels(map[string]string{"site": "sky-island"}),
				WithEnabled(false),
				WithRegistry(registry),
			)

			Convey("Then they are applied", func() {
				So(manager.namespace, ShouldEqual, "field")
				So(manager.subsystem, ShouldEqual, "survey")
				So(manager.enabled, ShouldBeFalse)
				So(manager.runBuckets, ShouldResemble, []float64{0.1, 1, 10})
				So(manager.jobBuckets, ShouldResemble, []float64{1, 100})
				So(manager.constLabels, ShouldResemble, map[string]string{"site": "sky-island"})
				manager.jobsProcessed.Inc()
				So(testutil.ToFloat64(manager.jobsProcessed), ShouldEqual, 1)
			})
		})

		Convey("When options carry empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithRunBuckets(nil),
				WithJobBuckets(nil),
				WithConstLabels(nil),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "camtrap")
				So(manager.subsystem, ShouldEqual, "engine")
				So(manager.runBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.jobBuckets, ShouldHaveLength, 12)
				So(manager.constLabels, ShouldBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording run metrics", func() {
			before := testutil.ToFloat64(globalManager.analysisRuns)
			RecordAnalysisRun(0.25)
			RecordRecordsLoaded(10)
			UpdateLocationsLoaded(4)

			Convey("Then counters and gauges move", func() {
				So(testutil.ToFloat64(globalManager.analysisRuns), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.locationsLoaded), ShouldEqual, 4)
			})
		})

		Convey("When recording job, queue, cache and error metrics", func() {
			So(func() {
				RecordSpeciesAnalyzed()
				RecordJobProcessed(1.5)
				RecordJobError()
				UpdateQueueSize(3)
				UpdateQueueCapacity(16)
				RecordQueueEnqueue()
				RecordQueueEnqueueError()
				UpdateWorkerActiveCount(2)
				RecordCacheHit()
				RecordCacheMiss()
				RecordErrorByComponent("worker", "job_failed")
			}, ShouldNotPanic)

			Convey("Then labelled errors are tracked", func() {
				c := globalManager.errorsByComponent.WithLabelValues("worker", "job_failed")
				So(testutil.ToFloat64(c), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 16)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a temporary directory", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "camtrap.prom")
		RecordRecordsLoaded(1)

		Convey("When writing the registry", func() {
			err := WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				b, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(strings.Contains(string(b), "camtrap_engine_records_loaded_total"), ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(dir, "missing", "x.prom"))

			Convey("Then a wrapped error is returned", func() {
				So(err, ShouldWrap, ErrWriteTextfile)
			})
		})
	})
}
