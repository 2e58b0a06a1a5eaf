package main

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/okian/camtrap/internal/adapters/dataset"
	service "github.com/okian/camtrap/internal/app"
	"github.com/okian/camtrap/internal/config"
	"github.com/okian/camtrap/internal/domain/geodesy"
)

const effortDataset = `
locations:
  - id: ridge
    latitude: 44.60
    longitude: -110.50
  - id: creek
    latitude: 44.61
    longitude: -110.52
records:
  - timestamp: "2021-01-01 12:00:00"
    location: creek
    species:
      - name: Red Fox
        count: 1
  - timestamp: "2021-01-28 21:00:00"
    location: ridge
    species:
      - name: Mule Deer
        scientific_name: Odocoileus hemionus
        count: 1
  - timestamp: "2021-01-28 21:20:00"
    location: ridge
    species:
      - name: Mule Deer
        scientific_name: Odocoileus hemionus
        count: 2
  - timestamp: "2021-01-30 03:00:00"
    location: ridge
    species:
      - name: Mule Deer
        scientific_name: Odocoileus hemionus
        count: 1
  - timestamp: "2021-02-03 12:00:00"
    location: ridge
`

// execute runs the command tree with args and captures stdout and stderr.
func execute(args ...string) (string, string, error) {
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// isolate clears CAMTRAP_* variables for the duration of the test.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvFile, "CAMTRAP_LOG_LEVEL", "CAMTRAP_LOG_FORMAT", "CAMTRAP_EVENT_INTERVAL_MINUTES", "CAMTRAP_GROUPING", "CAMTRAP_METRICS_TEXTFILE"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestGeoCommands(t *testing.T) {
	isolate(t)

	convey.Convey("Given the utm command", t, func() {
		convey.Convey("When converting a northern hemisphere point", func() {
			out, _, err := execute("utm", "44.6", "-110.5")
			convey.So(err, convey.ShouldBeNil)

			var got utmOutput
			convey.So(yaml.Unmarshal([]byte(out), &got), convey.ShouldBeNil)

			convey.Convey("Then zone and band are derived from the coordinates", func() {
				convey.So(got.Zone, convey.ShouldEqual, 12)
				convey.So(got.Band, convey.ShouldEqual, "T")
				convey.So(got.UTM, convey.ShouldStartWith, "12T ")
			})

			convey.Convey("Then latlng converts the result back", func() {
				back, _, err := execute("latlng",
					strconv.Itoa(got.Zone), got.Band,
					strconv.FormatFloat(got.Easting, 'f', 3, 64),
					strconv.FormatFloat(got.Northing, 'f', 3, 64),
				)
				convey.So(err, convey.ShouldBeNil)

				var ll latLngOutput
				convey.So(yaml.Unmarshal([]byte(back), &ll), convey.ShouldBeNil)
				convey.So(math.Abs(ll.Latitude-44.6), convey.ShouldBeLessThan, 1e-4)
				convey.So(math.Abs(ll.Longitude+110.5), convey.ShouldBeLessThan, 1e-4)
			})
		})

		convey.Convey("When the latitude is negative", func() {
			out, _, err := execute("utm", "--", "-33.86", "151.21")
			convey.So(err, convey.ShouldBeNil)

			var got utmOutput
			convey.So(yaml.Unmarshal([]byte(out), &got), convey.ShouldBeNil)
			convey.So(got.Zone, convey.ShouldEqual, 56)
			convey.So(got.Band, convey.ShouldEqual, "H")
		})

		convey.Convey("When the latitude has no band", func() {
			_, _, err := execute("utm", "84.5", "10")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When an argument is not a number", func() {
			_, _, err := execute("utm", "north", "10")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given the latlng command", t, func() {
		convey.Convey("When the band letter is ambiguous", func() {
			_, _, err := execute("latlng", "12", "I", "500000", "4900000")
			convey.So(errors.Is(err, geodesy.ErrInvalidBand), convey.ShouldBeTrue)
		})

		convey.Convey("When the zone is out of range", func() {
			_, _, err := execute("latlng", "61", "T", "500000", "4900000")
			convey.So(errors.Is(err, geodesy.ErrInvalidZone), convey.ShouldBeTrue)
		})
	})
}

func TestEffortCommand(t *testing.T) {
	isolate(t)

	convey.Convey("Given a dataset spanning a month boundary", t, func() {
		path := writeFile(t, "effort.yaml", effortDataset)

		convey.Convey("When effort is requested for a location", func() {
			out, _, err := execute("effort", path, "--location", "ridge", "--year", "2021")
			convey.So(err, convey.ShouldBeNil)

			var got effortOutput
			convey.So(yaml.Unmarshal([]byte(out), &got), convey.ShouldBeNil)

			convey.Convey("Then days are split by true month length", func() {
				convey.So(got.Days, convey.ShouldEqual, 7)
				convey.So(got.Months, convey.ShouldHaveLength, 12)
				convey.So(got.Months[0].Days, convey.ShouldEqual, 4)
				convey.So(got.Months[1].Days, convey.ShouldEqual, 3)
				convey.So(got.Months[2].Days, convey.ShouldEqual, 0)
				convey.So(got.Periods, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a species is named", func() {
			out, _, err := execute("effort", path, "-l", "ridge", "-s", "mule deer")
			convey.So(err, convey.ShouldBeNil)

			var got effortOutput
			convey.So(yaml.Unmarshal([]byte(out), &got), convey.ShouldBeNil)

			convey.Convey("Then periods and detection rates are reported", func() {
				convey.So(got.Year, convey.ShouldEqual, 2021)
				convey.So(*got.Periods, convey.ShouldEqual, 2)
				convey.So(*got.DetectionRate, convey.ShouldAlmostEqual, 200.0/7, 1e-9)
				convey.So(*got.Months[0].Periods, convey.ShouldEqual, 2)
				convey.So(*got.Months[0].DetectionRate, convey.ShouldAlmostEqual, 50.0, 1e-9)
				convey.So(*got.Months[1].DetectionRate, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the location has no records", func() {
			_, _, err := execute("effort", path, "--location", "nowhere")
			convey.So(errors.Is(err, errNoRecords), convey.ShouldBeTrue)
		})

		convey.Convey("When the species is unknown", func() {
			_, _, err := execute("effort", path, "--location", "ridge", "--species", "moose")
			convey.So(errors.Is(err, errUnknownSpecies), convey.ShouldBeTrue)
		})

		convey.Convey("When no location is given", func() {
			_, _, err := execute("effort", path)
			convey.So(errors.Is(err, errMissingLocation), convey.ShouldBeTrue)
		})
	})
}

func TestSynthAndAnalyze(t *testing.T) {
	isolate(t)

	convey.Convey("Given a synthetic dataset written to disk", t, func() {
		dir := t.TempDir()
		data := filepath.Join(dir, "study.yaml")

		_, _, err := execute("synth", "--out", data, "--seed", "7", "--days", "30", "--locations", "2", "--species", "2")
		convey.So(err, convey.ShouldBeNil)

		f, err := os.Open(data)
		convey.So(err, convey.ShouldBeNil)
		ds, err := dataset.Decode(f)
		_ = f.Close()
		convey.So(err, convey.ShouldBeNil)
		convey.So(ds.Locations, convey.ShouldHaveLength, 2)
		convey.So(ds.Records, convey.ShouldNotBeEmpty)
		convey.So(ds.FullMoons, convey.ShouldNotBeEmpty)

		convey.Convey("When it is analyzed with a metrics textfile configured", func() {
			prom := filepath.Join(dir, "camtrap.prom")
			cfgPath := writeFile(t, "camtrap.yaml", "worker_count: 2\nmetrics_textfile: "+prom+"\n")

			out, _, err := execute("analyze", data, "--config", cfgPath, "--interval", "30")
			convey.So(err, convey.ShouldBeNil)

			var report struct {
				RunID    string `yaml:"run_id"`
				Records  int    `yaml:"records"`
				Settings struct {
					EventIntervalMinutes int `yaml:"event_interval_minutes"`
				} `yaml:"settings"`
				Species []struct {
					Name    string `yaml:"name"`
					Periods int    `yaml:"periods"`
				} `yaml:"species"`
			}
			convey.So(yaml.Unmarshal([]byte(out), &report), convey.ShouldBeNil)

			convey.Convey("Then the report covers the whole dataset", func() {
				convey.So(report.RunID, convey.ShouldNotBeEmpty)
				convey.So(report.Records, convey.ShouldEqual, len(ds.Records))
				convey.So(report.Settings.EventIntervalMinutes, convey.ShouldEqual, 30)
				convey.So(report.Species, convey.ShouldHaveLength, 2)
				convey.So(report.Species[0].Periods, convey.ShouldBeGreaterThan, 0)
			})

			convey.Convey("Then the metrics textfile is written", func() {
				info, err := os.Stat(prom)
				convey.So(err, convey.ShouldBeNil)
				convey.So(info.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When it is analyzed within a date window", func() {
			out, _, err := execute("analyze", data, "--from", "2021-01-10", "--to", "2021-01-19")
			convey.So(err, convey.ShouldBeNil)

			var report struct {
				Records  int `yaml:"records"`
				Settings struct {
					From string `yaml:"from"`
					To   string `yaml:"to"`
				} `yaml:"settings"`
			}
			convey.So(yaml.Unmarshal([]byte(out), &report), convey.ShouldBeNil)

			convey.Convey("Then only records of those days are counted", func() {
				want := 0
				for _, r := range ds.Records {
					if d := r.Timestamp.Format("2006-01-02"); d >= "2021-01-10" && d <= "2021-01-19" {
						want++
					}
				}
				convey.So(report.Records, convey.ShouldEqual, want)
				convey.So(report.Settings.From, convey.ShouldStartWith, "2021-01-10")
				convey.So(report.Settings.To, convey.ShouldStartWith, "2021-01-20")
			})
		})

		convey.Convey("When the window is reversed", func() {
			_, _, err := execute("analyze", data, "--from", "2021-01-19", "--to", "2021-01-10")
			convey.So(errors.Is(err, service.ErrInvalidSetting), convey.ShouldBeTrue)
		})

		convey.Convey("When a window bound is not a date", func() {
			_, _, err := execute("analyze", data, "--from", "soon")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the interval flag is invalid", func() {
			_, _, err := execute("analyze", data, "--interval", "0")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the grouping flag is unknown", func() {
			_, _, err := execute("analyze", data, "--grouping", "site")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a dataset path that does not exist", t, func() {
		_, _, err := execute("analyze", filepath.Join(t.TempDir(), "missing.yaml"))
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestConfigLoading(t *testing.T) {
	isolate(t)

	convey.Convey("Given a config file with an unknown log format", t, func() {
		path := writeFile(t, "bad.yaml", "log_format: xml\n")

		convey.Convey("When any command runs", func() {
			_, _, err := execute("--config", path, "utm", "10", "10")

			convey.Convey("Then setup fails with an invalid config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a config file that does not exist", t, func() {
		_, _, err := execute("--config", filepath.Join(t.TempDir(), "none.yaml"), "utm", "10", "10")
		convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
	})

	convey.Convey("Given run with a failing command", t, func() {
		convey.So(run(context.Background(), []string{"latlng", "1", "2"}), convey.ShouldEqual, 1)
	})
}
