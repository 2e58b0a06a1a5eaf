package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/camtrap/internal/domain/geodesy"
	"github.com/okian/camtrap/internal/domain/model"
)

type utmOutput struct {
	Zone     int     `yaml:"zone"`
	Band     string  `yaml:"band"`
	Easting  float64 `yaml:"easting"`
	Northing float64 `yaml:"northing"`
	UTM      string  `yaml:"utm"`
}

type latLngOutput struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// newUTMCommand creates the utm command converting WGS84 degrees to UTM.
func newUTMCommand(_ *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "utm [latitude] [longitude]",
		Short: "Convert latitude and longitude to UTM",
		Example: `  camtrap utm 44.6 -110.5
  camtrap utm -- -33.86 151.21`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := parseFloat("latitude", args[0])
			if err != nil {
				return err
			}
			lng, err := parseFloat("longitude", args[1])
			if err != nil {
				return err
			}
			c, err := geodesy.ToUTM(lat, lng)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), utmOutput{
				Zone:     c.Zone,
				Band:     string(c.Band),
				Easting:  round(c.Easting, 3),
				Northing: round(c.Northing, 3),
				UTM:      c.String(),
			})
		},
	}
	// Negative coordinates after the first positional are not flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// newLatLngCommand creates the latlng command converting UTM to WGS84 degrees.
func newLatLngCommand(_ *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "latlng [zone] [band] [easting] [northing]",
		Short:   "Convert a UTM coordinate to latitude and longitude",
		Example: `  camtrap latlng 12 T 539666 4938838`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", geodesy.ErrInvalidZone, args[0])
			}
			band := strings.ToUpper(args[1])
			if len(band) != 1 {
				return fmt.Errorf("%w: %q", geodesy.ErrInvalidBand, args[1])
			}
			easting, err := parseFloat("easting", args[2])
			if err != nil {
				return err
			}
			northing, err := parseFloat("northing", args[3])
			if err != nil {
				return err
			}
			lat, lng, err := geodesy.ToLatLng(model.UTMCoordinate{
				Easting:  easting,
				Northing: northing,
				Zone:     zone,
				Band:     band[0],
			})
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), latLngOutput{
				Latitude:  round(lat, 6),
				Longitude: round(lng, 6),
			})
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}

// round keeps digits decimals for readable output.
func round(v float64, digits int) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', digits, 64), 64)
	return r
}
