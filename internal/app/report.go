package service

import "time"

// Report is the outcome of one analysis run. It holds plain values only so
// it can be encoded as YAML or JSON.
type Report struct {
	RunID       string    `yaml:"run_id" json:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`
	Settings    Settings  `yaml:"settings" json:"settings"`

	Records          int        `yaml:"records" json:"records"`
	UnlocatedRecords int        `yaml:"unlocated_records" json:"unlocated_records"`
	FirstRecord      time.Time  `yaml:"first_record,omitempty" json:"first_record,omitempty"`
	LastRecord       time.Time  `yaml:"last_record,omitempty" json:"last_record,omitempty"`
	StudyDays        int        `yaml:"study_days" json:"study_days"`
	TrapDays         int        `yaml:"trap_days" json:"trap_days"`
	TrapAreaKm2      float64    `yaml:"trap_area_km2" json:"trap_area_km2"`
	Richness         int        `yaml:"richness" json:"richness"`
	TotalPeriods     int        `yaml:"total_periods" json:"total_periods"`
	AbundanceAny     int        `yaml:"abundance_any" json:"abundance_any"`
	SeasonalTrapDays []Seasonal `yaml:"seasonal_trap_days" json:"seasonal_trap_days"`

	Species            []SpeciesReport    `yaml:"species" json:"species"`
	Locations          []LocationReport   `yaml:"locations" json:"locations"`
	MostSimilar        *SimilarPair       `yaml:"most_similar,omitempty" json:"most_similar,omitempty"`
	LocationSimilarity []LocationPair     `yaml:"location_similarity,omitempty" json:"location_similarity,omitempty"`
	LocationDistances  []LocationDistance `yaml:"location_distances,omitempty" json:"location_distances,omitempty"`
	CoOccurrence       []CoOccurrence     `yaml:"co_occurrence,omitempty" json:"co_occurrence,omitempty"`
	Occupancy          []Occupancy        `yaml:"occupancy,omitempty" json:"occupancy,omitempty"`
	Accumulation       []Accumulation     `yaml:"accumulation,omitempty" json:"accumulation,omitempty"`
}

// Settings echoes the parameters the run used.
type Settings struct {
	EventIntervalMinutes int    `yaml:"event_interval_minutes" json:"event_interval_minutes"`
	Grouping             string `yaml:"grouping" json:"grouping"`
	MoonWindowDays       int    `yaml:"moon_window_days" json:"moon_window_days"`
	MinPictures          int    `yaml:"min_pictures" json:"min_pictures"`

	// From and To bound the analysed records, [From, To). Zero is unbounded.
	From time.Time `yaml:"from,omitempty" json:"from,omitempty"`
	To   time.Time `yaml:"to,omitempty" json:"to,omitempty"`
}

// SpeciesReport holds the statistics of one species.
type SpeciesReport struct {
	Name           string `yaml:"name" json:"name"`
	ScientificName string `yaml:"scientific_name,omitempty" json:"scientific_name,omitempty"`
	Rank           int    `yaml:"rank" json:"rank"`

	Pictures   int     `yaml:"pictures" json:"pictures"`
	Periods    int     `yaml:"periods" json:"periods"`
	Abundance  int     `yaml:"abundance" json:"abundance"`
	Proportion float64 `yaml:"proportion" json:"proportion"`

	FirstSeen     time.Time `yaml:"first_seen" json:"first_seen"`
	FirstLocation string    `yaml:"first_location,omitempty" json:"first_location,omitempty"`
	LastSeen      time.Time `yaml:"last_seen" json:"last_seen"`
	LastLocation  string    `yaml:"last_location,omitempty" json:"last_location,omitempty"`

	HourlyPeriods     [24]int         `yaml:"hourly_periods,flow" json:"hourly_periods"`
	PeriodsByLocation map[string]int  `yaml:"periods_by_location,omitempty" json:"periods_by_location,omitempty"`
	SeasonalPeriods   []Seasonal      `yaml:"seasonal_periods" json:"seasonal_periods"`
	DetectionRates    []DetectionRate `yaml:"detection_rates,omitempty" json:"detection_rates,omitempty"`
	Elevation         *Elevation      `yaml:"elevation,omitempty" json:"elevation,omitempty"`

	FullMoonPeriods int     `yaml:"full_moon_periods" json:"full_moon_periods"`
	NewMoonPeriods  int     `yaml:"new_moon_periods" json:"new_moon_periods"`
	LunarDifference float64 `yaml:"lunar_difference" json:"lunar_difference"`
}

// DetectionRate is the periods of a species per 100 camera days at one
// location in one year. Monthly holds the same rate per calendar month.
type DetectionRate struct {
	Location string      `yaml:"location" json:"location"`
	Year     int         `yaml:"year" json:"year"`
	Days     int         `yaml:"days" json:"days"`
	Periods  int         `yaml:"periods" json:"periods"`
	Rate     float64     `yaml:"rate" json:"rate"`
	Monthly  [12]float64 `yaml:"monthly,flow" json:"monthly"`
}

// Elevation is the range of site elevations a species was recorded at.
type Elevation struct {
	MinMeters float64  `yaml:"min_m" json:"min_m"`
	MaxMeters float64  `yaml:"max_m" json:"max_m"`
	Locations []string `yaml:"locations,flow" json:"locations"`
}

// Seasonal is a value for one named season.
type Seasonal struct {
	Season string `yaml:"season" json:"season"`
	Value  int    `yaml:"value" json:"value"`
}

// LocationReport holds the statistics of one camera location.
type LocationReport struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Latitude    float64      `yaml:"latitude" json:"latitude"`
	Longitude   float64      `yaml:"longitude" json:"longitude"`
	UTM         string       `yaml:"utm,omitempty" json:"utm,omitempty"`
	Pictures    int          `yaml:"pictures" json:"pictures"`
	Individuals int          `yaml:"individuals" json:"individuals"`
	TrapDays    int          `yaml:"trap_days" json:"trap_days"`
	Richness    int          `yaml:"richness" json:"richness"`
	Effort      []YearEffort `yaml:"effort" json:"effort"`
}

// YearEffort is the camera days of one location per month of a year.
type YearEffort struct {
	Year   int     `yaml:"year" json:"year"`
	Months [12]int `yaml:"months,flow" json:"months"`
	Total  int     `yaml:"total" json:"total"`
}

// SimilarPair names the two species whose daily activity is closest.
type SimilarPair struct {
	A           string  `yaml:"a" json:"a"`
	B           string  `yaml:"b" json:"b"`
	Distance    float64 `yaml:"distance" json:"distance"`
	ChiSquare   float64 `yaml:"chi_square" json:"chi_square"`
	SamePattern bool    `yaml:"same_pattern" json:"same_pattern"`
}

// LocationPair is the species composition similarity of two locations.
type LocationPair struct {
	A          string  `yaml:"a" json:"a"`
	B          string  `yaml:"b" json:"b"`
	Similarity float64 `yaml:"similarity" json:"similarity"`
}

// LocationDistance is the great-circle distance between two locations.
type LocationDistance struct {
	A              string  `yaml:"a" json:"a"`
	B              string  `yaml:"b" json:"b"`
	Km             float64 `yaml:"km" json:"km"`
	ElevationDiffM float64 `yaml:"elevation_diff_m" json:"elevation_diff_m"`
}

// CoOccurrence is the number of locations where both species were recorded.
type CoOccurrence struct {
	A         string `yaml:"a" json:"a"`
	B         string `yaml:"b" json:"b"`
	Locations int    `yaml:"locations" json:"locations"`
}

// Occupancy is the naive occupancy of one species: the share of camera
// locations where it was recorded at least once.
type Occupancy struct {
	Species   string  `yaml:"species" json:"species"`
	Locations int     `yaml:"locations" json:"locations"`
	Fraction  float64 `yaml:"fraction" json:"fraction"`
}

// Accumulation is a species first recorded on a study day.
type Accumulation struct {
	Day     int       `yaml:"day" json:"day"`
	Date    time.Time `yaml:"date" json:"date"`
	Species string    `yaml:"species" json:"species"`
}

// SpeciesByName returns the report of the species with the given common name.
func (r *Report) SpeciesByName(name string) (SpeciesReport, bool) {
	for _, s := range r.Species {
		if s.Name == name {
			return s, true
		}
	}
	return SpeciesReport{}, false
}

// LocationByID returns the report of a location.
func (r *Report) LocationByID(id string) (LocationReport, bool) {
	for _, l := range r.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return LocationReport{}, false
}
