package dataset

// document is the on-disk shape of a dataset. YAML and JSON are both accepted.
type document struct {
	Locations []locationDoc `yaml:"locations" validate:"dive"`
	Records   []recordDoc   `yaml:"records" validate:"dive"`
	FullMoons []string      `yaml:"full_moons,omitempty"`
	NewMoons  []string      `yaml:"new_moons,omitempty"`
}

type locationDoc struct {
	ID        string  `yaml:"id" validate:"required"`
	Name      string  `yaml:"name,omitempty"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Elevation float64 `yaml:"elevation,omitempty"`
}

type recordDoc struct {
	Timestamp string       `yaml:"timestamp" validate:"required"`
	Location  string       `yaml:"location,omitempty"`
	Source    string       `yaml:"source,omitempty"`
	Species   []speciesDoc `yaml:"species,omitempty" validate:"dive"`
}

type speciesDoc struct {
	Name           string `yaml:"name" validate:"required"`
	ScientificName string `yaml:"scientific_name,omitempty"`
	Count          int    `yaml:"count" validate:"min=1"`
}
