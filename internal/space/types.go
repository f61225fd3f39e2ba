package space

import "math"

// ActivityType is the intended use of a zone, also expressed by users in
// their preference profile.
type ActivityType string

const (
	ActivityWork       ActivityType = "work"
	ActivitySocial     ActivityType = "social"
	ActivityStudy      ActivityType = "study"
	ActivityRelaxation ActivityType = "relaxation"
)

// AllActivityTypes returns all valid activity types.
func AllActivityTypes() []ActivityType {
	return []ActivityType{ActivityWork, ActivitySocial, ActivityStudy, ActivityRelaxation}
}

// ValidActivityType checks whether the given string is a known activity type.
func ValidActivityType(s string) bool {
	for _, a := range AllActivityTypes() {
		if string(a) == s {
			return true
		}
	}
	return false
}

// Point is a position in the shared café coordinate space.
// Z is optional; two-dimensional layouts leave it at zero.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z,omitempty" yaml:"z,omitempty"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// IsFinite reports whether all coordinates are finite numbers.
func (p Point) IsFinite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Zone is a named region of the café with shared ambient attributes.
type Zone struct {
	ID              string       `json:"id" yaml:"id"`
	Name            string       `json:"name" yaml:"name"`
	NoiseLevel      int          `json:"noise_level" yaml:"noise_level"`           // 0..100
	ActivityType    ActivityType `json:"activity_type" yaml:"activity_type"`       // work, social, study, relaxation
	LightingQuality int          `json:"lighting_quality" yaml:"lighting_quality"` // 0..100
}

// Seat is the smallest unit of occupancy. Geometry never changes after load.
type Seat struct {
	ID       string `json:"id" yaml:"id"`
	ZoneID   string `json:"zone_id" yaml:"zone_id"`
	Position Point  `json:"position" yaml:"position"`
	Capacity int    `json:"capacity" yaml:"capacity"`

	// Comfort is the seat-level base comfort (0..100). Zero means the
	// configured default applies.
	Comfort int `json:"comfort,omitempty" yaml:"comfort,omitempty"`
}

// Catalog is the raw seat/zone configuration as read from YAML.
type Catalog struct {
	Zones []Zone `yaml:"zones"`
	Seats []Seat `yaml:"seats"`
}
