package recommend

import (
	"fmt"

	"github.com/nerrad567/cafe-core/internal/space"
)

// WorkStyle is how the user intends to work.
type WorkStyle string

const (
	WorkStyleCollaborative WorkStyle = "collaborative"
	WorkStyleFocused       WorkStyle = "focused"
)

// Profile is a user's stated seating preference. Supplied per request.
type Profile struct {
	SocialLevel     int                `json:"social_level"`     // 0 (alone) .. 100 (busy)
	NoisePreference int                `json:"noise_preference"` // 0 (silent) .. 100 (loud)
	ActivityType    space.ActivityType `json:"activity_type"`
	WorkStyle       WorkStyle          `json:"work_style,omitempty"`
}

// Validate checks level ranges and the work style. Activity types outside
// the known set are accepted; they simply never match a zone.
func (p Profile) Validate() error {
	if p.SocialLevel < 0 || p.SocialLevel > 100 {
		return fmt.Errorf("%w: social_level %d outside 0..100", ErrInvalidProfile, p.SocialLevel)
	}
	if p.NoisePreference < 0 || p.NoisePreference > 100 {
		return fmt.Errorf("%w: noise_preference %d outside 0..100", ErrInvalidProfile, p.NoisePreference)
	}
	switch p.WorkStyle {
	case "", WorkStyleCollaborative, WorkStyleFocused:
	default:
		return fmt.Errorf("%w: unknown work_style %q", ErrInvalidProfile, p.WorkStyle)
	}
	return nil
}

// Recommendation is one scored candidate seat.
type Recommendation struct {
	SeatID        string   `json:"seat_id"`
	ZoneID        string   `json:"zone_id"`
	Score         int      `json:"score"`
	SocialScore   float64  `json:"social_score"`
	AmbientScore  float64  `json:"ambient_score"` // noise match
	ActivityScore float64  `json:"activity_score"`
	ComfortScore  float64  `json:"comfort_score"`
	Occupants     int      `json:"zone_occupants"`
	Reasons       []string `json:"reasons"`
}

// Catalog is the part of the spatial registry the scorer reads.
type Catalog interface {
	ListAllSeats() []space.Seat
	GetSeat(id string) (space.Seat, error)
	GetZone(id string) (space.Zone, error)
}
